package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseClient(t *testing.T) {
	assert.NoError(t, CloseClient("none", nil))

	ok := &closer{}
	assert.NoError(t, CloseClient("ok", ok))
	assert.True(t, ok.closed)

	bad := &closer{err: errors.New("boom")}
	assert.EqualError(t, CloseClient("bad", bad), "boom")
	assert.True(t, bad.closed)
}
