package keyonlylocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryAcquire(t *testing.T) {
	var s Store
	release, ok := s.TryAcquire("order:1", "order:2")
	assert.True(t, ok)

	_, ok = s.TryAcquire("order:3", "order:2")
	assert.False(t, ok)
	assert.False(t, s.Held("order:3"), "partial acquisition is rolled back")

	release()
	assert.False(t, s.Held("order:1"))
	release2, ok := s.TryAcquire("order:2")
	assert.True(t, ok)
	release2()
}
