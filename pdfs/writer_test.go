package pdfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverFit(t *testing.T) {
	box := Box{X: 10, Y: 20, W: 100, H: 200}

	// wide image: height drives, overflow split left and right
	got := CoverFit(400, 200, box)
	assert.InDelta(t, 200, got.H, 1e-9)
	assert.InDelta(t, 400, got.W, 1e-9)
	assert.InDelta(t, 10-150, got.X, 1e-9)
	assert.InDelta(t, 20, got.Y, 1e-9)

	// same aspect: exact fit
	assert.Equal(t, box, CoverFit(50, 100, box))

	// degenerate sizes leave the box alone
	assert.Equal(t, box, CoverFit(0, 10, box))
}

func TestA4Size(t *testing.T) {
	assert.InDelta(t, 297, A4Size.Height/72*25.4, 1e-3)
	assert.False(t, A4Size.Landscape())
	assert.True(t, CustomSize("x", 20, 10).Landscape())
}

func TestTemplateStore(t *testing.T) {
	s := NewTemplateStore[int]()
	s.Store("a", 3)
	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, s.Len())
	s.Remove("a")
	assert.False(t, s.Has("a"))
}
