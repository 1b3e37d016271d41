// Package rw holds io helpers for document output.
package rw

import (
	"errors"
	"fmt"
	"io"
)

var ErrLimitExceeded = errors.New("rw: output limit exceeded")

// CountWriter passes writes through and counts them.
// With Limit > 0 a write that would pass the limit is refused whole.
type CountWriter struct {
	w     io.Writer
	n     int64
	Limit int64
}

func NewCountWriter(w io.Writer) *CountWriter {
	return &CountWriter{w: w}
}

func NewLimitWriter(w io.Writer, limit int64) *CountWriter {
	return &CountWriter{w: w, Limit: limit}
}

func (cw *CountWriter) Write(p []byte) (int, error) {
	if cw.Limit > 0 && cw.n+int64(len(p)) > cw.Limit {
		return 0, fmt.Errorf("%w: %d > %d bytes", ErrLimitExceeded, cw.n+int64(len(p)), cw.Limit)
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (cw *CountWriter) BytesWritten() int64 {
	return cw.n
}
