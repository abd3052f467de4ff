// Package brokenio wraps an io.ReadCloser so tests can inject read
// failures at a chosen point. Typical use: you have a file pointer or
// a reader from a compressed source, you write
// reader = brokenio.NewReader(reader) and everything functions as
// before, until the configured byte count is reached.

package brokenio

import (
	"errors"
	"io"
)

// ErrInjected is what Read returns once the failure point is reached.
var ErrInjected = errors.New("brokenio: injected read failure")

// A Reader delivers bytes from the wrapped source until its failure
// point, then errors on every further Read. With no failure point set
// it is transparent.
type Reader struct {
	src   io.ReadCloser
	limit int // bytes to deliver before failing, < 0 means never
	read  int
}

func NewReader(src io.ReadCloser) *Reader {
	return &Reader{src: src, limit: -1}
}

// FailAfter sets the number of bytes delivered before reads start
// failing. Zero fails immediately.
func (r *Reader) FailAfter(n int) { r.limit = n }

func (r *Reader) Read(p []byte) (int, error) {
	if r.limit >= 0 {
		if r.read >= r.limit {
			return 0, ErrInjected
		}
		if rest := r.limit - r.read; len(p) > rest {
			p = p[:rest]
		}
	}
	n, err := r.src.Read(p)
	r.read += n
	return n, err
}

func (r *Reader) Close() error { return r.src.Close() }
