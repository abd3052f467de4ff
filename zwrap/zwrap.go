// Package zwrap takes a reader and optionally wraps it so that upon
// calling Close, the decompressor is closed, followed by the
// underlying source. Archive files usually arrive as name.cif.gz, so
// the parser's callers go through here and stop caring.

package zwrap

import (
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

type ReadCloser struct { // This is what we return.
	fp   io.ReadCloser
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying backing source.
// It should work whether the source is a file or an http stream.
func (rc *ReadCloser) Close() error {
	if rc.zrdr == nil {
		return rc.fp.Close()
	}
	var s string
	if e := rc.zrdr.Close(); e != nil {
		s = e.Error()
	}
	if e := rc.fp.Close(); e != nil {
		s = s + " " + e.Error()
	}
	if s == "" {
		return nil
	}
	return errors.New(s)
}

// Read makes sure we read from the decompressed stream and not the
// underlying raw one.
func (rc *ReadCloser) Read(p []byte) (int, error) {
	if rc.zrdr != nil {
		return rc.zrdr.Read(p)
	}
	return rc.fp.Read(p)
}

// Wrap treats the source as gzip. The error from the gzip header
// check is just passed back; callers who are not sure should use
// WrapMaybe instead.
func Wrap(fp io.ReadCloser) (*ReadCloser, error) {
	var rc ReadCloser
	var err error
	rc.fp = fp
	rc.zrdr, err = gzip.NewReader(rc.fp)
	return &rc, err
}

// WrapMaybe decides whether the underlying stream is compressed and
// wraps it if necessary. You do lose something: whatever seekability
// the source had is gone, which is the price of reading through a
// decompressor.
func WrapMaybe(fpIn io.ReadSeekCloser) (*ReadCloser, error) {
	if out, err := Wrap(fpIn); err == nil {
		return out, nil // It was compressed.
	}
	_, err := fpIn.Seek(0, io.SeekStart)
	r := &ReadCloser{
		fp: fpIn, // Leave zrdr implicitly nil
	}
	return r, err
}

// Open opens path and wraps it, so name.cif and name.cif.gz read the
// same way.
func Open(path string) (*ReadCloser, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return WrapMaybe(fp)
}
