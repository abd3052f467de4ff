// The arena owns the bytes that every lazily decoded value points
// into. For a plain file it is a read-only memory mapping; for a
// stream (stdin, a decompressor) it is the slurped contents. Items
// borrow the arena, they never own it, so the Container keeps the
// handle and releases the mapping in Close once the whole parse
// result is finished with.

package cif

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

type arena struct {
	buf []byte
	mm  mmap.MMap // nil when buf was read eagerly
	fp  *os.File  // backing file of the mapping, nil otherwise
}

// mapFile memory-maps path read-only. A zero length file cannot be
// mapped, so it comes back as an empty arena.
func mapFile(path string) (*arena, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if fi.Size() == 0 {
		fp.Close()
		return &arena{}, nil
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		fp.Close()
		return nil, err
	}
	return &arena{buf: mm, mm: mm, fp: fp}, nil
}

// bytesArena wraps bytes we already hold in memory. Same span
// machinery, no mapping to release.
func bytesArena(b []byte) *arena {
	return &arena{buf: b}
}

// close releases the mapping. After this every undecoded span in every
// item is dead, which is why only Container.Close calls it.
func (a *arena) close() error {
	if a == nil || a.mm == nil {
		return nil
	}
	err := a.mm.Unmap()
	a.mm = nil
	a.buf = nil
	if e := a.fp.Close(); err == nil {
		err = e
	}
	a.fp = nil
	return err
}
