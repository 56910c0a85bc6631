package pack

import (
	"fmt"
	"io"
)

// Backing is the byte store a container was loaded from. All entries of a
// container share one Backing; reads go through ReadAt so there is no shared
// cursor between them.
type Backing struct {
	Path string
	data io.ReaderAt
	size int64
}

func newBacking(path string, data io.ReaderAt, size int64) *Backing {
	return &Backing{Path: path, data: data, size: size}
}

// Size returns the total length of the backing store
func (b *Backing) Size() int64 {
	return b.size
}

// Source is a deferred view of one entry's bytes. Nothing is read until Read
// or Reader is called.
type Source struct {
	backing *Backing
	offset  int64
	size    int64
}

// Offset returns the position of the content within the backing store
func (s Source) Offset() int64 {
	return s.offset
}

// Size returns the content length in bytes
func (s Source) Size() int64 {
	return s.size
}

// Backing returns the store this source reads from
func (s Source) Backing() *Backing {
	return s.backing
}

func (s Source) check() error {
	if s.backing == nil {
		return fmt.Errorf("%w: no backing store", ErrOutOfBounds)
	}
	if s.offset < 0 || s.size < 0 || s.offset+s.size > s.backing.size {
		return fmt.Errorf("%w: range [%d, %d) exceeds %d bytes of %s",
			ErrOutOfBounds, s.offset, s.offset+s.size, s.backing.size, s.backing.Path)
	}
	return nil
}

// Reader returns a section reader over the entry content
func (s Source) Reader() (*io.SectionReader, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return io.NewSectionReader(s.backing.data, s.offset, s.size), nil
}

// Read returns a fresh copy of the entry content. It is safe to call from
// several goroutines at once.
func (s Source) Read() ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	data := make([]byte, s.size)
	n, err := s.backing.data.ReadAt(data, s.offset)
	if n == len(data) {
		return data, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("reading %d bytes at offset %d of %s: %w", s.size, s.offset, s.backing.Path, err)
}
