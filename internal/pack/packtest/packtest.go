// Package packtest builds synthetic pack files for tests.
package packtest

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"
)

// Byte mask bits understood by the pack reader
const (
	FlagIndexTimestamps = 0x40
	FlagExtendedHeader  = 0x100
)

// File is one entry to place in a synthetic pack
type File struct {
	Path       string
	Data       []byte
	Compressed bool
	Timestamp  uint32
}

// Pack describes a synthetic pack file
type Pack struct {
	Tag          string
	ByteMask     uint32
	Dependencies []string
	Files        []File
}

// TrailerLength returns the number of header trailer bytes the reader
// expects for the pack's tag and mask.
func (p Pack) TrailerLength() int {
	switch strings.ToUpper(p.Tag) {
	case "PFH2", "PFH3":
		return 8
	case "PFH4", "PFH5":
		if p.ByteMask&FlagExtendedHeader != 0 {
			return 24
		}
		return 4
	case "PFH6":
		return 284
	}
	return 0
}

// Build encodes the pack and returns its bytes together with the offset at
// which entry content starts.
func Build(tb testing.TB, p Pack) ([]byte, int64) {
	tb.Helper()

	var deps bytes.Buffer
	for _, d := range p.Dependencies {
		deps.WriteString(d)
		deps.WriteByte(0)
	}

	var index bytes.Buffer
	for _, f := range p.Files {
		writeU32(&index, uint32(len(f.Data)))
		if p.ByteMask&FlagIndexTimestamps != 0 {
			writeU32(&index, f.Timestamp)
		}
		if strings.ToUpper(p.Tag) == "PFH5" {
			if f.Compressed {
				index.WriteByte(1)
			} else {
				index.WriteByte(0)
			}
		}
		index.WriteString(f.Path)
		index.WriteByte(0)
	}

	var out bytes.Buffer
	tag := []byte(p.Tag)
	if len(tag) != 4 {
		tb.Fatalf("pack tag %q must be 4 bytes", p.Tag)
	}
	out.Write(tag)
	writeU32(&out, p.ByteMask)
	writeU32(&out, uint32(len(p.Dependencies)))
	writeU32(&out, uint32(deps.Len()))
	writeU32(&out, uint32(len(p.Files)))
	writeU32(&out, uint32(index.Len()))
	out.Write(make([]byte, p.TrailerLength()))
	out.Write(deps.Bytes())
	out.Write(index.Bytes())

	dataStart := int64(out.Len())
	for _, f := range p.Files {
		out.Write(f.Data)
	}

	return out.Bytes(), dataStart
}

func writeU32(w io.Writer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}
