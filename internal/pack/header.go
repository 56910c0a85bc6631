package pack

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// fixed part of every header: tag, byte mask and four u32 fields
const baseHeaderSize = 24

// Byte mask bits. The low nibble holds the pack type (boot, release, patch,
// mod, movie).
const (
	packTypeMask          = 0x0f
	flagIndexTimestamps   = 0x40
	flagExtendedHeader    = 0x100
	extendedTrailerLength = 24
)

// trailer lengths for versions that do not depend on the byte mask
var trailerLengths = map[Version]int{
	PFH0: 0,
	PFH2: 8, // u64 timestamp
	PFH3: 8,
	PFH4: 4, // u32 timestamp
	PFH5: 4,
	PFH6: 284, // game version, build number, authoring tool, ...
}

type headerPrefix struct {
	Tag                [4]byte
	ByteMask           uint32
	ReferenceFileCount uint32
	IndexSize          uint32
	FileCount          uint32
	PackedIndexSize    uint32
}

// Header is the decoded preamble of a pack file
type Header struct {
	Version            Version
	ByteMask           uint32
	ReferenceFileCount uint32

	// IndexSize is the byte length of the dependency name list
	IndexSize uint32
	// RawFileCount is the entry count as stored in the header
	RawFileCount uint32
	// PackedIndexSize is the byte length of the entry index
	PackedIndexSize uint32

	// Trailer holds the version specific bytes after the fixed fields; its
	// contents are not interpreted
	Trailer []byte

	// Dependencies lists packs this one expects to be loaded alongside it
	Dependencies []string

	// DataStart is where entry content begins
	DataStart int64
	FileCount uint32
}

// PackType returns the pack category stored in the low bits of the byte mask
func (h *Header) PackType() uint32 {
	return h.ByteMask & packTypeMask
}

// HasIndexTimestamps reports whether every index entry carries a u32 timestamp
func (h *Header) HasIndexTimestamps() bool {
	return h.ByteMask&flagIndexTimestamps != 0
}

// HasExtendedHeader reports whether a PFH4/PFH5 header has the long trailer
func (h *Header) HasExtendedHeader() bool {
	if h.Version != PFH4 && h.Version != PFH5 {
		return false
	}
	return h.ByteMask&flagExtendedHeader != 0
}

// HasCompressionFlags reports whether index entries carry a compressed byte
func (h *Header) HasCompressionFlags() bool {
	return h.Version == PFH5
}

func (h *Header) trailerLength() int {
	if h.HasExtendedHeader() {
		return extendedTrailerLength
	}
	return trailerLengths[h.Version]
}

// DecodeHeader reads a pack header from r. Anything other than a known PFH
// tag or a stream that ends early yields a *FormatError.
func DecodeHeader(r io.Reader) (*Header, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var hp headerPrefix
	if err := binary.Read(br, binary.LittleEndian, &hp); err != nil {
		return nil, &FormatError{Op: "header", Offset: 0, Err: truncated(err)}
	}

	version, err := ParseVersion(string(hp.Tag[:]))
	if err != nil {
		return nil, &FormatError{Op: "header", Offset: 0, Err: err}
	}

	h := &Header{
		Version:            version,
		ByteMask:           hp.ByteMask,
		ReferenceFileCount: hp.ReferenceFileCount,
		IndexSize:          hp.IndexSize,
		RawFileCount:       hp.FileCount,
		PackedIndexSize:    hp.PackedIndexSize,
	}

	h.Trailer = make([]byte, h.trailerLength())
	if _, err := io.ReadFull(br, h.Trailer); err != nil {
		return nil, &FormatError{Op: "header trailer", Offset: baseHeaderSize, Err: truncated(err)}
	}

	// every name takes at least its terminator
	h.Dependencies = make([]string, 0, min(h.ReferenceFileCount, h.IndexSize))
	for i := uint32(0); i < h.ReferenceFileCount; i++ {
		name, err := readCString(br)
		if err != nil {
			return nil, &FormatError{Op: fmt.Sprintf("dependency %d", i), Offset: -1, Err: err}
		}
		h.Dependencies = append(h.Dependencies, name)
	}

	h.DataStart = int64(baseHeaderSize) + int64(len(h.Trailer)) + int64(h.IndexSize) + int64(h.PackedIndexSize)
	h.FileCount = hp.FileCount

	return h, nil
}

// readCString reads a zero terminated ASCII string
func readCString(br *bufio.Reader) (string, error) {
	b, err := br.ReadBytes(0)
	if err != nil {
		return "", truncated(err)
	}
	return string(b[:len(b)-1]), nil
}

// truncated maps a plain EOF in the middle of a structure onto ErrUnexpectedEOF
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
