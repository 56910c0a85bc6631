// Package bnktest builds synthetic sound banks for tests.
package bnktest

import (
	"bytes"
	"encoding/binary"
)

// Record is a HIRC object to encode. Body is appended after the id; set
// NoID to write Body alone.
type Record struct {
	Type uint8
	ID   uint32
	Body []byte
	NoID bool
}

// Media is an embedded audio file
type Media struct {
	ID   uint32
	Data []byte
}

// Bank describes a synthetic bank
type Bank struct {
	Version uint32
	ID      uint32
	Records []Record
	Media   []Media

	// IndexOnly writes DIDX without DATA
	IndexOnly bool
}

// Build encodes the bank as BKHD, HIRC, then DIDX and DATA when media is present
func (b Bank) Build() []byte {
	var out bytes.Buffer

	var head bytes.Buffer
	u32(&head, b.Version)
	u32(&head, b.ID)
	Chunk(&out, "BKHD", head.Bytes())

	var hirc bytes.Buffer
	u32(&hirc, uint32(len(b.Records)))
	for _, r := range b.Records {
		var body bytes.Buffer
		if !r.NoID {
			u32(&body, r.ID)
		}
		body.Write(r.Body)

		hirc.WriteByte(r.Type)
		u32(&hirc, uint32(body.Len()))
		hirc.Write(body.Bytes())
	}
	Chunk(&out, "HIRC", hirc.Bytes())

	if len(b.Media) > 0 {
		var didx, data bytes.Buffer
		for _, m := range b.Media {
			u32(&didx, m.ID)
			u32(&didx, uint32(data.Len()))
			u32(&didx, uint32(len(m.Data)))
			data.Write(m.Data)
		}
		Chunk(&out, "DIDX", didx.Bytes())
		if !b.IndexOnly {
			Chunk(&out, "DATA", data.Bytes())
		}
	}

	return out.Bytes()
}

// Chunk appends one tagged chunk to buf
func Chunk(buf *bytes.Buffer, tag string, body []byte) {
	buf.WriteString(tag)
	u32(buf, uint32(len(body)))
	buf.Write(body)
}

func u32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
