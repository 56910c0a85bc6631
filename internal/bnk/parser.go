// Package bnk reads the chunk structure of Wwise sound banks: the bank
// header, the HIRC object list and the embedded media index and payload.
// HIRC record bodies are not interpreted.
package bnk

import (
	"encoding/binary"
	"fmt"
	"log/slog"
)

const (
	chunkHeaderSize  = 8
	recordHeaderSize = 5
	mediaRefSize     = 12
)

// Parser decodes sound banks. The zero value is ready to use and a Parser
// may be shared between goroutines.
type Parser struct{}

// NewParser creates a bank parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes one bank. Whole-bank problems are returned as *DecodeError;
// a single record that cannot be decoded is kept with HasError set.
func (p *Parser) Parse(data []byte, name string) (*Bank, error) {
	bank := &Bank{Name: name}
	haveHeader := false

	off := 0
	for off < len(data) {
		if len(data)-off < chunkHeaderSize {
			return nil, &DecodeError{Bank: name, Offset: off, Err: fmt.Errorf("chunk header: %w", ErrTruncated)}
		}

		tag := string(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4:])
		start := off + chunkHeaderSize
		if uint64(size) > uint64(len(data)-start) {
			return nil, &DecodeError{Bank: name, Chunk: tag, Offset: off,
				Err: fmt.Errorf("%w: %d bytes declared, %d available", ErrTruncated, size, len(data)-start)}
		}
		body := data[start : start+int(size)]

		var err error
		switch tag {
		case "BKHD":
			err = parseBankHeader(bank, body)
			haveHeader = true
		case "HIRC":
			err = parseHirc(bank, body)
		case "DIDX":
			err = parseMediaIndex(bank, body)
		case "DATA":
			bank.Data = body
		default:
			slog.Debug("Skipping bank chunk", "bank", name, "chunk", tag, "size", size)
		}
		if err != nil {
			return nil, &DecodeError{Bank: name, Chunk: tag, Offset: off, Err: err}
		}

		off = start + int(size)
	}

	if !haveHeader {
		return nil, &DecodeError{Bank: name, Offset: 0, Err: ErrMissingHeader}
	}

	if err := bank.CheckMedia(); err != nil {
		return nil, &DecodeError{Bank: name, Chunk: "DIDX", Offset: -1, Err: err}
	}

	for i := range bank.Records {
		bank.Records[i].Bank = name
	}

	return bank, nil
}

func parseBankHeader(bank *Bank, body []byte) error {
	if len(body) < 8 {
		return fmt.Errorf("bank header is %d bytes: %w", len(body), ErrTruncated)
	}
	bank.Version = binary.LittleEndian.Uint32(body[0:])
	bank.ID = binary.LittleEndian.Uint32(body[4:])
	return nil
}

func parseHirc(bank *Bank, body []byte) error {
	if len(body) < 4 {
		return fmt.Errorf("object count: %w", ErrTruncated)
	}
	count := binary.LittleEndian.Uint32(body)

	p := 4
	records := make([]Record, 0, min(int(count), len(body)/recordHeaderSize))
	for i := uint32(0); i < count; i++ {
		if len(body)-p < recordHeaderSize {
			return fmt.Errorf("object %d of %d header: %w", i, count, ErrTruncated)
		}
		raw := body[p]
		size := binary.LittleEndian.Uint32(body[p+1:])
		p += recordHeaderSize
		if uint64(size) > uint64(len(body)-p) {
			return fmt.Errorf("object %d of %d declares %d bytes: %w", i, count, size, ErrTruncated)
		}

		rec := Record{
			Type:    ParseHircType(raw),
			RawType: raw,
			Size:    size,
			Body:    body[p : p+int(size)],
		}
		if size < 4 {
			rec.HasError = true
			rec.Err = fmt.Sprintf("object body of %d bytes has no id", size)
		} else {
			rec.ID = binary.LittleEndian.Uint32(rec.Body)
		}
		records = append(records, rec)

		p += int(size)
	}
	bank.Records = records

	return nil
}

func parseMediaIndex(bank *Bank, body []byte) error {
	if len(body)%mediaRefSize != 0 {
		return fmt.Errorf("media index of %d bytes is not a multiple of %d", len(body), mediaRefSize)
	}

	refs := make([]MediaRef, 0, len(body)/mediaRefSize)
	for p := 0; p < len(body); p += mediaRefSize {
		refs = append(refs, MediaRef{
			ID:     binary.LittleEndian.Uint32(body[p:]),
			Offset: binary.LittleEndian.Uint32(body[p+4:]),
			Size:   binary.LittleEndian.Uint32(body[p+8:]),
		})
	}
	bank.Index = refs

	return nil
}
