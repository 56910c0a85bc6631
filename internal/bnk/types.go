package bnk

import (
	"errors"
	"fmt"
)

// HircType is the object type tag of a HIRC record
type HircType uint8

// Object types known to the reader. Any other tag on disk maps to HircUnknown.
const (
	HircUnknown HircType = iota
	HircState
	HircSound
	HircAction
	HircEvent
	HircRandomSequenceContainer
	HircSwitchContainer
	HircActorMixer
	HircAudioBus
	HircLayerContainer
	HircMusicSegment
	HircMusicTrack
	HircMusicSwitchContainer
	HircMusicRandomSequenceContainer
	HircAttenuation
	HircDialogueEvent
	HircFxShareSet
	HircFxCustom
	HircAuxiliaryBus
	HircLFO
	HircEnvelope
	HircAudioDevice
	HircTimeMod

	hircTypeCount
)

var hircTypeNames = [hircTypeCount]string{
	"Unknown",
	"State",
	"Sound",
	"Action",
	"Event",
	"RandomSequenceContainer",
	"SwitchContainer",
	"ActorMixer",
	"AudioBus",
	"LayerContainer",
	"MusicSegment",
	"MusicTrack",
	"MusicSwitchContainer",
	"MusicRandomSequenceContainer",
	"Attenuation",
	"DialogueEvent",
	"FxShareSet",
	"FxCustom",
	"AuxiliaryBus",
	"LFO",
	"Envelope",
	"AudioDevice",
	"TimeMod",
}

// ParseHircType maps an on-disk tag to a HircType
func ParseHircType(tag uint8) HircType {
	if tag == 0 || tag >= uint8(hircTypeCount) {
		return HircUnknown
	}
	return HircType(tag)
}

func (t HircType) String() string {
	if t < hircTypeCount {
		return hircTypeNames[t]
	}
	return fmt.Sprintf("HircType(%d)", uint8(t))
}

// Record is one HIRC object. Only the framing is decoded; the body is kept
// as raw bytes.
type Record struct {
	ID      uint32
	Type    HircType
	RawType uint8
	Size    uint32
	Body    []byte
	Bank    string

	// HasError is set when the record could not be decoded; Err says why
	HasError bool
	Err      string
}

// Problem reports whether the record is of an unknown type or failed to decode
func (r Record) Problem() bool {
	return r.Type == HircUnknown || r.HasError
}

// MediaRef is one DIDX entry locating an embedded audio file in DATA
type MediaRef struct {
	ID     uint32
	Offset uint32
	Size   uint32
}

// Bank is the parsed form of a sound bank
type Bank struct {
	Name    string
	Version uint32
	ID      uint32
	Records []Record

	// Index and Data are nil when the bank has no DIDX or DATA chunk
	Index []MediaRef
	Data  []byte
}

// Media returns the bytes of one DIDX entry. The range must have passed
// CheckMedia.
func (b *Bank) Media(ref MediaRef) []byte {
	start := uint64(ref.Offset)
	return b.Data[start : start+uint64(ref.Size)]
}

// CheckMedia verifies that every index entry lies inside Data. A bank
// without Data has nothing to check.
func (b *Bank) CheckMedia() error {
	if b.Index == nil || b.Data == nil {
		return nil
	}
	for _, ref := range b.Index {
		if end := uint64(ref.Offset) + uint64(ref.Size); end > uint64(len(b.Data)) {
			return fmt.Errorf("%w: media %d [%d, %d) in %d bytes", ErrMediaOutOfRange,
				ref.ID, ref.Offset, end, len(b.Data))
		}
	}
	return nil
}

// HasUnknowns reports whether any record is unknown or failed to decode
func (b *Bank) HasUnknowns() bool {
	for _, r := range b.Records {
		if r.Problem() {
			return true
		}
	}
	return false
}

var (
	// ErrTruncated is returned when a chunk or record runs past the end of its container.
	ErrTruncated = errors.New("truncated")

	// ErrMissingHeader is returned when a bank has no BKHD chunk.
	ErrMissingHeader = errors.New("missing BKHD chunk")

	// ErrMediaOutOfRange is returned when a DIDX entry points outside DATA.
	ErrMediaOutOfRange = errors.New("media outside DATA chunk")
)

// DecodeError reports a bank that could not be parsed at all
type DecodeError struct {
	Bank   string
	Chunk  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Chunk != "" {
		return fmt.Sprintf("decoding bank %s: %s chunk at offset %d: %v", e.Bank, e.Chunk, e.Offset, e.Err)
	}
	return fmt.Sprintf("decoding bank %s at offset %d: %v", e.Bank, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
