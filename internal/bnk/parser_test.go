package bnk

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchantrell/packbnk/internal/bnk/bnktest"
)

func TestParseBank(t *testing.T) {
	t.Parallel()

	data := bnktest.Bank{
		Version: 136,
		ID:      0xabcdef,
		Records: []bnktest.Record{
			{Type: 2, ID: 100, Body: []byte{1, 2, 3}},
			{Type: 4, ID: 200},
			{Type: 0x7f, ID: 300, Body: []byte{9}},
			{Type: 3, NoID: true, Body: []byte{1, 2}},
		},
		Media: []bnktest.Media{
			{ID: 11, Data: []byte("RIFFaaaa")},
			{ID: 12, Data: []byte("RIFFbb")},
		},
	}.Build()

	b, err := NewParser().Parse(data, "battle.bnk")
	require.NoError(t, err)

	assert.Equal(t, "battle.bnk", b.Name)
	assert.Equal(t, uint32(136), b.Version)
	assert.Equal(t, uint32(0xabcdef), b.ID)

	require.Len(t, b.Records, 4)
	assert.Equal(t, HircSound, b.Records[0].Type)
	assert.Equal(t, uint32(100), b.Records[0].ID)
	assert.Equal(t, uint32(7), b.Records[0].Size)
	assert.Equal(t, HircEvent, b.Records[1].Type)

	assert.Equal(t, HircUnknown, b.Records[2].Type)
	assert.Equal(t, uint8(0x7f), b.Records[2].RawType)
	assert.Equal(t, uint32(300), b.Records[2].ID)
	assert.False(t, b.Records[2].HasError)

	assert.Equal(t, HircAction, b.Records[3].Type)
	assert.True(t, b.Records[3].HasError)
	assert.NotEmpty(t, b.Records[3].Err)

	for _, r := range b.Records {
		assert.Equal(t, "battle.bnk", r.Bank)
	}
	assert.True(t, b.HasUnknowns())

	require.Len(t, b.Index, 2)
	assert.Equal(t, []byte("RIFFaaaa"), b.Media(b.Index[0]))
	assert.Equal(t, []byte("RIFFbb"), b.Media(b.Index[1]))
}

func TestParseBankWithoutMedia(t *testing.T) {
	t.Parallel()

	b, err := NewParser().Parse(bnktest.Bank{
		Records: []bnktest.Record{{Type: 7, ID: 1}},
	}.Build(), "mixers.bnk")
	require.NoError(t, err)
	assert.Nil(t, b.Index)
	assert.Nil(t, b.Data)
	assert.False(t, b.HasUnknowns())

	b, err = NewParser().Parse(bnktest.Bank{
		Media:     []bnktest.Media{{ID: 5, Data: []byte("streamed")}},
		IndexOnly: true,
	}.Build(), "streamed.bnk")
	require.NoError(t, err)
	assert.Len(t, b.Index, 1)
	assert.Nil(t, b.Data)
}

func TestParseSkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	buf.Write(bnktest.Bank{Records: []bnktest.Record{{Type: 2, ID: 9}}}.Build())
	bnktest.Chunk(&buf, "STID", []byte{1, 2, 3, 4, 5})

	b, err := NewParser().Parse(buf.Bytes(), "x.bnk")
	require.NoError(t, err)
	assert.Len(t, b.Records, 1)
}

func TestParseDecodeErrors(t *testing.T) {
	t.Parallel()

	valid := bnktest.Bank{
		Records: []bnktest.Record{{Type: 2, ID: 1, Body: make([]byte, 16)}},
	}.Build()

	var noHeader bytes.Buffer
	bnktest.Chunk(&noHeader, "HIRC", []byte{0, 0, 0, 0})

	var badMedia bytes.Buffer
	badMedia.Write(bnktest.Bank{}.Build())
	bnktest.Chunk(&badMedia, "DIDX", []byte{1, 0, 0, 0, 4, 0, 0, 0, 8, 0, 0, 0})
	bnktest.Chunk(&badMedia, "DATA", []byte{1, 2, 3, 4, 5, 6, 7, 8})

	var overrun bytes.Buffer
	overrun.Write(bnktest.Bank{}.Build())
	bnktest.Chunk(&overrun, "HIRC", []byte{1, 0, 0, 0, 2, 50, 0, 0, 0, 1, 2, 3, 4})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated chunk", valid[:len(valid)-3], ErrTruncated},
		{"partial chunk header", append(append([]byte{}, valid...), 'D', 'A'), ErrTruncated},
		{"missing header", noHeader.Bytes(), ErrMissingHeader},
		{"media out of range", badMedia.Bytes(), ErrMediaOutOfRange},
		{"record overrun", overrun.Bytes(), ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := NewParser().Parse(tt.data, "broken.bnk")
			assert.Nil(t, b)
			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "broken.bnk", de.Bank)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseHircType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HircUnknown, ParseHircType(0))
	assert.Equal(t, HircState, ParseHircType(1))
	assert.Equal(t, HircTimeMod, ParseHircType(22))
	assert.Equal(t, HircUnknown, ParseHircType(23))
	assert.Equal(t, "MusicTrack", HircMusicTrack.String())
	assert.Equal(t, "Unknown", HircUnknown.String())
}

func TestHashName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0x811c9dc5), HashName(""))
	assert.Equal(t, uint32(0x050c5d7e), HashName("a"))
	assert.Equal(t, HashName("Play_Music"), HashName("play_music"))
	assert.NotEqual(t, HashName("play_music"), HashName("stop_music"))
}

func TestCheckMedia(t *testing.T) {
	t.Parallel()

	data := []byte("abcdef")
	tests := []struct {
		name  string
		bank  Bank
		valid bool
	}{
		{"inside", Bank{Index: []MediaRef{{ID: 1, Offset: 2, Size: 4}}, Data: data}, true},
		{"no data", Bank{Index: []MediaRef{{ID: 1, Offset: 10, Size: 10}}}, true},
		{"past end", Bank{Index: []MediaRef{{ID: 1, Offset: 4, Size: 3}}, Data: data}, false},
		{"wrapping size", Bank{Index: []MediaRef{{ID: 1, Offset: 2, Size: 0xffffffff}}, Data: data}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.bank.CheckMedia()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrMediaOutOfRange)
		})
	}
}
