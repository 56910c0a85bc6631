package pack

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchantrell/packbnk/internal/pack/packtest"
)

func readPack(t *testing.T, p packtest.Pack, opts ...Option) (*Container, int64) {
	t.Helper()

	data, dataStart := packtest.Build(t, p)
	c, err := Read("test.pack", bytes.NewReader(data), int64(len(data)), opts...)
	require.NoError(t, err)

	return c, dataStart
}

func TestReadEntryOffsets(t *testing.T) {
	t.Parallel()

	c, d := readPack(t, packtest.Pack{
		Tag: "PFH4",
		Files: []packtest.File{
			{Path: "one.bin", Data: bytes.Repeat([]byte{1}, 10)},
			{Path: "two.bin", Data: bytes.Repeat([]byte{2}, 20)},
			{Path: "three.bin", Data: bytes.Repeat([]byte{3}, 30)},
		},
	})

	require.Equal(t, uint32(3), c.Header.FileCount)
	require.Equal(t, 3, c.Len())

	want := map[string]struct{ offset, size int64 }{
		"one.bin":   {d, 10},
		"two.bin":   {d + 10, 20},
		"three.bin": {d + 30, 30},
	}
	for p, w := range want {
		e, ok := c.Entry(p)
		require.True(t, ok, p)
		assert.Equal(t, w.offset, e.Offset(), p)
		assert.Equal(t, w.size, e.Size(), p)
	}

	data, err := c.Entries()[2].Read()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{2}, 20), data)
}

func TestReadNormalizesPaths(t *testing.T) {
	t.Parallel()

	c, _ := readPack(t, packtest.Pack{
		Tag: "PFH5",
		Files: []packtest.File{
			{Path: `Audio\WWise\Battle_Music.BNK`, Data: []byte("bank")},
		},
	})

	e, ok := c.Entry("audio/wwise/battle_music.bnk")
	require.True(t, ok)
	assert.Equal(t, "battle_music.bnk", e.Name)
	assert.Equal(t, `Audio\WWise\Battle_Music.BNK`, e.OriginalPath)

	_, ok = c.Entry(`AUDIO\wwise\battle_music.bnk`)
	assert.True(t, ok)
	assert.Equal(t, "test", c.Name)
}

func TestReadIndexVariants(t *testing.T) {
	t.Parallel()

	t.Run("timestamps", func(t *testing.T) {
		t.Parallel()
		c, d := readPack(t, packtest.Pack{
			Tag:      "PFH4",
			ByteMask: packtest.FlagIndexTimestamps,
			Files: []packtest.File{
				{Path: "a", Data: []byte("aaaa"), Timestamp: 0xdeadbeef},
				{Path: "b", Data: []byte("bb"), Timestamp: 1},
			},
		})
		e, ok := c.Entry("b")
		require.True(t, ok)
		assert.Equal(t, d+4, e.Offset())
		data, err := e.Read()
		require.NoError(t, err)
		assert.Equal(t, "bb", string(data))
	})

	t.Run("compression flags", func(t *testing.T) {
		t.Parallel()
		c, _ := readPack(t, packtest.Pack{
			Tag: "PFH5",
			Files: []packtest.File{
				{Path: "packed", Data: []byte("zz"), Compressed: true},
				{Path: "plain", Data: []byte("pp")},
			},
		})
		e, _ := c.Entry("packed")
		assert.True(t, e.Compressed)
		e, _ = c.Entry("plain")
		assert.False(t, e.Compressed)
	})

	t.Run("extended header", func(t *testing.T) {
		t.Parallel()
		c, _ := readPack(t, packtest.Pack{
			Tag:      "PFH5",
			ByteMask: packtest.FlagExtendedHeader | packtest.FlagIndexTimestamps,
			Files:    []packtest.File{{Path: "x", Data: []byte("xyz")}},
		})
		e, _ := c.Entry("x")
		data, err := e.Read()
		require.NoError(t, err)
		assert.Equal(t, "xyz", string(data))
	})
}

func TestReadDuplicatePaths(t *testing.T) {
	t.Parallel()

	p := packtest.Pack{
		Tag: "PFH4",
		Files: []packtest.File{
			{Path: "Sound/Init.bnk", Data: []byte("old")},
			{Path: "sound/init.BNK", Data: []byte("newer")},
		},
	}

	t.Run("later entry wins", func(t *testing.T) {
		t.Parallel()
		c, _ := readPack(t, p)
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, []string{"sound/init.bnk"}, c.Duplicates())

		e, _ := c.Entry("sound/init.bnk")
		data, err := e.Read()
		require.NoError(t, err)
		assert.Equal(t, "newer", string(data))
	})

	t.Run("strict", func(t *testing.T) {
		t.Parallel()
		var seen []string
		hook := DiscoveryHookFunc(func(entry *Entry, container *Container, fullName string) {
			seen = append(seen, fullName)
		})

		data, _ := packtest.Build(t, p)
		c, err := Read("dup.pack", bytes.NewReader(data), int64(len(data)),
			WithStrictPaths(), WithDiscoveryHook(".bnk", hook))
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrDuplicatePath)
		// the rejected duplicate is never announced
		assert.Equal(t, []string{"Sound/Init.bnk"}, seen)
	})

	t.Run("hook sees the winning entry", func(t *testing.T) {
		t.Parallel()
		var got []*Entry
		hook := DiscoveryHookFunc(func(entry *Entry, container *Container, fullName string) {
			current, ok := container.Entry(entry.Path)
			require.True(t, ok)
			assert.Same(t, entry, current)
			got = append(got, entry)
		})

		readPack(t, p, WithDiscoveryHook(".bnk", hook))
		require.Len(t, got, 2)
		assert.Equal(t, "sound/init.BNK", got[1].OriginalPath)
	})
}

func TestReadDiscoveryHook(t *testing.T) {
	t.Parallel()

	var seen []string
	hook := DiscoveryHookFunc(func(entry *Entry, container *Container, fullName string) {
		require.NotNil(t, container)
		seen = append(seen, fullName)
	})

	readPack(t, packtest.Pack{
		Tag: "PFH4",
		Files: []packtest.File{
			{Path: "Anim/Walk.ANIM", Data: []byte{1}},
			{Path: "anim/walk.meta", Data: []byte{2}},
			{Path: "run.anim", Data: []byte{3}},
		},
	}, WithDiscoveryHook(".anim", hook))

	assert.Equal(t, []string{"Anim/Walk.ANIM", "run.anim"}, seen)
}

func TestReadFailures(t *testing.T) {
	t.Parallel()

	t.Run("unknown version", func(t *testing.T) {
		t.Parallel()
		data, _ := packtest.Build(t, packtest.Pack{Tag: "XXXX"})
		c, err := Read("bad.pack", bytes.NewReader(data), int64(len(data)))
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrUnknownVersion)
		assert.Contains(t, err.Error(), "bad.pack")
	})

	t.Run("truncated index", func(t *testing.T) {
		t.Parallel()
		data, d := packtest.Build(t, packtest.Pack{
			Tag:   "PFH4",
			Files: []packtest.File{{Path: "long/file/name.txt", Data: []byte("x")}},
		})
		cut := data[:d-5]
		c, err := Read("cut.pack", bytes.NewReader(cut), int64(len(cut)))
		assert.Nil(t, c)
		var fe *FormatError
		assert.True(t, errors.As(err, &fe))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		missing := filepath.Join(t.TempDir(), "nope.pack")
		c, err := Open(missing)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Contains(t, err.Error(), missing)
	})
}

func TestOpenFromDisk(t *testing.T) {
	t.Parallel()

	data, _ := packtest.Build(t, packtest.Pack{
		Tag:   "PFH5",
		Files: []packtest.File{{Path: "audio/a.bnk", Data: []byte("bank a")}},
	})
	p := filepath.Join(t.TempDir(), "audio.pack")
	require.NoError(t, os.WriteFile(p, data, 0o644))

	c, err := Open(p)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "audio", c.Name)
	assert.Equal(t, int64(len(data)), c.Size)

	e, ok := c.Entry("audio/a.bnk")
	require.True(t, ok)
	got, err := e.Read()
	require.NoError(t, err)
	assert.Equal(t, "bank a", string(got))
}

func TestSourceConcurrentReads(t *testing.T) {
	t.Parallel()

	var files []packtest.File
	for i := 0; i < 32; i++ {
		files = append(files, packtest.File{
			Path: string(rune('a'+i%26)) + "/" + string(rune('a'+i/26)) + ".bin",
			Data: bytes.Repeat([]byte{byte(i)}, 100+i),
		})
	}
	c, _ := readPack(t, packtest.Pack{Tag: "PFH4", Files: files})

	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, ok := c.Entry(f.Path)
			if !assert.True(t, ok) {
				return
			}
			data, err := e.Read()
			assert.NoError(t, err)
			assert.Equal(t, f.Data, data)
		}()
	}
	wg.Wait()
}

func TestSourceOutOfBounds(t *testing.T) {
	t.Parallel()

	data, _ := packtest.Build(t, packtest.Pack{
		Tag:   "PFH0",
		Files: []packtest.File{{Path: "big", Data: make([]byte, 64)}},
	})
	short := data[:len(data)-10]

	c, err := Read("short.pack", bytes.NewReader(short), int64(len(short)))
	require.NoError(t, err)

	e, _ := c.Entry("big")
	_, err = e.Read()
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = e.Reader()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
