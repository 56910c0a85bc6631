package pack

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchantrell/packbnk/internal/pack/packtest"
)

func TestContainerFS(t *testing.T) {
	t.Parallel()

	c, _ := readPack(t, packtest.Pack{
		Tag: "PFH5",
		Files: []packtest.File{
			{Path: `audio\wwise\battle.bnk`, Data: []byte("battle")},
			{Path: `audio\wwise\english(uk)\vo.bnk`, Data: []byte("vo")},
			{Path: `audio\readme.txt`, Data: []byte("hello")},
			{Path: `db\units.tsv`, Data: []byte("units")},
		},
	})
	fsys := c.FS()

	t.Run("walk", func(t *testing.T) {
		t.Parallel()
		var files, dirs []string
		err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				dirs = append(dirs, p)
			} else {
				files = append(files, p)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"audio/readme.txt",
			"audio/wwise/battle.bnk",
			"audio/wwise/english(uk)/vo.bnk",
			"db/units.tsv",
		}, files)
		assert.Equal(t, []string{".", "audio", "audio/wwise", "audio/wwise/english(uk)", "db"}, dirs)
	})

	t.Run("read file", func(t *testing.T) {
		t.Parallel()
		data, err := fs.ReadFile(fsys, "audio/wwise/battle.bnk")
		require.NoError(t, err)
		assert.Equal(t, "battle", string(data))

		info, err := fs.Stat(fsys, "audio/readme.txt")
		require.NoError(t, err)
		assert.Equal(t, "readme.txt", info.Name())
		assert.Equal(t, int64(5), info.Size())
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		f, err := fsys.Open("audio/wwise")
		require.NoError(t, err)
		defer f.Close()

		info, err := f.Stat()
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, "wwise", info.Name())

		_, err = f.Read(make([]byte, 1))
		assert.Error(t, err)

		rd, ok := f.(fs.ReadDirFile)
		require.True(t, ok)
		first, err := rd.ReadDir(1)
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, "battle.bnk", first[0].Name())

		rest, err := rd.ReadDir(1)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.True(t, rest[0].IsDir())

		_, err = rd.ReadDir(1)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		_, err := fsys.Open("audio/nothing.bnk")
		assert.ErrorIs(t, err, fs.ErrNotExist)

		_, err = fsys.Open("../escape")
		assert.ErrorIs(t, err, fs.ErrInvalid)
	})
}
