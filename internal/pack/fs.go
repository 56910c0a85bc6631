package pack

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// FS returns a read-only filesystem view of the container. Paths are the
// case folded entry paths; directories are implied by them.
func (c *Container) FS() fs.FS {
	return &packFS{c: c}
}

// packFS implements fs.FS over the sorted path list of a container
type packFS struct {
	c *Container
}

func (p *packFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if name == "." {
		return &packDir{fs: p, prefix: "", offset: 0}, nil
	}

	paths := p.c.paths
	key := strings.ToLower(name)

	if e, ok := p.c.entries[key]; ok {
		return &packFile{fs: p, entry: e}, nil
	}

	dirName := key + "/"
	idx := sort.SearchStrings(paths, dirName)
	if idx < len(paths) && strings.HasPrefix(paths[idx], dirName) {
		return &packDir{fs: p, prefix: dirName, offset: idx}, nil
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// packFile implements fs.File; the section reader is created on first Read
type packFile struct {
	fs     *packFS
	entry  *Entry
	reader *io.SectionReader
}

func (f *packFile) initReader() error {
	if f.reader != nil {
		return nil
	}

	r, err := f.entry.Reader()
	if err != nil {
		return &fs.PathError{Op: "read", Path: f.entry.Path, Err: err}
	}
	f.reader = r

	return nil
}

func (f *packFile) Read(p []byte) (int, error) {
	if err := f.initReader(); err != nil {
		return 0, err
	}
	return f.reader.Read(p)
}

func (f *packFile) Close() error {
	return nil
}

func (f *packFile) Stat() (fs.FileInfo, error) {
	return packFileInfo{f.entry}, nil
}

type packFileInfo struct {
	entry *Entry
}

func (fi packFileInfo) Name() string       { return fi.entry.Name }
func (fi packFileInfo) Size() int64        { return fi.entry.Size() }
func (fi packFileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi packFileInfo) ModTime() time.Time { return time.Unix(0, 0) }
func (fi packFileInfo) IsDir() bool        { return false }
func (fi packFileInfo) Sys() any           { return fi.entry }

// packDir implements fs.ReadDirFile for a synthesized directory
type packDir struct {
	fs     *packFS
	prefix string
	offset int
}

func (d *packDir) Read(p []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name(), Err: fmt.Errorf("is a directory")}
}

func (d *packDir) Close() error {
	return nil
}

func (d *packDir) Stat() (fs.FileInfo, error) {
	return packDirInfo{name: d.name()}, nil
}

func (d *packDir) name() string {
	if d.prefix == "" {
		return "."
	}
	return path.Base(strings.TrimSuffix(d.prefix, "/"))
}

func (d *packDir) ReadDir(n int) ([]fs.DirEntry, error) {
	paths := d.fs.c.paths
	prefixLen := len(d.prefix)

	dirents := []fs.DirEntry{}

	for d.offset < len(paths) {
		p := paths[d.offset]
		if !strings.HasPrefix(p, d.prefix) {
			break
		}

		slashIdx := strings.Index(p[prefixLen:], "/")
		if slashIdx != -1 {
			dir := p[:prefixLen+slashIdx]
			dirents = append(dirents, packDirEntry{name: path.Base(dir)})
			// skip everything below this subdirectory
			d.offset += sort.Search(len(paths)-d.offset, func(i int) bool {
				return paths[d.offset+i] >= dir+"/\xff"
			})
		} else {
			dirents = append(dirents, packDirEntry{name: path.Base(p), entry: d.fs.c.entries[p]})
			d.offset++
		}

		if n > 0 && len(dirents) >= n {
			return dirents, nil
		}
	}

	if n > 0 && len(dirents) == 0 {
		return dirents, io.EOF
	}

	return dirents, nil
}

type packDirInfo struct {
	name string
}

func (di packDirInfo) Name() string       { return di.name }
func (di packDirInfo) Size() int64        { return 0 }
func (di packDirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (di packDirInfo) ModTime() time.Time { return time.Unix(0, 0) }
func (di packDirInfo) IsDir() bool        { return true }
func (di packDirInfo) Sys() any           { return nil }

// packDirEntry implements fs.DirEntry; entry is nil for directories
type packDirEntry struct {
	name  string
	entry *Entry
}

func (de packDirEntry) Name() string { return de.name }
func (de packDirEntry) IsDir() bool  { return de.entry == nil }

func (de packDirEntry) Type() fs.FileMode {
	if de.IsDir() {
		return fs.ModeDir
	}
	return 0
}

func (de packDirEntry) Info() (fs.FileInfo, error) {
	if de.IsDir() {
		return packDirInfo{name: de.name}, nil
	}
	return packFileInfo{de.entry}, nil
}
