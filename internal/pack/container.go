package pack

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one file stored in a pack
type Entry struct {
	// Path is the lowercased, slash separated full path used as the table key
	Path string
	// Name is the base name of Path
	Name string
	// OriginalPath is the path exactly as stored in the index
	OriginalPath string
	// Compressed is only ever set for PFH5 packs
	Compressed bool

	Source
}

// Container is a loaded pack: its header plus the entry table. It is built
// once by Open or Read and not modified afterwards.
type Container struct {
	Name   string
	Path   string
	Header *Header
	// Size is the byte length of the backing store at load time
	Size int64

	backing    *Backing
	entries    map[string]*Entry
	paths      []string
	duplicates []string
	closer     io.Closer
}

// Entry looks up an entry by path. The path is case folded before lookup.
func (c *Container) Entry(p string) (*Entry, bool) {
	e, ok := c.entries[normalizePath(p)]
	return e, ok
}

// Len returns the number of distinct entry paths
func (c *Container) Len() int {
	return len(c.entries)
}

// Paths returns all entry paths in sorted order
func (c *Container) Paths() []string {
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// Entries returns all entries sorted by path
func (c *Container) Entries() []*Entry {
	out := make([]*Entry, len(c.paths))
	for i, p := range c.paths {
		out[i] = c.entries[p]
	}
	return out
}

// FindBySuffix returns entries whose path ends with any of the given suffixes
func (c *Container) FindBySuffix(suffixes ...string) []*Entry {
	var out []*Entry
	for _, p := range c.paths {
		for _, s := range suffixes {
			if strings.HasSuffix(p, strings.ToLower(s)) {
				out = append(out, c.entries[p])
				break
			}
		}
	}
	return out
}

// Duplicates lists paths that appeared more than once in the index; the last
// occurrence is the one kept in the table.
func (c *Container) Duplicates() []string {
	return c.duplicates
}

// Backing returns the store entries read from
func (c *Container) Backing() *Backing {
	return c.backing
}

// Close releases the file handle opened by Open. Entries cannot be read
// afterwards.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// Option configures container loading
type Option func(*loadOptions)

type loadOptions struct {
	strictPaths bool
	hooks       []suffixHook
}

type suffixHook struct {
	suffix string
	hook   DiscoveryHook
}

// WithStrictPaths makes a duplicated entry path a load error instead of
// letting the later entry win.
func WithStrictPaths() Option {
	return func(o *loadOptions) {
		o.strictPaths = true
	}
}

// WithDiscoveryHook registers a hook for entries whose base name ends with
// suffix (compared case-insensitively).
func WithDiscoveryHook(suffix string, hook DiscoveryHook) Option {
	return func(o *loadOptions) {
		o.hooks = append(o.hooks, suffixHook{suffix: strings.ToLower(suffix), hook: hook})
	}
}

// Open loads the pack at path. The file stays open until Close so entries
// can be read lazily. Any failure is reported with the path attached and no
// container is returned.
func Open(systemPath string, opts ...Option) (*Container, error) {
	f, err := os.Open(systemPath)
	if err != nil {
		return nil, fmt.Errorf("loading pack %s: %w", systemPath, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loading pack %s: %w", systemPath, err)
	}

	c, err := Read(systemPath, f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f

	return c, nil
}

// Read loads a pack from an arbitrary random access store. systemPath is used
// for naming and error messages only.
func Read(systemPath string, r io.ReaderAt, size int64, opts ...Option) (*Container, error) {
	c, err := load(systemPath, r, size, opts)
	if err != nil {
		slog.Error("Failed to load pack", "path", systemPath, "error", err)
		return nil, fmt.Errorf("loading pack %s: %w", systemPath, err)
	}

	slog.Debug("Pack loaded",
		"path", systemPath,
		"version", c.Header.Version,
		"file_count", c.Header.FileCount,
		"data_start", c.Header.DataStart)

	return c, nil
}

func load(systemPath string, r io.ReaderAt, size int64, opts []Option) (*Container, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(io.NewSectionReader(r, 0, size))

	header, err := DecodeHeader(br)
	if err != nil {
		return nil, err
	}

	if header.FileCount > math.MaxInt32 {
		return nil, &FormatError{Op: "header", Offset: 0, Err: fmt.Errorf("%w: %d", ErrTooManyFiles, header.FileCount)}
	}

	backing := newBacking(systemPath, r, size)
	c := &Container{
		Name:    strings.TrimSuffix(filepath.Base(systemPath), filepath.Ext(systemPath)),
		Path:    systemPath,
		Header:  header,
		Size:    size,
		backing: backing,
		entries: make(map[string]*Entry, min(header.FileCount, header.PackedIndexSize)),
	}

	offset := header.DataStart
	for i := 0; i < int(header.FileCount); i++ {
		var buf [4]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, &FormatError{Op: fmt.Sprintf("entry %d", i), Offset: -1, Err: truncated(err)}
		}
		entrySize := binary.LittleEndian.Uint32(buf[:])

		if header.HasIndexTimestamps() {
			if _, err := io.ReadFull(br, buf[:]); err != nil {
				return nil, &FormatError{Op: fmt.Sprintf("entry %d timestamp", i), Offset: -1, Err: truncated(err)}
			}
		}

		// whether the data is really compressed or only a compressed format
		compressed := false
		if header.HasCompressionFlags() {
			b, err := br.ReadByte()
			if err != nil {
				return nil, &FormatError{Op: fmt.Sprintf("entry %d compression flag", i), Offset: -1, Err: truncated(err)}
			}
			compressed = b != 0
		}

		original, err := readCString(br)
		if err != nil {
			return nil, &FormatError{Op: fmt.Sprintf("entry %d name", i), Offset: -1, Err: err}
		}

		full := normalizePath(original)
		entry := &Entry{
			Path:         full,
			Name:         path.Base(full),
			OriginalPath: original,
			Compressed:   compressed,
			Source: Source{
				backing: backing,
				offset:  offset,
				size:    int64(entrySize),
			},
		}

		if _, exists := c.entries[full]; exists {
			if o.strictPaths {
				return nil, &FormatError{Op: fmt.Sprintf("entry %d", i), Offset: -1, Err: fmt.Errorf("%w: %s", ErrDuplicatePath, full)}
			}
			slog.Warn("Duplicate entry path, later entry wins", "pack", systemPath, "path", full)
			c.duplicates = append(c.duplicates, full)
		} else {
			c.paths = append(c.paths, full)
		}
		c.entries[full] = entry

		for _, h := range o.hooks {
			if strings.HasSuffix(entry.Name, h.suffix) {
				h.hook.FileDiscovered(entry, c, original)
			}
		}

		offset += int64(entrySize)
	}

	sort.Strings(c.paths)

	return c, nil
}

// normalizePath folds case and converts Windows separators
func normalizePath(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
}
