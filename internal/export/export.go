// Package export writes pack entries and embedded bank audio to disk.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jchantrell/packbnk/internal/audio"
	"github.com/jchantrell/packbnk/internal/pack"
)

// fallbackAudioExt is used when the audio content type is not recognized
const fallbackAudioExt = ".wem"

// Exporter handles exporting files to an output directory
type Exporter struct {
	outputDir string
	flatten   bool
}

// Option configures an Exporter
type Option func(*Exporter)

// WithFlatten writes every file directly into the output directory, joining
// path segments with @ instead of creating subdirectories.
func WithFlatten() Option {
	return func(e *Exporter) {
		e.flatten = true
	}
}

// NewExporter creates a new file exporter
func NewExporter(outputDir string, opts ...Option) *Exporter {
	e := &Exporter{outputDir: outputDir}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProgressCallback is called to report export progress
type ProgressCallback func(current int, total int, description string)

// ExportEntries copies the stored bytes of each entry. Compressed entries
// are written as stored. It returns the number of bytes written.
func (e *Exporter) ExportEntries(entries []*pack.Entry, progressCallback ProgressCallback) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	var written int64
	for i, entry := range entries {
		data, err := entry.Read()
		if err != nil {
			return written, fmt.Errorf("loading file %s: %w", entry.Path, err)
		}
		if entry.Compressed {
			slog.Warn("Entry is compressed, writing stored bytes", "path", entry.Path)
		}

		outputPath, err := e.write(entry.Path, data)
		if err != nil {
			return written, err
		}
		written += int64(len(data))

		slog.Debug("Copied file", "path", entry.Path, "output", outputPath)

		if progressCallback != nil {
			progressCallback(i+1, len(entries), entry.Path)
		}
	}

	return written, nil
}

// ExportBlobs writes every embedded audio file of res under
// <bank>/<id><ext>, taking the extension from the detected content type.
// Ids shared by several banks produce one file per bank; an id repeated
// within one bank gets _1, _2 and so on before the extension.
func (e *Exporter) ExportBlobs(res *audio.Result, progressCallback ProgressCallback) (int64, error) {
	total, _ := res.BlobCount()
	if total == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	ids := make([]uint32, 0, len(res.Blobs))
	for id := range res.Blobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var written int64
	done := 0
	seen := make(map[string]int)
	for _, id := range ids {
		for _, b := range res.Blobs[id] {
			name := BlobPath(b)
			if n := seen[name]; n > 0 {
				seen[name]++
				ext := path.Ext(name)
				name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
			} else {
				seen[name] = 1
			}
			if _, err := e.write(name, b.Data); err != nil {
				return written, err
			}
			written += int64(len(b.Data))

			done++
			if progressCallback != nil {
				progressCallback(done, total, name)
			}
		}
	}

	slog.Info("Exported audio", "files", done, "output", e.outputDir)

	return written, nil
}

// BlobPath returns the slash separated output path of an audio blob
func BlobPath(b audio.Blob) string {
	ext := mimetype.Detect(b.Data).Extension()
	if ext == "" {
		ext = fallbackAudioExt
	}
	return b.Bank + "/" + strconv.FormatUint(uint64(b.ID), 10) + ext
}

func (e *Exporter) write(name string, data []byte) (string, error) {
	var outputPath string
	if e.flatten {
		outputPath = filepath.Join(e.outputDir, sanitizePath(name))
	} else {
		outputPath = filepath.Join(e.outputDir, filepath.FromSlash(cleanPath(name)))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return "", fmt.Errorf("creating directory for %s: %w", name, err)
		}
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", outputPath, err)
	}

	return outputPath, nil
}

// cleanPath keeps a stored path inside the output directory
func cleanPath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+p)), "/")
}

// sanitizePath replaces forward slashes with @ symbols
func sanitizePath(p string) string {
	return strings.ReplaceAll(cleanPath(p), "/", "@")
}
