package pack

import (
	"errors"
	"fmt"
	"strings"
)

// Version identifies the layout revision of a pack file
type Version int

const (
	PFH0 Version = iota
	PFH2
	PFH3
	PFH4
	PFH5
	PFH6
)

var versionTags = map[Version]string{
	PFH0: "PFH0",
	PFH2: "PFH2",
	PFH3: "PFH3",
	PFH4: "PFH4",
	PFH5: "PFH5",
	PFH6: "PFH6",
}

func (v Version) String() string {
	if tag, ok := versionTags[v]; ok {
		return tag
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// ParseVersion maps a 4-byte header tag onto a Version
func ParseVersion(tag string) (Version, error) {
	upper := strings.ToUpper(tag)
	for v, t := range versionTags {
		if t == upper {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, tag)
}

var (
	// ErrUnknownVersion is returned when the header tag is not a supported PFH revision.
	ErrUnknownVersion = errors.New("unknown pack version")

	// ErrDuplicatePath is returned in strict mode when two index entries fold to the same path.
	ErrDuplicatePath = errors.New("duplicate entry path")

	// ErrOutOfBounds is returned when an entry points outside its backing store.
	ErrOutOfBounds = errors.New("entry outside backing store")

	// ErrTooManyFiles is returned when the header declares more entries than can be indexed.
	ErrTooManyFiles = errors.New("too many files in pack")
)

// FormatError reports a malformed header or entry index. It is fatal for the
// whole container.
type FormatError struct {
	Op     string // what was being read, e.g. "header" or "entry 12"
	Offset int64  // byte offset in the pack where reading started, -1 if unknown
	Err    error
}

func (e *FormatError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("malformed pack %s at offset %d: %v", e.Op, e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed pack %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DiscoveryHook is notified while a container is being loaded about entries
// whose name carries a registered suffix. The container is still under
// construction when the hook runs.
type DiscoveryHook interface {
	FileDiscovered(entry *Entry, container *Container, fullName string)
}

// DiscoveryHookFunc adapts a function to the DiscoveryHook interface
type DiscoveryHookFunc func(entry *Entry, container *Container, fullName string)

func (f DiscoveryHookFunc) FileDiscovered(entry *Entry, container *Container, fullName string) {
	f(entry, container, fullName)
}
