package bnk

import (
	"hash/fnv"
	"strings"
)

// HashName computes the Wwise short id of an object name: 32-bit FNV-1 over
// the lowercased name. Events, buses and switches are referenced by these ids
// inside HIRC records.
func HashName(name string) uint32 {
	h := fnv.New32()
	h.Write([]byte(strings.ToLower(name)))
	return h.Sum32()
}
