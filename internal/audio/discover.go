package audio

import (
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jchantrell/packbnk/internal/pack"
)

// BankExtensions are the entry suffixes treated as sound banks
var BankExtensions = []string{".bnk", ".bank"}

// Locales are the localized bank markers skipped unless all locales are requested
var Locales = []string{
	"chinese",
	"french(france)",
	"german",
	"italian",
	"polish",
	"russian",
	"spanish(spain)",
}

var (
	// banks under a media folder hold streamed audio only
	deniedDirs = map[string]bool{"media": true}

	// init holds bus and plugin setup; blood data is not playable
	deniedBanks = map[string]bool{
		"init":                 true,
		"animation_blood_data": true,
	}
)

// Candidate is a bank entry selected for decoding
type Candidate struct {
	// Name is the entry path, used as the bank's owner name
	Name  string
	Pack  string
	Entry *pack.Entry
}

// IsBank reports whether an entry path has a bank extension
func IsBank(p string) bool {
	for _, ext := range BankExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// Wanted reports whether a bank path survives the deny list and, unless
// includeAllLocales is set, the locale filter. p must be a case folded entry
// path.
func Wanted(p string, includeAllLocales bool) bool {
	if !IsBank(p) {
		return false
	}

	dir, file := path.Split(p)
	for _, seg := range strings.Split(strings.TrimSuffix(dir, "/"), "/") {
		if deniedDirs[seg] {
			return false
		}
	}
	if deniedBanks[strings.TrimSuffix(file, path.Ext(file))] {
		return false
	}

	if !includeAllLocales {
		for _, locale := range Locales {
			if strings.Contains(p, locale) {
				return false
			}
		}
	}

	return true
}

// Discover selects the bank entries to decode from the given containers.
// When several containers hold the same path the later one wins, matching
// pack load order. Candidates are returned sorted by path.
func Discover(containers []*pack.Container, includeAllLocales bool) []Candidate {
	found := 0
	byPath := make(map[string]Candidate)

	for _, c := range containers {
		for _, e := range c.FindBySuffix(BankExtensions...) {
			found++
			if !Wanted(e.Path, includeAllLocales) {
				continue
			}
			if prev, ok := byPath[e.Path]; ok {
				slog.Debug("Bank shadowed by later pack", "bank", e.Path, "previous", prev.Pack, "pack", c.Path)
			}
			byPath[e.Path] = Candidate{Name: e.Path, Pack: c.Path, Entry: e}
		}
	}

	candidates := make([]Candidate, 0, len(byPath))
	for _, cand := range byPath {
		candidates = append(candidates, cand)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})

	slog.Info("Discovered sound banks", "found", found, "selected", len(candidates), "all_locales", includeAllLocales)

	return candidates
}
