package audio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jchantrell/packbnk/internal/bnk"
	"github.com/jchantrell/packbnk/internal/utils"
)

// Group counts the records of one object type
type Group struct {
	Type     bnk.HircType
	Total    int
	Problems int
}

// Clean returns the number of records that are neither unknown nor errored
func (g Group) Clean() int {
	return g.Total - g.Problems
}

// Summary is a per-type breakdown of a set of HIRC records
type Summary struct {
	Name    string
	Total   int
	Unknown int
	Errors  int
	Groups  []Group
}

// Summarize groups records by type and counts clean and problem members
func Summarize(name string, records []bnk.Record) Summary {
	t := newTally(name)
	for i := range records {
		t.add(&records[i])
	}
	return t.summary()
}

// Problems returns the number of records that are unknown or errored
func (s Summary) Problems() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Problems
	}
	return n
}

func (s Summary) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Result: %s\n", s.Name)
	fmt.Fprintf(&sb, "\tTotal objects: %s Unknown: %s Decoding errors: %s\n",
		utils.Number(int64(s.Total)), utils.Number(int64(s.Unknown)), utils.Number(int64(s.Errors)))

	sb.WriteString("\t\tCorrect:\n")
	for _, g := range s.Groups {
		if g.Clean() > 0 {
			fmt.Fprintf(&sb, "\t\t\t%s: %s\n", g.Type, utils.Number(int64(g.Clean())))
		}
	}

	if s.Problems() > 0 {
		sb.WriteString("\t\tError:\n")
		for _, g := range s.Groups {
			if g.Problems > 0 {
				fmt.Fprintf(&sb, "\t\t\t%s: %d/%d failed\n", g.Type, g.Problems, g.Total)
			}
		}
	}

	return sb.String()
}

// tally accumulates a Summary one record at a time
type tally struct {
	name    string
	total   int
	unknown int
	errors  int
	groups  map[bnk.HircType]*Group
}

func newTally(name string) *tally {
	return &tally{name: name, groups: make(map[bnk.HircType]*Group)}
}

func (t *tally) add(r *bnk.Record) {
	t.total++
	if r.Type == bnk.HircUnknown {
		t.unknown++
	}
	if r.HasError {
		t.errors++
	}

	g, ok := t.groups[r.Type]
	if !ok {
		g = &Group{Type: r.Type}
		t.groups[r.Type] = g
	}
	g.Total++
	if r.Problem() {
		g.Problems++
	}
}

func (t *tally) summary() Summary {
	s := Summary{
		Name:    t.name,
		Total:   t.total,
		Unknown: t.unknown,
		Errors:  t.errors,
		Groups:  make([]Group, 0, len(t.groups)),
	}
	for _, g := range t.groups {
		s.Groups = append(s.Groups, *g)
	}
	sort.Slice(s.Groups, func(i, j int) bool {
		return s.Groups[i].Type < s.Groups[j].Type
	})
	return s
}
