// Package audio aggregates the sound banks found in pack files into global
// lookup tables of HIRC records and embedded audio, keeping every
// contributor when ids collide across banks.
package audio

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jchantrell/packbnk/internal/bnk"
	"github.com/jchantrell/packbnk/internal/pack"
)

// BankParser turns raw bank bytes into a parsed bank. Implementations must
// be safe for concurrent use.
type BankParser interface {
	Parse(data []byte, name string) (*bnk.Bank, error)
}

// ProgressFunc is called after each bank finishes decoding. It may be called
// from several goroutines.
type ProgressFunc func(done, total int, bank string)

// Blob is one embedded audio file
type Blob struct {
	ID   uint32
	Data []byte
	Bank string
}

// Failure records a bank that could not be decoded
type Failure struct {
	Bank  string
	Error string
}

// Result holds the merged content of all decoded banks. Ids map to every
// record or blob that carried them, in discovery order.
type Result struct {
	Records  map[uint32][]bnk.Record
	Blobs    map[uint32][]Blob
	Failures []Failure

	// Banks lists the banks that decoded, WithUnknowns the subset holding
	// unknown or errored records
	Banks        []string
	WithUnknowns []string

	Summary Summary
}

// RecordCount returns the number of merged records
func (r *Result) RecordCount() int {
	n := 0
	for _, recs := range r.Records {
		n += len(recs)
	}
	return n
}

// BlobCount returns the number of merged blobs and their total size
func (r *Result) BlobCount() (int, int64) {
	n, size := 0, int64(0)
	for _, blobs := range r.Blobs {
		n += len(blobs)
		for _, b := range blobs {
			size += int64(len(b.Data))
		}
	}
	return n, size
}

// Loader discovers, decodes and merges sound banks
type Loader struct {
	parser            BankParser
	workers           int
	includeAllLocales bool
	bankReports       bool
	progress          ProgressFunc
}

// Option configures a Loader
type Option func(*Loader)

// WithWorkers sets the number of concurrent decodes. Values below 1 use the
// number of CPUs.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		l.workers = n
	}
}

// WithAllLocales keeps localized banks that are skipped by default
func WithAllLocales(include bool) Option {
	return func(l *Loader) {
		l.includeAllLocales = include
	}
}

// WithBankReports logs a per-type summary for every bank at debug level
func WithBankReports() Option {
	return func(l *Loader) {
		l.bankReports = true
	}
}

// WithProgress registers a callback for decode progress
func WithProgress(fn ProgressFunc) Option {
	return func(l *Loader) {
		l.progress = fn
	}
}

// NewLoader creates a Loader using parser for individual banks
func NewLoader(parser BankParser, opts ...Option) *Loader {
	l := &Loader{parser: parser}
	for _, opt := range opts {
		opt(l)
	}
	if l.workers < 1 {
		l.workers = runtime.NumCPU()
	}
	return l
}

// LoadPacks opens every pack, aggregates their banks and closes them again.
// It fails only when a pack cannot be loaded; bank failures are reported in
// the result.
func (l *Loader) LoadPacks(paths []string, opts ...pack.Option) (*Result, error) {
	containers := make([]*pack.Container, 0, len(paths))
	defer func() {
		for _, c := range containers {
			c.Close()
		}
	}()

	for _, p := range paths {
		c, err := pack.Open(p, opts...)
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}

	return l.Load(containers...), nil
}

// decoded is the outcome of one decode task; exactly one field is set
type decoded struct {
	bank    *bnk.Bank
	failure *Failure
}

// Load aggregates the banks of already loaded containers. Individual bank
// failures never make Load fail.
func (l *Loader) Load(containers ...*pack.Container) *Result {
	candidates := Discover(containers, l.includeAllLocales)
	slog.Info("Parsing sound banks", "banks", len(candidates), "workers", l.workers)

	results := l.decodeAll(candidates)

	return l.merge(results)
}

// decodeAll runs one task per candidate. Each task only writes its own slot.
func (l *Loader) decodeAll(candidates []Candidate) []decoded {
	results := make([]decoded, len(candidates))
	total := len(candidates)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(l.workers)
	for i, c := range candidates {
		g.Go(func() error {
			results[i] = l.decode(c)

			n := done.Add(1)
			slog.Debug("Bank decoded", "bank", c.Name, "done", n, "total", total)
			if l.progress != nil {
				l.progress(int(n), total, c.Name)
			}
			return nil
		})
	}
	// tasks never return errors; failures are carried in the slots
	_ = g.Wait()

	return results
}

func (l *Loader) decode(c Candidate) (out decoded) {
	defer func() {
		if r := recover(); r != nil {
			out = decoded{failure: &Failure{Bank: c.Name, Error: fmt.Sprintf("parser panic: %v", r)}}
		}
	}()

	data, err := c.Entry.Read()
	if err != nil {
		return decoded{failure: &Failure{Bank: c.Name, Error: err.Error()}}
	}

	b, err := l.parser.Parse(data, c.Name)
	if err != nil {
		return decoded{failure: &Failure{Bank: c.Name, Error: err.Error()}}
	}
	if b == nil {
		return decoded{failure: &Failure{Bank: c.Name, Error: "parser returned no bank"}}
	}
	// merge slices media out of Data, so ranges are checked here
	if err := b.CheckMedia(); err != nil {
		return decoded{failure: &Failure{Bank: c.Name, Error: err.Error()}}
	}

	return decoded{bank: b}
}

// merge folds the finished decode results into the global tables. It runs
// after every task has completed and needs no locking.
func (l *Loader) merge(results []decoded) *Result {
	out := &Result{
		Records: make(map[uint32][]bnk.Record),
		Blobs:   make(map[uint32][]Blob),
	}
	all := newTally("All")

	for _, res := range results {
		if res.failure != nil {
			out.Failures = append(out.Failures, *res.failure)
			continue
		}

		b := res.bank
		out.Banks = append(out.Banks, b.Name)
		if b.HasUnknowns() {
			out.WithUnknowns = append(out.WithUnknowns, b.Name)
		}
		if l.bankReports {
			slog.Debug("Bank summary", "bank", b.Name, "report", Summarize(b.Name, b.Records).String())
		}

		if b.Index != nil && b.Data != nil {
			for _, ref := range b.Index {
				out.Blobs[ref.ID] = append(out.Blobs[ref.ID], Blob{
					ID:   ref.ID,
					Data: b.Media(ref),
					Bank: b.Name,
				})
			}
		}

		for i := range b.Records {
			rec := b.Records[i]
			out.Records[rec.ID] = append(out.Records[rec.ID], rec)
			all.add(&rec)
		}
	}

	out.Summary = all.summary()

	blobs, blobBytes := out.BlobCount()
	slog.Info("Sound banks aggregated",
		"banks", len(out.Banks),
		"failed", len(out.Failures),
		"with_unknowns", len(out.WithUnknowns),
		"records", out.Summary.Total,
		"unknown", out.Summary.Unknown,
		"errors", out.Summary.Errors,
		"blobs", blobs,
		"blob_bytes", blobBytes)

	for _, f := range out.Failures {
		slog.Error("Bank failed to decode", "bank", f.Bank, "error", f.Error)
	}

	return out
}
