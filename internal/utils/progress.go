package utils

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// Progress represents a progress bar using mpb. Update may be called from
// several goroutines.
type Progress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	enabled   bool

	mu          sync.Mutex
	description string

	// countMu is held across SetCurrent so the bar sees counts in order.
	// The decorators take mu, never countMu.
	countMu sync.Mutex
	current int
}

var descLength = 28

// NewProgress creates a new progress bar with the given total count. The
// bar is only drawn when enabled and stderr is a terminal.
func NewProgress(total int, enabled bool) *Progress {
	p := &Progress{enabled: enabled && isTerminal()}
	if !p.enabled {
		return p
	}

	fmt.Fprintln(os.Stderr)

	p.container = mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				desc := p.currentDescription()
				if len(desc) > descLength {
					return ".." + desc[len(desc)-descLength+2:]
				}
				return desc
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)

	return p
}

func (p *Progress) currentDescription() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.description
}

// Update sets the completed count and the label shown next to the bar.
// Counts reported out of order never move the bar backwards.
func (p *Progress) Update(current int, description string) {
	p.mu.Lock()
	p.description = description
	p.mu.Unlock()

	p.countMu.Lock()
	defer p.countMu.Unlock()
	if current <= p.current {
		return
	}
	p.current = current

	if p.enabled && p.bar != nil {
		p.bar.SetCurrent(int64(current))
	}
}

// Finish completes the progress bar and shuts down the container
func (p *Progress) Finish() {
	if !p.enabled || p.container == nil {
		return
	}

	p.bar.SetTotal(-1, true)
	p.container.Wait()

	fmt.Fprintln(os.Stderr)
}

// isTerminal checks if stderr is a terminal (TTY)
func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
