// Package progress renders advisory generator progress. Reporters are fed
// after each committed batch and never influence the run itself.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Bars draws one progress bar per generator.
type Bars struct {
	mu     sync.Mutex
	out    io.Writer
	totals map[string]int
	bars   map[string]*progressbar.ProgressBar
}

func NewBars(out io.Writer) *Bars {
	if out == nil {
		out = os.Stderr
	}
	return &Bars{
		out:    out,
		totals: make(map[string]int),
		bars:   make(map[string]*progressbar.ProgressBar),
	}
}

// Expect sets the row estimate for a generator; unknown totals render as a
// spinner.
func (b *Bars) Expect(generator string, rows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totals[generator] = rows
}

func (b *Bars) bar(generator string) *progressbar.ProgressBar {
	if bar, ok := b.bars[generator]; ok {
		return bar
	}
	total, ok := b.totals[generator]
	if !ok || total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription(fmt.Sprintf("%-14s", generator)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	b.bars[generator] = bar
	return bar
}

func (b *Bars) Flushed(generator string, committed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bar := b.bar(generator)
	if max := bar.GetMax(); max > 0 && committed > max {
		bar.ChangeMax(committed)
	}
	_ = bar.Set(committed)
}

func (b *Bars) Done(generator string, stats fixture.Stats) {
	b.mu.Lock()
	bar := b.bar(generator)
	_ = bar.Finish()
	delete(b.bars, generator)
	b.mu.Unlock()

	fmt.Fprintln(b.out)
	printDone(b.out, generator, stats)
}

// Console prints one colored line per finished generator and nothing else.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Flushed(string, int) {}

func (c *Console) Done(generator string, stats fixture.Stats) {
	printDone(c.out, generator, stats)
}

func printDone(out io.Writer, generator string, stats fixture.Stats) {
	green := color.New(color.FgGreen)
	green.Fprintf(out, "✓ %s: %d rows in %d batches", generator, stats.Rows, stats.Flushes)
	if stats.Skipped > 0 {
		color.New(color.FgYellow).Fprintf(out, " (%d duplicates skipped)", stats.Skipped)
	}
	fmt.Fprintln(out)
}
