package progress

import (
	"bytes"
	"testing"

	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestConsoleReportsOnlyCompletion(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Flushed("users", 1000)
	assert.Empty(t, buf.String())

	c.Done("users", fixture.Stats{Rows: 1500, Flushes: 2})
	assert.Equal(t, "✓ users: 1500 rows in 2 batches\n", buf.String())
}

func TestConsoleMentionsSkippedDuplicates(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Done("likes", fixture.Stats{Rows: 10, Flushes: 1, Skipped: 4})
	assert.Contains(t, buf.String(), "(4 duplicates skipped)")
}

func TestBarsGrowPastEstimate(t *testing.T) {
	var buf bytes.Buffer
	b := NewBars(&buf)
	b.Expect("comments", 10)

	b.Flushed("comments", 5)
	b.Flushed("comments", 25)
	assert.Equal(t, 25, b.bars["comments"].GetMax())

	b.Done("comments", fixture.Stats{Rows: 25, Flushes: 2})
	assert.NotContains(t, b.bars, "comments")
	assert.Contains(t, buf.String(), "✓ comments: 25 rows in 2 batches")
}

func TestBarsWithoutEstimate(t *testing.T) {
	var buf bytes.Buffer
	b := NewBars(&buf)
	b.Flushed("chat", 100)
	b.Done("chat", fixture.Stats{Rows: 100, Flushes: 1})
	assert.Contains(t, buf.String(), "✓ chat: 100 rows")
}

var _ fixture.ProgressReporter = (*Bars)(nil)
var _ fixture.ProgressReporter = (*Console)(nil)
