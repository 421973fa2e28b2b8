package faker

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeBetweenStaysInRange(t *testing.T) {
	g := New(42)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	for i := 0; i < 1000; i++ {
		ts := g.TimeBetween(start, end)
		require.False(t, ts.Before(start), "got %v before %v", ts, start)
		require.False(t, ts.After(end), "got %v after %v", ts, end)
	}

	assert.Equal(t, start, g.TimeBetween(start, start))
	assert.Equal(t, end, g.TimeBetween(end, start))
}

func TestTextRespectsLimit(t *testing.T) {
	g := New(7)
	for i := 0; i < 200; i++ {
		assert.LessOrEqual(t, utf8.RuneCountInString(g.Text(50)), 50)
	}
}

func TestUsernamesAndEmailsAreUnique(t *testing.T) {
	g := New(1)
	names := make(map[string]bool)
	emails := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		u, e := g.Username(), g.Email()
		require.False(t, names[u], "duplicate username %s", u)
		require.False(t, emails[e], "duplicate email %s", e)
		names[u], emails[e] = true, true
	}
}

func TestSameSeedSameValues(t *testing.T) {
	a, b := New(99), New(99)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Title(), b.Title())
		assert.Equal(t, a.IPv4(), b.IPv4())
	}
}

func TestFileName(t *testing.T) {
	g := New(3)
	name := g.FileName(".pdf")
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)
	assert.False(t, strings.HasSuffix(name, "..pdf"), name)
	assert.Contains(t, g.FileName(""), "_")
}

func TestBirthdayAgeBounds(t *testing.T) {
	g := New(5)
	now := time.Now().UTC()
	for i := 0; i < 100; i++ {
		b := g.Birthday(18, 60)
		assert.True(t, b.Before(now.AddDate(-17, 0, 0)))
		assert.True(t, b.After(now.AddDate(-61, 0, 0)))
	}
}
