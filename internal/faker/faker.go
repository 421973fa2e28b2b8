// Package faker supplies human-readable field values to generators. The
// engine depends only on ValueFaker; Gofake backs it with gofakeit.
package faker

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// ValueFaker is the value-generation capability the generators consume.
type ValueFaker interface {
	Username() string
	Nickname() string
	Email() string
	Phone() string
	Bio() string

	Title() string
	Sentence(words int) string
	Text(maxChars int) string
	Word() string
	Language() string
	Code(language string) string

	IPv4() string
	UserAgent() string
	URL() string
	ImageURL(width, height int) string
	FileName(ext string) string

	// Region returns a (province, city) pair.
	Region() (string, string)
	TimeBetween(start, end time.Time) time.Time
	Birthday(minAge, maxAge int) time.Time
}

var languages = []string{
	"go", "python", "javascript", "typescript", "java", "rust",
	"c", "cpp", "sql", "bash", "ruby", "php", "kotlin", "swift",
}

var _ ValueFaker = (*Gofake)(nil)

// Gofake is a seeded ValueFaker. It is not safe for concurrent use.
type Gofake struct {
	f       *gofakeit.Faker
	r       *rand.Rand
	counter int
}

func New(seed int64) *Gofake {
	return &Gofake{
		f: gofakeit.New(seed),
		r: rand.New(rand.NewSource(seed)),
	}
}

// Username is unique within one Gofake.
func (g *Gofake) Username() string {
	g.counter++
	name := strings.ToLower(strings.ReplaceAll(g.f.Username(), " ", ""))
	return fmt.Sprintf("%s_%d", name, g.counter)
}

func (g *Gofake) Nickname() string {
	return g.f.FirstName() + " " + g.f.LastName()
}

// Email is unique within one Gofake.
func (g *Gofake) Email() string {
	g.counter++
	local := strings.ToLower(g.f.FirstName() + "." + g.f.LastName())
	return fmt.Sprintf("%s%d@%s", local, g.counter, g.f.DomainName())
}

func (g *Gofake) Phone() string { return g.f.Phone() }

func (g *Gofake) Bio() string { return truncate(g.f.HipsterSentence(12), 255) }

func (g *Gofake) Title() string {
	title := g.f.HackerPhrase()
	return truncate(strings.TrimSuffix(title, "!"), 200)
}

func (g *Gofake) Sentence(words int) string {
	if words <= 0 {
		words = 1
	}
	return g.f.Sentence(words)
}

// Text returns paragraph text of at most maxChars runes.
func (g *Gofake) Text(maxChars int) string {
	return truncate(g.f.Paragraph(1, 1+g.r.Intn(4), 12, " "), maxChars)
}

func (g *Gofake) Word() string { return g.f.Word() }

func (g *Gofake) Language() string { return languages[g.r.Intn(len(languages))] }

func (g *Gofake) Code(language string) string {
	lines := 3 + g.r.Intn(10)
	var b strings.Builder
	comment := "//"
	switch language {
	case "python", "bash", "ruby":
		comment = "#"
	case "sql":
		comment = "--"
	}
	for i := 0; i < lines; i++ {
		if i%4 == 0 {
			fmt.Fprintf(&b, "%s %s\n", comment, g.f.HackerPhrase())
			continue
		}
		fmt.Fprintf(&b, "%s%s_%s = %d\n", strings.Repeat("    ", i%3), g.f.HackerNoun(), g.f.HackerVerb(), g.r.Intn(1000))
	}
	return b.String()
}

func (g *Gofake) IPv4() string { return g.f.IPv4Address() }

func (g *Gofake) UserAgent() string { return g.f.UserAgent() }

func (g *Gofake) URL() string { return g.f.URL() }

func (g *Gofake) ImageURL(width, height int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", g.r.Intn(1_000_000), width, height)
}

func (g *Gofake) FileName(ext string) string {
	base := strings.ToLower(g.f.Word() + "_" + g.f.Word())
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

func (g *Gofake) Region() (string, string) {
	return g.f.State(), g.f.City()
}

// TimeBetween is uniform over [start, end] at second precision.
func (g *Gofake) TimeBetween(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	span := end.Unix() - start.Unix()
	return time.Unix(start.Unix()+g.r.Int63n(span+1), 0).UTC()
}

func (g *Gofake) Birthday(minAge, maxAge int) time.Time {
	now := time.Now().UTC()
	oldest := now.AddDate(-maxAge, 0, 0)
	youngest := now.AddDate(-minAge, 0, 0)
	return g.TimeBetween(oldest, youngest).Truncate(24 * time.Hour)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
