package fixture

import (
	"math/rand"
	"regexp"
	"time"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/database"
	"github.com/Rana718/fixturegen/internal/faker"
	"go.uber.org/zap"
)

// validIdentifier validates SQL identifiers (table/column names) that are
// spliced into statements rather than bound as arguments.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ProgressReporter receives advisory progress after each committed batch.
type ProgressReporter interface {
	Flushed(generator string, committed int)
	Done(generator string, stats Stats)
}

type nopProgress struct{}

func (nopProgress) Flushed(string, int) {}
func (nopProgress) Done(string, Stats) {}

// NopProgress discards progress.
var NopProgress ProgressReporter = nopProgress{}

// GenContext carries everything a generator needs for one run. It replaces
// process-wide faker/config singletons and is passed explicitly.
type GenContext struct {
	Adapter  database.Adapter
	Rand     *rand.Rand
	Faker    faker.ValueFaker
	Config   *config.Config
	Log      *zap.Logger
	Progress ProgressReporter

	// Clock defaults to time.Now; timestamps are UTC at second precision.
	Clock func() time.Time
}

// NewGenContext fills the optional fields with defaults.
func NewGenContext(adapter database.Adapter, cfg *config.Config, log *zap.Logger) *GenContext {
	seed := time.Now().UnixNano()
	if log == nil {
		log = zap.NewNop()
	}
	return &GenContext{
		Adapter:  adapter,
		Rand:     rand.New(rand.NewSource(seed)),
		Faker:    faker.New(seed),
		Config:   cfg,
		Log:      log,
		Progress: NopProgress,
		Clock:    time.Now,
	}
}

// Now returns the current time truncated for portable DATETIME storage.
func (gc *GenContext) Now() time.Time {
	clock := gc.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().UTC().Truncate(time.Second)
}

// Since returns a timestamp uniformly drawn from [now-back, now].
func (gc *GenContext) Since(back time.Duration) time.Time {
	now := gc.Now()
	return gc.Faker.TimeBetween(now.Add(-back), now)
}

// After returns a timestamp uniformly drawn from [t, now].
func (gc *GenContext) After(t time.Time) time.Time {
	now := gc.Now()
	if t.After(now) {
		return t
	}
	return gc.Faker.TimeBetween(t, now)
}

// Chance returns true with probability p.
func (gc *GenContext) Chance(p float64) bool {
	return gc.Rand.Float64() < p
}

// Between returns an int in [lo, hi].
func (gc *GenContext) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + gc.Rand.Intn(hi-lo+1)
}

// BatchSize is the configured flush threshold.
func (gc *GenContext) BatchSize() int {
	if gc.Config == nil || gc.Config.BatchSize <= 0 {
		return config.DefaultBatchSize
	}
	return gc.Config.BatchSize
}

// NewCommitter opens a BatchCommitter for the named generator.
func (gc *GenContext) NewCommitter(generator string) *BatchCommitter {
	return NewBatchCommitter(gc.Adapter, generator, gc.BatchSize(), gc.Progress)
}

// NewIndexCache returns a cache reading through the connection pool.
func (gc *GenContext) NewIndexCache() *IndexCache {
	return NewIndexCache(gc.Adapter.DB(), gc.Adapter.Builder())
}
