// Package generators holds one EntityGenerator per table family and the
// pipeline that runs them in dependency order.
package generators

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
	"go.uber.org/zap"
)

// Generator populates one family of tables.
type Generator interface {
	Name() string
	DependsOn() []string
	// Tables lists the tables written, parents first.
	Tables() []string
	// Estimate is the expected number of staged rows, for progress only.
	Estimate(cfg *config.Config) int
	Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error)
	// Rollups recompute the counters this family's rows feed. They run after
	// Run committed.
	Rollups() []fixture.Rollup
}

// ScalarRollups is implemented by generators that maintain keyed totals.
// now anchors time-windowed totals.
type ScalarRollups interface {
	ScalarRollups(qb squirrel.StatementBuilderType, now time.Time) []fixture.ScalarRollup
}

// All returns every generator in registration order.
func All() []Generator {
	return []Generator{
		&Users{},
		&Categories{},
		&Articles{},
		&Resources{},
		&Comments{},
		&Chat{},
		&Likes{},
		&LoginHistory{},
		&Statistics{},
	}
}

// Names lists the names of gens.
func Names(gens []Generator) []string {
	names := make([]string, len(gens))
	for i, g := range gens {
		names[i] = g.Name()
	}
	return names
}

func lookup(gens []Generator, name string) (Generator, error) {
	for _, g := range gens {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("unknown generator %q (available: %v)", name, Names(gens))
}

// commitRun stages rows through a fresh committer, finalizing on success and
// rolling back the open batch on failure.
func commitRun(ctx context.Context, gc *fixture.GenContext, name string, body func(c *fixture.BatchCommitter) (int, error)) (fixture.Stats, error) {
	c := gc.NewCommitter(name)
	skipped, err := body(c)
	if err == nil {
		err = c.Finalize(ctx)
	}
	stats := fixture.Stats{Rows: c.Committed(), Flushes: c.Flushes(), Skipped: skipped}
	if err != nil {
		if rbErr := c.Rollback(ctx); rbErr != nil {
			gc.Log.Warn("rollback failed", zap.String("generator", name), zap.Error(rbErr))
		}
		return stats, fmt.Errorf("%s: %w", name, err)
	}
	return stats, nil
}
