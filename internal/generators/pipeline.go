package generators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options select what a pipeline run does.
type Options struct {
	// Only restricts the run to these generators. Dependencies outside the
	// set are not pulled in; their tables must already hold rows.
	Only []string
	// Truncate empties every fixture table before generating.
	Truncate bool
}

// Result is the outcome of one generator.
type Result struct {
	Name     string
	Stats    fixture.Stats
	Duration time.Duration
	Err      error
}

type expecter interface {
	Expect(generator string, rows int)
}

// Pipeline runs generators sequentially in dependency order and halts on the
// first failure.
type Pipeline struct {
	gc    *fixture.GenContext
	gens  []Generator
	RunID string
}

func NewPipeline(gc *fixture.GenContext, gens []Generator) *Pipeline {
	runID := uuid.NewString()
	if gc.Log == nil {
		gc.Log = zap.NewNop()
	}
	gc.Log = gc.Log.With(zap.String("run_id", runID))
	if gc.Progress == nil {
		gc.Progress = fixture.NopProgress
	}
	return &Pipeline{gc: gc, gens: gens, RunID: runID}
}

// Plan returns the generators selected by only, parents first.
func (p *Pipeline) Plan(only []string) ([]Generator, error) {
	selected := p.gens
	if len(only) > 0 {
		selected = nil
		for _, name := range only {
			g, err := lookup(p.gens, strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			selected = append(selected, g)
		}
	}

	in := make(map[string]bool, len(selected))
	for _, g := range selected {
		in[g.Name()] = true
	}

	graph := NewDependencyGraph()
	for _, g := range selected {
		var deps []string
		for _, d := range g.DependsOn() {
			if len(only) == 0 || in[d] {
				deps = append(deps, d)
			}
		}
		graph.Add(g.Name(), deps...)
	}
	order, err := graph.BuildOrder()
	if err != nil {
		return nil, err
	}

	plan := make([]Generator, len(order))
	for i, name := range order {
		plan[i], _ = lookup(selected, name)
	}
	return plan, nil
}

// Run executes the plan. Results cover every generator that started; the
// returned error is the first failure.
func (p *Pipeline) Run(ctx context.Context, opts Options) ([]Result, error) {
	color.Cyan("🌱 Starting fixture generation...")

	plan, err := p.Plan(opts.Only)
	if err != nil {
		return nil, fmt.Errorf("failed to build generation order: %w", err)
	}
	color.Cyan("📋 Generation order: %s", strings.Join(Names(plan), " → "))
	fmt.Println()
	p.gc.Log.Info("run started",
		zap.Strings("order", Names(plan)),
		zap.Int("batch_size", p.gc.BatchSize()))

	if opts.Truncate {
		color.Yellow("🗑️  Truncating %d fixture tables...", len(schema.Tables))
		if err := schema.Truncate(ctx, p.gc.Adapter, schema.Tables); err != nil {
			return nil, fmt.Errorf("failed to truncate tables: %w", err)
		}
	}

	var results []Result
	for _, g := range plan {
		res := p.runOne(ctx, g)
		results = append(results, res)
		if res.Err != nil {
			color.Red("❌ %s failed: %v", g.Name(), res.Err)
			if skipped := len(plan) - len(results); skipped > 0 {
				color.Yellow("⚠️  Skipping %d remaining generator(s)", skipped)
			}
			return results, res.Err
		}
	}

	color.Green("\n✅ Fixture generation completed successfully!")
	return results, nil
}

func (p *Pipeline) runOne(ctx context.Context, g Generator) Result {
	log := p.gc.Log.With(zap.String("generator", g.Name()))
	if e, ok := p.gc.Progress.(expecter); ok {
		e.Expect(g.Name(), g.Estimate(p.gc.Config))
	}

	start := time.Now()
	stats, err := g.Run(ctx, p.gc)
	if err == nil {
		err = p.rollup(ctx, g)
	}
	res := Result{Name: g.Name(), Stats: stats, Duration: time.Since(start), Err: err}

	if err != nil {
		fields := []zap.Field{zap.Int("committed", stats.Rows), zap.Error(err)}
		var pe *fixture.PersistenceError
		if errors.As(err, &pe) {
			fields = append(fields, zap.String("table", pe.Table), zap.String("kind", pe.Kind.String()))
		}
		log.Error("generator failed", fields...)
		return res
	}

	p.gc.Progress.Done(g.Name(), stats)
	log.Info("generator finished",
		zap.Int("rows", stats.Rows),
		zap.Int("batches", stats.Flushes),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("duration", res.Duration))
	return res
}

func (p *Pipeline) rollup(ctx context.Context, g Generator) error {
	u := fixture.NewRollupUpdater(p.gc.Adapter.DB(), p.gc.Adapter.Builder())
	if rollups := g.Rollups(); len(rollups) > 0 {
		if err := u.RecomputeAll(ctx, rollups...); err != nil {
			return fmt.Errorf("%s rollups: %w", g.Name(), err)
		}
	}
	if s, ok := g.(ScalarRollups); ok {
		for _, sr := range s.ScalarRollups(p.gc.Adapter.Builder(), p.gc.Now()) {
			if err := u.SetScalar(ctx, sr); err != nil {
				return fmt.Errorf("%s %s: %w", g.Name(), sr.Key, err)
			}
		}
	}
	return nil
}

// Rollup recomputes the counters of the selected generators without
// generating anything.
func (p *Pipeline) Rollup(ctx context.Context, only []string) error {
	plan, err := p.Plan(only)
	if err != nil {
		return err
	}
	for _, g := range plan {
		if err := p.rollup(ctx, g); err != nil {
			return err
		}
		p.gc.Log.Debug("rollups recomputed", zap.String("generator", g.Name()))
	}
	return nil
}

// PrintSummary writes one line per result.
func PrintSummary(w io.Writer, results []Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-14s %10s %8s %8s %10s\n", "GENERATOR", "ROWS", "BATCHES", "SKIPPED", "DURATION")
	total := 0
	for _, r := range results {
		status := color.GreenString("ok")
		if r.Err != nil {
			status = color.RedString("failed")
		}
		fmt.Fprintf(w, "%-14s %10d %8d %8d %10s  %s\n",
			r.Name, r.Stats.Rows, r.Stats.Flushes, r.Stats.Skipped,
			r.Duration.Round(time.Millisecond), status)
		total += r.Stats.Rows
	}
	fmt.Fprintf(w, "%-14s %10d\n", "total", total)
}
