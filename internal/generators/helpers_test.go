package generators

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/database/sqlite"
	"github.com/Rana718/fixturegen/internal/faker"
	"github.com/Rana718/fixturegen/internal/fixture"
	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/Rana718/fixturegen/internal/testutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func init() {
	color.NoColor = true
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.BatchSize = 25
	cfg.Counts = config.Counts{
		Users:                  20,
		ArticleCategories:      5,
		ArticleTags:            8,
		ResourceCategories:     4,
		Articles:               30,
		Resources:              15,
		Comments:               120,
		ChatMessages:           40,
		LoginHistoryMaxPerUser: 3,
		StatisticsDays:         40,
	}
	cfg.Comments.ReplyProbability = 0.4
	cfg.Comments.MaxLikes = 8
	cfg.Likes = config.Likes{MaxPerArticle: 10, MaxPerResource: 5}
	return cfg
}

func testDB(t *testing.T) *sqlite.Adapter {
	t.Helper()
	a := testutil.SQLite(t)
	_, err := schema.Apply(context.Background(), a)
	require.NoError(t, err)
	return a
}

func testContext(a *sqlite.Adapter, cfg *config.Config, seed int64) *fixture.GenContext {
	gc := fixture.NewGenContext(a, cfg, zap.NewNop())
	gc.Rand = rand.New(rand.NewSource(seed))
	gc.Faker = faker.New(seed)
	gc.Clock = func() time.Time { return testNow }
	return gc
}

// stubGenerator records that it ran and returns err.
type stubGenerator struct {
	name string
	deps []string
	err  error
	ran  *[]string
}

func (s *stubGenerator) Name() string                { return s.name }
func (s *stubGenerator) DependsOn() []string         { return s.deps }
func (s *stubGenerator) Tables() []string            { return nil }
func (s *stubGenerator) Estimate(*config.Config) int { return 0 }
func (s *stubGenerator) Rollups() []fixture.Rollup   { return nil }

func (s *stubGenerator) Run(context.Context, *fixture.GenContext) (fixture.Stats, error) {
	if s.ran != nil {
		*s.ran = append(*s.ran, s.name)
	}
	return fixture.Stats{Rows: 1}, s.err
}
