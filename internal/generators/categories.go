package generators

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
)

var articleCategoryNames = []string{
	"Backend", "Frontend", "Databases", "DevOps", "Cloud", "Security",
	"Mobile", "Machine Learning", "Algorithms", "Architecture", "Testing",
	"Tooling", "Networking", "Operating Systems", "Career",
}

var articleTagNames = []string{
	"go", "python", "javascript", "typescript", "java", "rust", "sql",
	"docker", "kubernetes", "linux", "redis", "mysql", "postgres", "react",
	"vue", "grpc", "http", "concurrency", "performance", "debugging",
}

var resourceCategoryNames = []string{
	"E-books", "Slides", "Source Code", "Cheat Sheets", "Templates",
	"Datasets", "Videos", "Tools", "Papers", "Courses",
}

// Categories writes the lookup tables articles and resources point at.
type Categories struct{}

func (*Categories) Name() string        { return "categories" }
func (*Categories) DependsOn() []string { return nil }

func (*Categories) Tables() []string {
	return []string{"article_categories", "article_tags", "resource_categories"}
}

func (*Categories) Estimate(cfg *config.Config) int {
	return cfg.Counts.ArticleCategories + cfg.Counts.ArticleTags + cfg.Counts.ResourceCategories
}

func (*Categories) Rollups() []fixture.Rollup { return nil }

func (g *Categories) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	counts := gc.Config.Counts
	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		for i, name := range uniqueNames(gc, articleCategoryNames, counts.ArticleCategories) {
			row := fixture.Row{
				"name":        name,
				"slug":        slugify(name),
				"description": gc.Faker.Sentence(8),
				"parent_id":   0,
				"sort_order":  i,
				"created_at":  gc.Since(2 * 365 * day),
			}
			if _, err := c.Stage(ctx, "article_categories", row); err != nil {
				return 0, err
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}

		for _, name := range uniqueNames(gc, articleTagNames, counts.ArticleTags) {
			row := fixture.Row{
				"name":       name,
				"slug":       slugify(name),
				"created_at": gc.Since(2 * 365 * day),
			}
			if _, err := c.Stage(ctx, "article_tags", row); err != nil {
				return 0, err
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}

		for _, name := range uniqueNames(gc, resourceCategoryNames, counts.ResourceCategories) {
			row := fixture.Row{
				"name":        name,
				"slug":        slugify(name),
				"description": gc.Faker.Sentence(8),
				"created_at":  gc.Since(2 * 365 * day),
			}
			if _, err := c.Stage(ctx, "resource_categories", row); err != nil {
				return 0, err
			}
			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}
		return 0, nil
	})
}

// uniqueNames takes the first n seed names and tops up with numbered faker
// words once the seeds run out.
func uniqueNames(gc *fixture.GenContext, seeds []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for _, s := range seeds {
		if len(out) == n {
			return out
		}
		out = append(out, s)
		seen[s] = true
	}
	for len(out) < n {
		name := fmt.Sprintf("%s %d", gc.Faker.Word(), len(out)+1)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
