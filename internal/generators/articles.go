package generators

import (
	"context"
	"fmt"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
)

var (
	articleCategoryRelation = fixture.Relation{
		Table:         "article_category_relations",
		SubjectColumn: "article_id",
		ActorColumn:   "category_id",
	}
	articleTagRelation = fixture.Relation{
		Table:         "article_tag_relations",
		SubjectColumn: "article_id",
		ActorColumn:   "tag_id",
	}
)

// Articles writes articles with their code blocks and taxonomy links.
type Articles struct{}

func (*Articles) Name() string        { return "articles" }
func (*Articles) DependsOn() []string { return []string{"users", "categories"} }

func (*Articles) Tables() []string {
	return []string{"articles", "article_code_blocks", "article_category_relations", "article_tag_relations"}
}

// Estimate assumes 2 categories, 3 tags and 0.9 code blocks per article.
func (*Articles) Estimate(cfg *config.Config) int {
	return cfg.Counts.Articles * 69 / 10
}

func (*Articles) Rollups() []fixture.Rollup {
	return []fixture.Rollup{
		{ParentTable: "article_categories", Column: "article_count", ChildTable: "article_category_relations", ForeignKey: "category_id"},
		{ParentTable: "article_tags", Column: "article_count", ChildTable: "article_tag_relations", ForeignKey: "tag_id"},
	}
}

func (g *Articles) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	cfg := gc.Config
	status, err := fixture.NewWeightedSampler([]int{0, 1, 2}, cfg.Weights.ArticleStatus)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("article_status: %w", err)
	}

	cache := gc.NewIndexCache()
	users, err := cache.LoadRequired(ctx, "user_auth")
	if err != nil {
		return fixture.Stats{}, err
	}
	categories, err := cache.LoadRequired(ctx, "article_categories")
	if err != nil {
		return fixture.Stats{}, err
	}
	tags, err := cache.LoadRequired(ctx, "article_tags")
	if err != nil {
		return fixture.Stats{}, err
	}

	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		categoryLinks, err := fixture.NewRelationDedupGuard(c, articleCategoryRelation)
		if err != nil {
			return 0, err
		}
		tagLinks, err := fixture.NewRelationDedupGuard(c, articleTagRelation)
		if err != nil {
			return 0, err
		}

		f := gc.Faker
		for i := 0; i < cfg.Counts.Articles; i++ {
			createdAt := gc.Since(2 * 365 * day)
			articleID, err := c.Stage(ctx, "articles", fixture.Row{
				"user_id":       users.Pick(gc.Rand),
				"title":         f.Title(),
				"description":   f.Text(200),
				"content":       f.Text(2000),
				"status":        status.Sample(gc.Rand),
				"view_count":    gc.Between(0, 5000),
				"like_count":    0,
				"comment_count": 0,
				"created_at":    createdAt,
				"updated_at":    gc.After(createdAt),
			})
			if err != nil {
				return 0, err
			}

			if gc.Chance(0.3) {
				for j, n := 0, gc.Between(1, 5); j < n; j++ {
					language := f.Language()
					if _, err := c.Stage(ctx, "article_code_blocks", fixture.Row{
						"article_id":   articleID,
						"language":     language,
						"code_content": f.Code(language),
						"description":  optional(gc, 0.5, func() string { return f.Sentence(6) }),
						"order_index":  j,
						"created_at":   createdAt,
					}); err != nil {
						return 0, err
					}
				}
			}

			for _, id := range categories.Sample(gc.Rand, gc.Between(1, 3)) {
				if _, err := categoryLinks.TryInsert(ctx, articleID, id, createdAt); err != nil {
					return 0, err
				}
			}
			for _, id := range tags.Sample(gc.Rand, gc.Between(1, 5)) {
				if _, err := tagLinks.TryInsert(ctx, articleID, id, createdAt); err != nil {
					return 0, err
				}
			}

			if err := c.MaybeFlush(ctx); err != nil {
				return 0, err
			}
		}
		return categoryLinks.Skipped() + tagLinks.Skipped(), nil
	})
}
