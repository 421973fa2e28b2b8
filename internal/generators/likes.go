package generators

import (
	"context"
	"time"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/fixture"
)

// Likes writes at most one like per (subject, user) on articles and resources.
type Likes struct{}

func (*Likes) Name() string        { return "likes" }
func (*Likes) DependsOn() []string { return []string{"articles", "resources", "users"} }
func (*Likes) Tables() []string    { return []string{"article_likes", "resource_likes"} }

func (*Likes) Estimate(cfg *config.Config) int {
	return cfg.Counts.Articles*cfg.Likes.MaxPerArticle/2 + cfg.Counts.Resources*cfg.Likes.MaxPerResource/2
}

func (*Likes) Rollups() []fixture.Rollup {
	return []fixture.Rollup{
		{ParentTable: "articles", Column: "like_count", ChildTable: "article_likes", ForeignKey: "article_id"},
		{ParentTable: "resources", Column: "like_count", ChildTable: "resource_likes", ForeignKey: "resource_id"},
	}
}

func (g *Likes) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	cache := gc.NewIndexCache()
	users, err := cache.LoadRequired(ctx, "user_auth")
	if err != nil {
		return fixture.Stats{}, err
	}
	articles, err := cache.Load(ctx, "articles")
	if err != nil {
		return fixture.Stats{}, err
	}
	resources, err := cache.Load(ctx, "resources")
	if err != nil {
		return fixture.Stats{}, err
	}
	articlesCreated, err := cache.LoadCreated(ctx, "articles")
	if err != nil {
		return fixture.Stats{}, err
	}
	resourcesCreated, err := cache.LoadCreated(ctx, "resources")
	if err != nil {
		return fixture.Stats{}, err
	}

	families := []struct {
		subjects fixture.IDPool
		created  map[int64]time.Time
		rel      fixture.Relation
		max      int
	}{
		{articles, articlesCreated, fixture.Relation{Table: "article_likes", SubjectColumn: "article_id", ActorColumn: "user_id"}, gc.Config.Likes.MaxPerArticle},
		{resources, resourcesCreated, fixture.Relation{Table: "resource_likes", SubjectColumn: "resource_id", ActorColumn: "user_id"}, gc.Config.Likes.MaxPerResource},
	}

	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		skipped := 0
		for _, fam := range families {
			guard, err := fixture.NewRelationDedupGuard(c, fam.rel)
			if err != nil {
				return skipped, err
			}
			// More attempts than users would only produce duplicates.
			limit := min(fam.max, users.Len())
			for _, subject := range fam.subjects.IDs() {
				for i, n := 0, gc.Between(0, limit); i < n; i++ {
					if _, err := guard.TryInsert(ctx, subject, users.Pick(gc.Rand), likedAt(gc, fam.created, subject)); err != nil {
						return skipped + guard.Skipped(), err
					}
				}
				if err := c.MaybeFlush(ctx); err != nil {
					return skipped + guard.Skipped(), err
				}
			}
			skipped += guard.Skipped()
		}
		return skipped, nil
	})
}

// likedAt dates a like after its subject was created.
func likedAt(gc *fixture.GenContext, created map[int64]time.Time, subject int64) time.Time {
	if at, ok := created[subject]; ok {
		return gc.After(at)
	}
	return gc.Since(365 * day)
}
