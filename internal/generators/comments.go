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

// Comments writes threaded comments on articles and resources, with likes.
type Comments struct{}

func (*Comments) Name() string        { return "comments" }
func (*Comments) DependsOn() []string { return []string{"articles", "resources", "users"} }

func (*Comments) Tables() []string {
	return []string{"article_comments", "resource_comments", "article_comment_likes", "resource_comment_likes"}
}

// Estimate counts about eight likes per comment on average.
func (*Comments) Estimate(cfg *config.Config) int {
	return cfg.Counts.Comments * 9
}

// reply_count is maintained inside the generating transaction; MySQL refuses
// a subquery on the table being updated, so it has no rollup here.
func (*Comments) Rollups() []fixture.Rollup {
	active := func() squirrel.Sqlizer { return squirrel.Eq{"c.status": fixture.StatusActive} }
	return []fixture.Rollup{
		{ParentTable: "articles", Column: "comment_count", ChildTable: "article_comments", ForeignKey: "article_id", Filter: active()},
		{ParentTable: "resources", Column: "comment_count", ChildTable: "resource_comments", ForeignKey: "resource_id", Filter: active()},
		{ParentTable: "article_comments", Column: "like_count", ChildTable: "article_comment_likes", ForeignKey: "comment_id"},
		{ParentTable: "resource_comments", Column: "like_count", ChildTable: "resource_comment_likes", ForeignKey: "comment_id"},
	}
}

// splitComments divides total between articles and resources by share.
func splitComments(total int, share float64) (articles, resources int) {
	articles = int(float64(total) * share)
	return articles, total - articles
}

func (g *Comments) Run(ctx context.Context, gc *fixture.GenContext) (fixture.Stats, error) {
	cfg := gc.Config
	status, err := fixture.NewWeightedSampler(
		[]int{fixture.StatusDeleted, fixture.StatusActive, fixture.StatusCollapsed},
		cfg.Weights.CommentStatus,
	)
	if err != nil {
		return fixture.Stats{}, fmt.Errorf("comment_status: %w", err)
	}
	onArticles, onResources := splitComments(cfg.Counts.Comments, cfg.Comments.ArticleShare)

	cache := gc.NewIndexCache()
	users, err := cache.LoadRequired(ctx, "user_auth")
	if err != nil {
		return fixture.Stats{}, err
	}

	var articles, resources fixture.IDPool
	var articlesCreated, resourcesCreated map[int64]time.Time
	if onArticles > 0 {
		if articles, err = cache.LoadRequired(ctx, "articles"); err != nil {
			return fixture.Stats{}, err
		}
		if articlesCreated, err = cache.LoadCreated(ctx, "articles"); err != nil {
			return fixture.Stats{}, err
		}
	}
	if onResources > 0 {
		if resources, err = cache.LoadRequired(ctx, "resources"); err != nil {
			return fixture.Stats{}, err
		}
		if resourcesCreated, err = cache.LoadCreated(ctx, "resources"); err != nil {
			return fixture.Stats{}, err
		}
	}

	return commitRun(ctx, gc, g.Name(), func(c *fixture.BatchCommitter) (int, error) {
		threads := []struct {
			spec     fixture.ThreadSpec
			subjects fixture.IDPool
			n        int
		}{
			{g.spec(cfg, "article_comments", "article_id", "article_comment_likes", users, articlesCreated, status), articles, onArticles},
			{g.spec(cfg, "resource_comments", "resource_id", "resource_comment_likes", users, resourcesCreated, status), resources, onResources},
		}

		skipped := 0
		for _, t := range threads {
			if t.n == 0 {
				continue
			}
			b, err := fixture.NewThreadedEntityBuilder(gc, c, t.spec)
			if err != nil {
				return skipped, err
			}
			for i := 0; i < t.n; i++ {
				if _, err := b.Build(ctx, t.subjects.Pick(gc.Rand), users.Pick(gc.Rand)); err != nil {
					return skipped, err
				}
				if err := c.MaybeFlush(ctx); err != nil {
					return skipped, err
				}
			}
			st := b.Stats()
			skipped += st.LikesDuplicate
			gc.Log.Debug("comment threads built",
				zap.String("table", t.spec.Table),
				zap.Int("top_level", st.TopLevel),
				zap.Int("replies", st.Replies),
				zap.Int("fallbacks", st.Fallbacks),
				zap.Int("likes", st.LikesInserted),
				zap.Int("duplicate_likes", st.LikesDuplicate))
		}
		return skipped, nil
	})
}

func (*Comments) spec(cfg *config.Config, table, subject, likes string, users fixture.IDPool, created map[int64]time.Time, status *fixture.WeightedSampler[int]) fixture.ThreadSpec {
	return fixture.ThreadSpec{
		Table:         table,
		SubjectColumn: subject,
		Likes: fixture.Relation{
			Table:         likes,
			SubjectColumn: "comment_id",
			ActorColumn:   "user_id",
		},
		Actors:           users,
		SubjectCreated:   created,
		ReplyProbability: cfg.Comments.ReplyProbability,
		LikeProbability:  cfg.Comments.LikeProbability,
		MaxLikes:         cfg.Comments.MaxLikes,
		Status:           status,
	}
}
