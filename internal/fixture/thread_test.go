package fixture

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Rana718/fixturegen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleThread(actors IDPool) ThreadSpec {
	return ThreadSpec{
		Table:         "article_comments",
		SubjectColumn: "article_id",
		Likes:         Relation{Table: "article_comment_likes", SubjectColumn: "comment_id", ActorColumn: "user_id"},
		Actors:        actors,
		MaxLikes:      5,
	}
}

func TestThreadBuilderAllTopLevelWithoutReplies(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 5)
	articles := seedArticles(t, a.DB(), users[0], 1)

	gc := newTestContext(a, 1)
	c := NewBatchCommitter(a, "comments", 10, nil)
	spec := articleThread(NewIDPool("user_auth", users))
	spec.ReplyProbability = 0
	b, err := NewThreadedEntityBuilder(gc, c, spec)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		cm, err := b.Build(ctx, articles[0], users[i%len(users)])
		require.NoError(t, err)
		assert.True(t, cm.TopLevel())
		assert.Nil(t, cm.ReplyToUserID)
		require.NoError(t, c.MaybeFlush(ctx))
	}
	require.NoError(t, c.Finalize(ctx))

	assert.Equal(t, int64(50), testutil.Count(t, a.DB(),
		`SELECT COUNT(*) FROM article_comments WHERE parent_id = 0 AND root_id = 0 AND reply_to_user_id IS NULL`))
	assert.Equal(t, 50, b.Stats().TopLevel)
	assert.Zero(t, b.Stats().Replies)
}

func TestThreadBuilderDatesTopLevelAfterSubject(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 3)
	articles := seedArticles(t, a.DB(), users[0], 1)

	published := testNow.Add(-72 * time.Hour)
	gc := newTestContext(a, 4)
	c := NewBatchCommitter(a, "comments", 10, nil)
	spec := articleThread(NewIDPool("user_auth", users))
	spec.ReplyProbability = 0
	spec.LikeProbability = 1
	spec.SubjectCreated = map[int64]time.Time{articles[0]: published}
	b, err := NewThreadedEntityBuilder(gc, c, spec)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		cm, err := b.Build(ctx, articles[0], users[i%len(users)])
		require.NoError(t, err)
		assert.False(t, cm.CreatedAt.Before(published), "comment %d dated %s", cm.ID, cm.CreatedAt)
		assert.False(t, cm.CreatedAt.After(testNow))
	}
	require.NoError(t, c.Finalize(ctx))

	assert.Zero(t, testutil.Count(t, a.DB(),
		`SELECT COUNT(*) FROM article_comments WHERE created_at < ?`, published))
}

func TestThreadBuilderFallsBackWhenNoParent(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 2)
	articles := seedArticles(t, a.DB(), users[0], 1)

	gc := newTestContext(a, 2)
	c := NewBatchCommitter(a, "comments", 10, nil)
	spec := articleThread(NewIDPool("user_auth", users))
	spec.ReplyProbability = 1
	b, err := NewThreadedEntityBuilder(gc, c, spec)
	require.NoError(t, err)

	cm, err := b.Build(ctx, articles[0], users[1])
	require.NoError(t, err)
	assert.True(t, cm.TopLevel())
	assert.Equal(t, 1, b.Stats().Fallbacks)
	require.NoError(t, c.Finalize(ctx))
}

func TestThreadBuilderRepliesOnlyToActiveTopLevel(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 8)
	articles := seedArticles(t, a.DB(), users[0], 4)

	gc := newTestContext(a, 3)
	c := NewBatchCommitter(a, "comments", 25, nil)
	spec := articleThread(NewIDPool("user_auth", users))
	spec.ReplyProbability = 0.6
	spec.LikeProbability = 0.5
	b, err := NewThreadedEntityBuilder(gc, c, spec)
	require.NoError(t, err)

	subjects := NewIDPool("articles", articles)
	for i := 0; i < 400; i++ {
		_, err := b.Build(ctx, subjects.Pick(gc.Rand), users[gc.Rand.Intn(len(users))])
		require.NoError(t, err)
		require.NoError(t, c.MaybeFlush(ctx))
	}
	require.NoError(t, c.Finalize(ctx))

	stats := b.Stats()
	require.Positive(t, stats.Replies)
	assert.Equal(t, 400, stats.TopLevel+stats.Replies)

	db := a.DB()
	// every reply points at an active top-level comment of the same article
	assert.Zero(t, testutil.Count(t, db, `
		SELECT COUNT(*) FROM article_comments r
		LEFT JOIN article_comments p ON p.id = r.parent_id
		WHERE r.parent_id <> 0 AND (
			p.id IS NULL OR p.parent_id <> 0 OR p.status <> 1
			OR p.article_id <> r.article_id
			OR r.root_id <> r.parent_id
			OR r.reply_to_user_id IS NULL OR r.reply_to_user_id <> p.user_id
			OR r.created_at < p.created_at)`))

	// top-level rows have no linkage
	assert.Zero(t, testutil.Count(t, db, `
		SELECT COUNT(*) FROM article_comments
		WHERE parent_id = 0 AND (root_id <> 0 OR reply_to_user_id IS NOT NULL)`))

	// replies never have replies of their own
	assert.Zero(t, testutil.Count(t, db, `
		SELECT COUNT(*) FROM article_comments WHERE parent_id <> 0 AND reply_count <> 0`))

	// reply_count equals the number of active replies
	assert.Zero(t, testutil.Count(t, db, `
		SELECT COUNT(*) FROM article_comments p
		WHERE p.parent_id = 0 AND p.reply_count <> (
			SELECT COUNT(*) FROM article_comments r WHERE r.parent_id = p.id AND r.status = 1)`))

	// like_count equals the number of like rows
	assert.Zero(t, testutil.Count(t, db, `
		SELECT COUNT(*) FROM article_comments c
		WHERE c.like_count <> (SELECT COUNT(*) FROM article_comment_likes l WHERE l.comment_id = c.id)`))

	// likes never predate their comment
	assert.Zero(t, testutil.Count(t, db, `
		SELECT COUNT(*) FROM article_comment_likes l
		JOIN article_comments c ON c.id = l.comment_id
		WHERE l.created_at < c.created_at`))

	assert.Equal(t, int64(stats.LikesInserted), testutil.Count(t, db, `SELECT COUNT(*) FROM article_comment_likes`))
}

func TestThreadBuilderNeedsActors(t *testing.T) {
	a := fixtureDB(t)
	gc := newTestContext(a, 1)
	_, err := NewThreadedEntityBuilder(gc, NewBatchCommitter(a, "comments", 10, nil), articleThread(NewIDPool("user_auth", nil)))
	assert.ErrorIs(t, err, ErrEmptyParentPool)
}

func TestThreadBuilderReplyRecordsParentAuthor(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 2)
	articles := seedArticles(t, a.DB(), users[0], 1)

	gc := newTestContext(a, 4)
	c := NewBatchCommitter(a, "comments", 100, nil)
	spec := articleThread(NewIDPool("user_auth", users))
	spec.Status = MustWeightedSampler([]int{StatusActive}, []float64{1})
	spec.LikeProbability = 0

	spec.ReplyProbability = 0
	b, err := NewThreadedEntityBuilder(gc, c, spec)
	require.NoError(t, err)
	root, err := b.Build(ctx, articles[0], users[0])
	require.NoError(t, err)

	spec.ReplyProbability = 1
	b, err = NewThreadedEntityBuilder(gc, c, spec)
	require.NoError(t, err)
	reply, err := b.Build(ctx, articles[0], users[1])
	require.NoError(t, err)
	require.NoError(t, c.Finalize(ctx))

	assert.Equal(t, root.ID, reply.ParentID)
	assert.Equal(t, root.ID, reply.RootID)
	require.NotNil(t, reply.ReplyToUserID)
	assert.Equal(t, users[0], *reply.ReplyToUserID)

	var replyCount int
	var replyTo sql.NullInt64
	require.NoError(t, a.DB().QueryRow(`SELECT reply_count FROM article_comments WHERE id = ?`, root.ID).Scan(&replyCount))
	require.NoError(t, a.DB().QueryRow(`SELECT reply_to_user_id FROM article_comments WHERE id = ?`, reply.ID).Scan(&replyTo))
	assert.Equal(t, 1, replyCount)
	assert.Equal(t, users[0], replyTo.Int64)
}
