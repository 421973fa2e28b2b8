package fixture

import (
	"context"
	"testing"

	"github.com/Rana718/fixturegen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var articleLikes = Relation{Table: "article_likes", SubjectColumn: "article_id", ActorColumn: "user_id"}

func TestRelationDedupGuardSaturates(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 3)
	articles := seedArticles(t, a.DB(), users[0], 1)

	gc := newTestContext(a, 11)
	c := NewBatchCommitter(a, "likes", 7, nil)
	guard, err := NewRelationDedupGuard(c, articleLikes)
	require.NoError(t, err)

	actors := NewIDPool("user_auth", users)
	inserted := 0
	for i := 0; i < 100; i++ {
		ok, err := guard.TryInsert(ctx, articles[0], actors.Pick(gc.Rand), testNow)
		require.NoError(t, err)
		if ok {
			inserted++
		}
		require.NoError(t, c.MaybeFlush(ctx))
	}
	require.NoError(t, c.Finalize(ctx))

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 3, guard.Staged())
	assert.Equal(t, 97, guard.Skipped())
	assert.Equal(t, int64(3), testutil.Count(t, a.DB(), `SELECT COUNT(*) FROM article_likes WHERE article_id = ?`, articles[0]))
}

func TestRelationDedupGuardSeesUncommittedPairs(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 1)
	articles := seedArticles(t, a.DB(), users[0], 1)

	c := NewBatchCommitter(a, "likes", 1000, nil)
	guard, err := NewRelationDedupGuard(c, articleLikes)
	require.NoError(t, err)

	ok, err := guard.TryInsert(ctx, articles[0], users[0], testNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.TryInsert(ctx, articles[0], users[0], testNow)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Finalize(ctx))
	assert.Equal(t, 1, c.Committed())
}

func TestRelationDedupGuardRejectsBadIdentifiers(t *testing.T) {
	_, err := NewRelationDedupGuard(nil, Relation{Table: "likes; DROP TABLE x", SubjectColumn: "a", ActorColumn: "b"})
	assert.Error(t, err)
}

func TestRelationDedupGuardNoDuplicatePairs(t *testing.T) {
	ctx := context.Background()
	a := fixtureDB(t)
	users := seedUsers(t, a.DB(), 20)
	articles := seedArticles(t, a.DB(), users[0], 10)

	gc := newTestContext(a, 5)
	c := NewBatchCommitter(a, "likes", 50, nil)
	guard, err := NewRelationDedupGuard(c, articleLikes)
	require.NoError(t, err)

	subjects := NewIDPool("articles", articles)
	actors := NewIDPool("user_auth", users)
	for i := 0; i < 500; i++ {
		_, err := guard.TryInsert(ctx, subjects.Pick(gc.Rand), actors.Pick(gc.Rand), testNow)
		require.NoError(t, err)
		require.NoError(t, c.MaybeFlush(ctx))
	}
	require.NoError(t, c.Finalize(ctx))

	dupes := testutil.Count(t, a.DB(), `SELECT COUNT(*) FROM (
		SELECT article_id, user_id FROM article_likes GROUP BY article_id, user_id HAVING COUNT(*) > 1)`)
	assert.Zero(t, dupes)
	assert.Equal(t, int64(guard.Staged()), testutil.Count(t, a.DB(), `SELECT COUNT(*) FROM article_likes`))
	assert.Equal(t, 500, guard.Staged()+guard.Skipped())
}
