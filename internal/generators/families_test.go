package generators

import (
	"context"
	"regexp"
	"testing"

	"github.com/Rana718/fixturegen/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUsersGenerator(t *testing.T) {
	ctx := context.Background()
	a := testDB(t)
	gc := testContext(a, smallConfig(), 11)

	stats, err := (&Users{}).Run(ctx, gc)
	require.NoError(t, err)
	assert.Equal(t, 40, stats.Rows)
	assert.Equal(t, 2, stats.Flushes)

	db := a.DB()
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_auth u
		WHERE (SELECT COUNT(*) FROM user_profile p WHERE p.user_id = u.id) <> 1`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_auth WHERE role NOT IN ('user', 'admin')`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_auth WHERE account_status NOT IN (0, 1, 2)`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_auth WHERE failed_login_count NOT BETWEEN 0 AND 10`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_auth WHERE (last_login_time IS NULL) <> (last_login_ip IS NULL)`))

	for _, col := range []string{"bio", "avatar_url", "phone", "website", "github"} {
		assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_profile WHERE `+col+` = ''`), col)
	}
	assert.NotZero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_profile WHERE website IS NULL`))

	var hash string
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM user_auth ORDER BY id LIMIT 1`).Scan(&hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(DefaultPassword)))
}

func TestResourcesGenerator(t *testing.T) {
	ctx := context.Background()
	a := testDB(t)
	gc := testContext(a, smallConfig(), 12)

	_, err := (&Users{}).Run(ctx, gc)
	require.NoError(t, err)
	_, err = (&Categories{}).Run(ctx, gc)
	require.NoError(t, err)
	_, err = (&Resources{}).Run(ctx, gc)
	require.NoError(t, err)

	rows, err := a.DB().Query(`SELECT file_extension, file_type, file_hash, storage_path, total_chunks FROM resources`)
	require.NoError(t, err)
	defer rows.Close()

	hashRe := regexp.MustCompile(`^[0-9a-f]{64}$`)
	pathRe := regexp.MustCompile(`^/resources/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.[a-z0-9]+$`)
	n := 0
	for rows.Next() {
		var ext, mime, hash, path string
		var chunks int
		require.NoError(t, rows.Scan(&ext, &mime, &hash, &path, &chunks))
		assert.Equal(t, mimeType(ext), mime)
		assert.Regexp(t, hashRe, hash)
		assert.Regexp(t, pathRe, path)
		assert.True(t, chunks >= 1 && chunks <= 10, "total_chunks %d", chunks)
		n++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 15, n)

	db := a.DB()
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM resources WHERE document = ''`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM resources r
		WHERE EXISTS (SELECT 1 FROM resource_images i WHERE i.resource_id = r.id)
		AND (SELECT COUNT(*) FROM resource_images i WHERE i.resource_id = r.id AND i.is_cover) <> 1`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM resources r
		WHERE (SELECT COUNT(*) FROM resource_tags g WHERE g.resource_id = r.id) NOT BETWEEN 1 AND 4`))
}

func TestAbsentLocationsAndAvatarsAreNull(t *testing.T) {
	ctx := context.Background()
	a := testDB(t)
	gc := testContext(a, smallConfig(), 13)

	_, err := (&Users{}).Run(ctx, gc)
	require.NoError(t, err)
	_, err = (&LoginHistory{}).Run(ctx, gc)
	require.NoError(t, err)
	_, err = (&Chat{}).Run(ctx, gc)
	require.NoError(t, err)

	db := a.DB()
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_login_history WHERE province = '' OR city = ''`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_login_history WHERE (province IS NULL) <> (city IS NULL)`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM user_login_history WHERE login_status = 0 AND province IS NOT NULL`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM chat_messages WHERE avatar = ''`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(*) FROM chat_messages m
		JOIN user_profile p ON p.user_id = m.user_id WHERE (m.avatar IS NULL) <> (p.avatar_url IS NULL)`))
}

func TestCategoriesAreUnique(t *testing.T) {
	ctx := context.Background()
	a := testDB(t)
	cfg := smallConfig()
	cfg.Counts.ArticleTags = len(articleTagNames) + 15
	gc := testContext(a, cfg, 13)

	_, err := (&Categories{}).Run(ctx, gc)
	require.NoError(t, err)
	assert.EqualValues(t, cfg.Counts.ArticleTags, testutil.Count(t, a.DB(), `SELECT COUNT(DISTINCT name) FROM article_tags`))
}

func TestSplitComments(t *testing.T) {
	tests := []struct {
		total     int
		share     float64
		articles  int
		resources int
	}{
		{5000, 0.7, 3500, 1500},
		{10, 0.7, 7, 3},
		{3, 0.5, 1, 2},
		{10, 1, 10, 0},
		{10, 0, 0, 10},
		{0, 0.7, 0, 0},
	}
	for _, tt := range tests {
		a, r := splitComments(tt.total, tt.share)
		assert.Equal(t, tt.articles, a, "articles for %d x %v", tt.total, tt.share)
		assert.Equal(t, tt.resources, r, "resources for %d x %v", tt.total, tt.share)
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "machine-learning", slugify("Machine Learning"))
	assert.Equal(t, "go", slugify("go"))
	assert.Equal(t, "operating-systems", slugify("  Operating   Systems "))
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", mimeType("pdf"))
	assert.Equal(t, "audio/mpeg", mimeType("mp3"))
	assert.Equal(t, "application/octet-stream", mimeType("xyz"))
}

func TestStatisticsEstimate(t *testing.T) {
	cfg := smallConfig()
	cfg.Counts.StatisticsDays = 10
	assert.Equal(t, 10+10*44+10+len(cumulativeStats), (&Statistics{}).Estimate(cfg))
}
