package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/Rana718/fixturegen/internal/config"
	"github.com/Rana718/fixturegen/internal/database"
	"github.com/Rana718/fixturegen/internal/database/sqlite"
	"github.com/Rana718/fixturegen/internal/faker"
	"github.com/Rana718/fixturegen/internal/schema"
	"github.com/Rana718/fixturegen/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestContext(a database.Adapter, seed int64) *GenContext {
	gc := NewGenContext(a, config.Default(), zap.NewNop())
	gc.Rand = rand.New(rand.NewSource(seed))
	gc.Faker = faker.New(seed)
	gc.Clock = func() time.Time { return testNow }
	return gc
}

// fixtureDB is a sqlite database with the bundled schema applied.
func fixtureDB(t *testing.T) *sqlite.Adapter {
	t.Helper()
	a := testutil.SQLite(t)
	_, err := schema.Apply(context.Background(), a)
	require.NoError(t, err)
	return a
}

func seedUsers(t *testing.T, db *sql.DB, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		res, err := db.Exec(
			`INSERT INTO user_auth (username, password_hash, email, created_at, updated_at) VALUES (?, 'x', ?, ?, ?)`,
			fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i), testNow, testNow)
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func seedArticles(t *testing.T, db *sql.DB, userID int64, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		res, err := db.Exec(
			`INSERT INTO articles (user_id, title, content, status, created_at, updated_at) VALUES (?, ?, 'body', 1, ?, ?)`,
			userID, fmt.Sprintf("article %d", i), testNow.Add(-48*time.Hour), testNow.Add(-48*time.Hour))
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// recorder is a ProgressReporter that remembers what it was told.
type recorder struct {
	mu      sync.Mutex
	flushed []int
	done    []Stats
}

func (r *recorder) Flushed(_ string, committed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushed = append(r.flushed, committed)
}

func (r *recorder) Done(_ string, stats Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, stats)
}
