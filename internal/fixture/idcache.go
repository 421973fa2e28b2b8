package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/Rana718/fixturegen/internal/database/common"
)

// IndexCache loads parent-table key pools once and serves them read-only.
// Pools are snapshots: rows inserted into a parent after it was loaded are
// not visible, so dependents load only after the parent run has committed.
type IndexCache struct {
	q       common.Querier
	qb      squirrel.StatementBuilderType
	pools   map[string]IDPool
	created map[string]map[int64]time.Time
}

func NewIndexCache(q common.Querier, qb squirrel.StatementBuilderType) *IndexCache {
	return &IndexCache{
		q:       q,
		qb:      qb,
		pools:   make(map[string]IDPool),
		created: make(map[string]map[int64]time.Time),
	}
}

// Load returns the key pool of table, querying it on first use.
func (c *IndexCache) Load(ctx context.Context, table string) (IDPool, error) {
	if pool, ok := c.pools[table]; ok {
		return pool, nil
	}
	if !isValidIdentifier(table) {
		return IDPool{}, fmt.Errorf("invalid table name: %s", table)
	}

	query, args, err := c.qb.Select("DISTINCT id").From(table).OrderBy("id").ToSql()
	if err != nil {
		return IDPool{}, err
	}
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return IDPool{}, fmt.Errorf("failed to load ids from %s: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return IDPool{}, fmt.Errorf("failed to scan id from %s: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return IDPool{}, fmt.Errorf("error iterating ids of %s: %w", table, err)
	}

	pool := IDPool{Table: table, ids: ids}
	c.pools[table] = pool
	return pool, nil
}

// LoadRequired is Load for mandatory foreign keys.
func (c *IndexCache) LoadRequired(ctx context.Context, table string) (IDPool, error) {
	pool, err := c.Load(ctx, table)
	if err != nil {
		return IDPool{}, err
	}
	if pool.Empty() {
		return IDPool{}, &EmptyParentPoolError{Table: table}
	}
	return pool, nil
}

// LoadCreated returns the created_at of every row of table keyed by id,
// querying it on first use. Children dated after their parent use it.
func (c *IndexCache) LoadCreated(ctx context.Context, table string) (map[int64]time.Time, error) {
	if created, ok := c.created[table]; ok {
		return created, nil
	}
	if !isValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	query, args, err := c.qb.Select("id", "created_at").From(table).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load created_at from %s: %w", table, err)
	}
	defer rows.Close()

	created := make(map[int64]time.Time)
	for rows.Next() {
		var (
			id int64
			at time.Time
		)
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan created_at from %s: %w", table, err)
		}
		created[id] = at.UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating created_at of %s: %w", table, err)
	}

	c.created[table] = created
	return created, nil
}
