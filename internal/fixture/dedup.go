package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// Relation describes a many-to-many table keyed by (subject, actor), such as
// article_likes(article_id, user_id).
type Relation struct {
	Table         string
	SubjectColumn string
	ActorColumn   string
}

func (r Relation) validate() error {
	for _, name := range []string{r.Table, r.SubjectColumn, r.ActorColumn} {
		if !isValidIdentifier(name) {
			return fmt.Errorf("invalid identifier in relation %s: %q", r.Table, name)
		}
	}
	return nil
}

// RelationDedupGuard inserts a relation row only when the (subject, actor)
// pair is not already present. The check reads through the committer's open
// transaction, so pairs staged earlier in the same batch are seen too.
type RelationDedupGuard struct {
	c       *BatchCommitter
	rel     Relation
	skipped int
	staged  int
}

func NewRelationDedupGuard(c *BatchCommitter, rel Relation) (*RelationDedupGuard, error) {
	if err := rel.validate(); err != nil {
		return nil, err
	}
	return &RelationDedupGuard{c: c, rel: rel}, nil
}

// TryInsert stages the pair and reports true, or reports false when it exists.
func (g *RelationDedupGuard) TryInsert(ctx context.Context, subjectID, actorID int64, createdAt time.Time) (bool, error) {
	exists, err := g.Exists(ctx, subjectID, actorID)
	if err != nil {
		return false, err
	}
	if exists {
		g.skipped++
		return false, nil
	}

	_, err = g.c.Stage(ctx, g.rel.Table, Row{
		g.rel.SubjectColumn: subjectID,
		g.rel.ActorColumn:   actorID,
		"created_at":        createdAt,
	})
	if err != nil {
		return false, err
	}
	g.staged++
	return true, nil
}

func (g *RelationDedupGuard) Exists(ctx context.Context, subjectID, actorID int64) (bool, error) {
	q := g.c.Builder().
		Select("1").
		From(g.rel.Table).
		Where(squirrel.Eq{g.rel.SubjectColumn: subjectID, g.rel.ActorColumn: actorID}).
		Limit(1)
	var one int
	return g.c.Lookup(ctx, g.rel.Table, q, &one)
}

// Skipped counts duplicate pairs that were not inserted.
func (g *RelationDedupGuard) Skipped() int { return g.skipped }

// Staged counts pairs inserted by this guard.
func (g *RelationDedupGuard) Staged() int { return g.staged }
