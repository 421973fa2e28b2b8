package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

const (
	DefaultReplyProbability = 0.10
	DefaultLikeProbability  = 0.30
	DefaultMaxLikes         = 50
)

// DefaultCommentStatus is the {deleted, active, collapsed} = {3, 95, 2} table.
func DefaultCommentStatus() *WeightedSampler[int] {
	return MustWeightedSampler(
		[]int{StatusDeleted, StatusActive, StatusCollapsed},
		[]float64{3, 95, 2},
	)
}

// ThreadSpec configures one comment table and its like relation.
type ThreadSpec struct {
	Table         string
	SubjectColumn string
	Likes         Relation
	Actors        IDPool

	// SubjectCreated dates top-level comments after their subject. Subjects
	// missing from it fall back to the last year.
	SubjectCreated map[int64]time.Time

	ReplyProbability float64
	LikeProbability  float64
	MaxLikes         int
	Status           *WeightedSampler[int]
	MaxContent       int
}

// ThreadedEntityBuilder builds depth-one comment threads. A reply points at a
// top-level, active comment of the same subject through both parent_id and
// root_id; top-level comments use 0 for both.
type ThreadedEntityBuilder struct {
	gc    *GenContext
	c     *BatchCommitter
	spec  ThreadSpec
	likes *RelationDedupGuard

	replies   int
	topLevel  int
	fallbacks int
}

func NewThreadedEntityBuilder(gc *GenContext, c *BatchCommitter, spec ThreadSpec) (*ThreadedEntityBuilder, error) {
	if !isValidIdentifier(spec.Table) || !isValidIdentifier(spec.SubjectColumn) {
		return nil, fmt.Errorf("invalid thread table %q/%q", spec.Table, spec.SubjectColumn)
	}
	if spec.Actors.Empty() {
		return nil, &EmptyParentPoolError{Table: spec.Actors.Table}
	}
	if spec.Status == nil {
		spec.Status = DefaultCommentStatus()
	}
	if spec.MaxLikes <= 0 {
		spec.MaxLikes = DefaultMaxLikes
	}
	if spec.MaxContent <= 0 {
		spec.MaxContent = 300
	}
	likes, err := NewRelationDedupGuard(c, spec.Likes)
	if err != nil {
		return nil, err
	}
	return &ThreadedEntityBuilder{gc: gc, c: c, spec: spec, likes: likes}, nil
}

type threadParent struct {
	id        int64
	userID    int64
	createdAt time.Time
}

// Build inserts one comment on subjectID by authorID, plus its likes.
func (b *ThreadedEntityBuilder) Build(ctx context.Context, subjectID, authorID int64) (*Comment, error) {
	var parent *threadParent
	if b.gc.Chance(b.spec.ReplyProbability) {
		p, err := b.pickParent(ctx, subjectID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			b.fallbacks++
		}
		parent = p
	}

	cm := &Comment{
		SubjectID: subjectID,
		UserID:    authorID,
		Status:    b.spec.Status.Sample(b.gc.Rand),
	}
	if parent != nil {
		cm.ParentID = parent.id
		cm.RootID = parent.id
		replyTo := parent.userID
		cm.ReplyToUserID = &replyTo
		cm.CreatedAt = b.gc.After(parent.createdAt)
	} else if created, ok := b.spec.SubjectCreated[subjectID]; ok {
		cm.CreatedAt = b.gc.After(created)
	} else {
		cm.CreatedAt = b.gc.Since(365 * 24 * time.Hour)
	}
	cm.UpdatedAt = cm.CreatedAt

	row := Row{
		b.spec.SubjectColumn: subjectID,
		"user_id":            authorID,
		"parent_id":          cm.ParentID,
		"root_id":            cm.RootID,
		"content":            b.gc.Faker.Text(b.spec.MaxContent),
		"like_count":         0,
		"reply_count":        0,
		"status":             cm.Status,
		"created_at":         cm.CreatedAt,
		"updated_at":         cm.UpdatedAt,
	}
	if cm.ReplyToUserID != nil {
		row["reply_to_user_id"] = *cm.ReplyToUserID
	} else {
		row["reply_to_user_id"] = nil
	}

	id, err := b.c.Stage(ctx, b.spec.Table, row)
	if err != nil {
		return nil, err
	}
	cm.ID = id

	if parent != nil {
		b.replies++
		if cm.Status == StatusActive {
			bump := b.c.Builder().
				Update(b.spec.Table).
				Set("reply_count", squirrel.Expr("reply_count + 1")).
				Where(squirrel.Eq{"id": parent.id})
			if err := b.c.Exec(ctx, b.spec.Table, bump); err != nil {
				return nil, err
			}
		}
	} else {
		b.topLevel++
	}

	if b.gc.Chance(b.spec.LikeProbability) {
		n, err := b.like(ctx, cm)
		if err != nil {
			return nil, err
		}
		cm.Likes = n
	}
	return cm, nil
}

func (b *ThreadedEntityBuilder) pickParent(ctx context.Context, subjectID int64) (*threadParent, error) {
	candidates := squirrel.Eq{
		b.spec.SubjectColumn: subjectID,
		"parent_id":          0,
		"status":             StatusActive,
	}

	var n int64
	count := b.c.Builder().Select("COUNT(*)").From(b.spec.Table).Where(candidates)
	if _, err := b.c.Lookup(ctx, b.spec.Table, count, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	pick := b.c.Builder().
		Select("id", "user_id", "created_at").
		From(b.spec.Table).
		Where(candidates).
		OrderBy("id").
		Limit(1).
		Offset(uint64(b.gc.Rand.Int63n(n)))
	var p threadParent
	found, err := b.c.Lookup(ctx, b.spec.Table, pick, &p.id, &p.userID, &p.createdAt)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (b *ThreadedEntityBuilder) like(ctx context.Context, cm *Comment) (int, error) {
	attempts := b.gc.Between(1, b.spec.MaxLikes)
	inserted := 0
	for i := 0; i < attempts; i++ {
		actor := b.spec.Actors.Pick(b.gc.Rand)
		ok, err := b.likes.TryInsert(ctx, cm.ID, actor, b.gc.After(cm.CreatedAt))
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	if inserted == 0 {
		return 0, nil
	}
	set := b.c.Builder().
		Update(b.spec.Table).
		Set("like_count", inserted).
		Where(squirrel.Eq{"id": cm.ID})
	if err := b.c.Exec(ctx, b.spec.Table, set); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// ThreadStats summarises the shape of what was built.
type ThreadStats struct {
	TopLevel       int
	Replies        int
	Fallbacks      int
	LikesInserted  int
	LikesDuplicate int
}

func (b *ThreadedEntityBuilder) Stats() ThreadStats {
	return ThreadStats{
		TopLevel:       b.topLevel,
		Replies:        b.replies,
		Fallbacks:      b.fallbacks,
		LikesInserted:  b.likes.Staged(),
		LikesDuplicate: b.likes.Skipped(),
	}
}
