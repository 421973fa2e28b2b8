package fixture

import (
	"math/rand"
	"time"
)

// Row maps column name to value for a single insert.
type Row map[string]any

// Status values shared by every table with a status column.
const (
	StatusDeleted   = 0
	StatusActive    = 1
	StatusCollapsed = 2
)

// IDPool is an ordered, deduplicated snapshot of a parent table's keys.
type IDPool struct {
	Table string
	ids   []int64
}

func NewIDPool(table string, ids []int64) IDPool {
	return IDPool{Table: table, ids: append([]int64(nil), ids...)}
}

func (p IDPool) Len() int { return len(p.ids) }

func (p IDPool) Empty() bool { return len(p.ids) == 0 }

// IDs returns a copy of the keys.
func (p IDPool) IDs() []int64 { return append([]int64(nil), p.ids...) }

// Pick samples one key with replacement. The pool must not be empty.
func (p IDPool) Pick(r *rand.Rand) int64 {
	return p.ids[r.Intn(len(p.ids))]
}

// Sample draws n distinct keys. n is clamped to the pool size.
func (p IDPool) Sample(r *rand.Rand, n int) []int64 {
	if n > len(p.ids) {
		n = len(p.ids)
	}
	if n <= 0 {
		return nil
	}
	out := make([]int64, n)
	for i, j := range r.Perm(len(p.ids))[:n] {
		out[i] = p.ids[j]
	}
	return out
}

// Comment is a two-level threaded entity as inserted.
type Comment struct {
	ID            int64
	SubjectID     int64
	UserID        int64
	ParentID      int64
	RootID        int64
	ReplyToUserID *int64
	Status        int
	Likes         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TopLevel reports whether the comment starts a thread.
func (c *Comment) TopLevel() bool { return c.ParentID == 0 }

// Stats summarises one generator run.
type Stats struct {
	Rows    int
	Flushes int
	Skipped int
}
