package fixture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rana718/fixturegen/internal/database/common"
)

var (
	ErrEmptyParentPool = errors.New("empty parent pool")
	ErrInvalidWeights  = errors.New("invalid weights")
	ErrAborted         = errors.New("batch committer aborted")
)

// EmptyParentPoolError is returned when a required parent table has no rows.
type EmptyParentPoolError struct {
	Table string
}

func (e *EmptyParentPoolError) Error() string {
	return fmt.Sprintf("parent table %s has no rows; run its generator first", e.Table)
}

func (e *EmptyParentPoolError) Unwrap() error { return ErrEmptyParentPool }

// InvalidWeightsError reports a misconfigured sampler.
type InvalidWeightsError struct {
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	return "invalid weights: " + e.Reason
}

func (e *InvalidWeightsError) Unwrap() error { return ErrInvalidWeights }

// PersistenceError wraps a store-level failure that forced a rollback.
type PersistenceError struct {
	Op    string
	Table string
	Kind  common.ErrorKind
	Err   error
}

func (e *PersistenceError) Error() string {
	parts := []string{"persistence: " + e.Op}
	if e.Table != "" {
		parts = append(parts, "table="+e.Table)
	}
	parts = append(parts, "kind="+e.Kind.String())
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err carries a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
