package common

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
)

// ErrorKind is the coarse class of a store-level failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindConstraint
	KindConnection
)

func (k ErrorKind) String() string {
	switch k {
	case KindConstraint:
		return "constraint"
	case KindConnection:
		return "connection"
	default:
		return "other"
	}
}

// ClassifyGeneric recognises the driver-independent connection failures.
// Provider adapters call it after checking their own error types.
func ClassifyGeneric(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return KindConnection
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnection
	}
	return KindOther
}
