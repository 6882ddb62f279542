// Package replica mirrors committed primary-store state into a secondary,
// read-optimized document store. Mirroring is best effort: a failed write is
// logged and never reported to the operation that triggered it.
package replica

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindUser   Kind = "users"
	KindTicket Kind = "lotto"
)

// Fields are merged into the existing document; absent keys are left untouched.
type Fields map[string]any

type Store interface {
	Upsert(ctx context.Context, kind Kind, id uint, fields Fields) error
	Close(ctx context.Context) error
}

// DocumentPath returns the replica path of an entity, e.g. "users/12".
func DocumentPath(kind Kind, id uint) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

// SyncWarning describes a mirror write that did not reach the replica.
type SyncWarning struct {
	Kind Kind
	ID   uint
	Err  error
}

func (w *SyncWarning) Error() string {
	return fmt.Sprintf("replica sync %s failed: %v", DocumentPath(w.Kind, w.ID), w.Err)
}

func (w *SyncWarning) Unwrap() error {
	return w.Err
}

// NopStore drops every write. It is used when no replica is configured.
type NopStore struct{}

func (NopStore) Upsert(context.Context, Kind, uint, Fields) error { return nil }

func (NopStore) Close(context.Context) error { return nil }

// normalize flattens values the document stores cannot encode natively.
func normalize(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.String()
	case *uint:
		if val == nil {
			return nil
		}
		return *val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}
