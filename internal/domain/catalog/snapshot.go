package catalog

import (
	"context"
	"time"
)

// Snapshot is an immutable, in-memory materialization of the source product
// catalog for one export run. Transformers read it and never mutate it.
type Snapshot struct {
	Products []Product
	TakenAt  time.Time
}

// IsEmpty returns true when the snapshot contains no products
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Products) == 0
}

// RecordCount returns the number of feed records the snapshot yields: one per
// simple product plus one per variant of each variable product.
func (s *Snapshot) RecordCount() int {
	if s == nil {
		return 0
	}
	count := 0
	for i := range s.Products {
		p := &s.Products[i]
		if p.IsVariable() {
			count += len(p.Variants)
		} else {
			count++
		}
	}
	return count
}

// Scope restricts a snapshot fetch to a category subtree of the source system
type Scope struct {
	// CategoryID is the root category; zero means the whole catalog
	CategoryID int64
	// IncludeChildren extends the scope to all descendant categories
	IncludeChildren bool
}

// Source supplies catalog snapshots from the source commerce system. The
// returned snapshot is authoritative and already access-controlled; callers
// never query the source system directly.
type Source interface {
	FetchSnapshot(ctx context.Context, scope Scope) (*Snapshot, error)
}
