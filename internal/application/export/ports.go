// Package export contains the application services driving feed exports: the
// advertising feed export and the commerce-platform bulk import workflow.
package export

import (
	"context"
	"time"
)

// ObjectStorage publishes generated feed files
type ObjectStorage interface {
	// Upload stores the object under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	// PublicURL returns the externally reachable location of an object
	PublicURL(key string) string
}

// RunLock rejects two concurrent runs targeting the same destination. The
// lock is held for the duration of one run; acquisition failure means another
// run is in flight.
type RunLock interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}
