package storage

import "context"

// StateStore persists the finance document as a single raw JSON snapshot.
// Load returns ok=false when no snapshot has been saved yet.
type StateStore interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}
