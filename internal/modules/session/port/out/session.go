package out

import "context"

// StateStore is a key-value slot holding an encoded session snapshot.
// Get returns apperrors.ErrNotFound when the key has no value.
type StateStore interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
