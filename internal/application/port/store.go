package port

import "context"

// KeyValueStore is the minimal key-value surface the request store needs.
// Every method is a single atomic store operation.
type KeyValueStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	// Get returns found=false with a nil error when the key does not exist.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error

	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	// SMove reports false when member was not in src.
	SMove(ctx context.Context, src, dst, member string) (bool, error)

	Ping(ctx context.Context) error
}
