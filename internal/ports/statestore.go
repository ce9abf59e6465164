package ports

import "context"

// StateStore is the persistent key-value store the feedback learner saves its
// learned model to. Values are JSON documents. Get omits missing keys from
// the result instead of failing.
type StateStore interface {
	Get(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, keys []string) error
}
