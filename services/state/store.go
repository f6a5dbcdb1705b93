package state

import (
	"context"

	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/internal/page"
)

// Store persists the representation of the previous run.
// A single writer per target is assumed; runs are serialized by the caller.
type Store interface {
	// Load returns the stored representation, or a zero value when nothing was stored
	Load(ctx context.Context) (page.Representation, error)

	// Save replaces the stored representation
	Save(ctx context.Context, rep page.Representation) error

	// Close releases backend resources
	Close() error
}

// NewStore returns the backend selected by STATE_BACKEND
func NewStore(cfg *config.Config, kind page.Kind) Store {
	if cfg.StateBackend == config.BackendRedis {
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStateKey, kind)
	}
	return NewFileStore(cfg.StateFile, kind)
}
