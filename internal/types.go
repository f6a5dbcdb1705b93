package internal

import (
	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/internal/page"
	"sjsage522/pagewatch/logger"
	"sjsage522/pagewatch/services/cache"
	"sjsage522/pagewatch/services/notifier"
	"sjsage522/pagewatch/services/publisher"
	"sjsage522/pagewatch/services/state"
)

// Dependencies holds all service dependencies of a worker.
// Guard and Publisher are nil when their backends are not configured.
type Dependencies struct {
	Store     state.Store
	Notifier  notifier.Notifier
	Guard     *cache.Guard
	Publisher publisher.Publisher
}

// NewDependencies builds the services selected by cfg for a representation kind
func NewDependencies(cfg *config.Config, kind page.Kind) *Dependencies {
	log := logger.ForComponent("services")

	deps := &Dependencies{
		Store:    state.NewStore(cfg, kind),
		Notifier: notifier.NewTelegramNotifier(cfg),
	}
	log.Debug().Str("backend", cfg.StateBackend).Msg("State store ready")

	if cfg.MemcacheAddr != "" {
		deps.Guard = cache.NewGuard(cache.NewMemcacheService(cfg.MemcacheAddr), cfg.DedupTTL)
		log.Info().Str("addr", cfg.MemcacheAddr).Dur("ttl", cfg.DedupTTL).Msg("Send guard enabled")
	}

	if cfg.RedisAddr != "" && cfg.RedisStream != "" {
		deps.Publisher = publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
		log.Info().
			Str("addr", cfg.RedisAddr).
			Int("db", cfg.RedisDB).
			Str("stream", cfg.RedisStream).
			Msg("Event stream enabled")
	}

	return deps
}

// Close releases every backend connection
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			logger.LogError("services", err, "Failed to close publisher")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			logger.LogError("services", err, "Failed to close state store")
		}
	}
}
