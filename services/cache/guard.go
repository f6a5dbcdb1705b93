package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"sjsage522/pagewatch/logger"
)

const sentKeyPrefix = "pagewatch:sent:"

// Guard remembers recently delivered messages so a run that failed to
// persist state does not resend the ones that already went out
type Guard struct {
	cache CacheService
	ttl   time.Duration
	log   *logger.Logger
}

// NewGuard creates a guard storing markers in c for ttl
func NewGuard(c CacheService, ttl time.Duration) *Guard {
	return &Guard{cache: c, ttl: ttl, log: logger.ForComponent("cache")}
}

// Seen reports whether message was already delivered to chatID.
// Cache failures count as not seen.
func (g *Guard) Seen(chatID, message string) bool {
	_, err := g.cache.Get(sentKey(chatID, message))
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrMiss) {
		g.log.Warn().Err(err).Msg("Send guard lookup failed")
	}
	return false
}

// Mark records that message was delivered to chatID
func (g *Guard) Mark(chatID, message string) {
	if err := g.cache.Set(sentKey(chatID, message), []byte("1"), g.ttl); err != nil {
		g.log.Warn().Err(err).Msg("Send guard update failed")
	}
}

// sentKey stays within memcache's 250 byte key limit regardless of message size
func sentKey(chatID, message string) string {
	sum := sha256.Sum256([]byte(chatID + "\x00" + message))
	return sentKeyPrefix + hex.EncodeToString(sum[:])
}
