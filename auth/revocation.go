package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"

	"recipehub/db"
)

// KV is the part of the Redis cache the revocation list needs.
type KV interface {
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

const revokedKeyPrefix = "auth:revoked:"

// RevocationList is the logout blacklist. The document store is the source
// of truth so every server instance sees the same set; the optional cache
// answers the per-request lookup without a database round trip.
type RevocationList struct {
	repo   db.RevocationRepository
	cache  KV
	tokens *TokenManager
	now    func() time.Time
}

// NewRevocationList builds the list; cache may be nil.
func NewRevocationList(repo db.RevocationRepository, cache KV, tokens *TokenManager) *RevocationList {
	return &RevocationList{repo: repo, cache: cache, tokens: tokens, now: time.Now}
}

// HashToken is the key a raw token is stored under.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Revoke adds raw to the list whether or not it currently verifies. The
// entry lives until the token's own expiry, or one full TTL from now when
// the expiry cannot be read.
func (l *RevocationList) Revoke(ctx context.Context, raw string) error {
	now := l.now()
	exp, ok := l.tokens.ExpiresAt(raw)
	if !ok {
		exp = now.Add(l.tokens.TTL())
	}

	hash := HashToken(raw)
	if err := l.repo.RevokeToken(ctx, hash, exp); err != nil {
		return err
	}
	if ttl := exp.Sub(now); l.cache != nil && ttl > 0 {
		if _, err := l.cache.SetNX(ctx, revokedKeyPrefix+hash, ttl); err != nil {
			logrus.WithError(err).Warn("revocation cache write failed")
		}
	}
	return nil
}

// IsRevoked reports whether raw was logged out. Cache failures fall back to
// the document store.
func (l *RevocationList) IsRevoked(ctx context.Context, raw string) (bool, error) {
	hash := HashToken(raw)
	if l.cache != nil {
		hit, err := l.cache.Exists(ctx, revokedKeyPrefix+hash)
		if err == nil && hit {
			return true, nil
		}
		if err != nil {
			logrus.WithError(err).Warn("revocation cache read failed")
		}
	}
	return l.repo.IsTokenRevoked(ctx, hash)
}
