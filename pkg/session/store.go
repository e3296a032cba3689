// Package session persists login sessions and resolves a session id to its
// owning user. Rows live in Postgres; Redis, when configured, caches the
// id -> user lookup until the session expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrSessionNotFound = apperr.Kind(apperr.ErrUnauthorized, "session not found or expired")

// Lookup is the read side used by the auth middleware.
type Lookup interface {
	Resolve(ctx context.Context, sessionID string) (string, error)
}

type Store struct {
	db          *gorm.DB
	redisClient *redis.Client
	now         func() time.Time
}

func NewStore(db *gorm.DB, redisClient *redis.Client) *Store {
	return &Store{db: db, redisClient: redisClient, now: time.Now}
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *Store) Create(ctx context.Context, userID string, ttl time.Duration, userAgent, ip string) (*models.Session, error) {
	sess := &models.Session{
		UserID:    userID,
		ExpiresAt: s.now().UTC().Add(ttl),
		UserAgent: truncate(userAgent, 255),
		IP:        truncate(ip, 64),
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.cache(ctx, sess)
	return sess, nil
}

// Resolve returns the user id owning sessionID, or ErrSessionNotFound when the
// session does not exist or has expired.
func (s *Store) Resolve(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionNotFound
	}

	if s.redisClient != nil {
		userID, err := s.redisClient.Get(ctx, cacheKey(sessionID)).Result()
		if err == nil && userID != "" {
			return userID, nil
		}
	}

	var sess models.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionID, s.now().UTC()).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	s.cache(ctx, &sess)
	return sess.UserID, nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionID, s.now().UTC()).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, cacheKey(sessionID))
	}
	if err := s.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges rows whose expiry has passed and returns how many went.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *Store) cache(ctx context.Context, sess *models.Session) {
	if s.redisClient == nil {
		return
	}
	ttl := sess.ExpiresAt.Sub(s.now().UTC())
	if ttl <= 0 {
		return
	}
	s.redisClient.Set(ctx, cacheKey(sess.ID), sess.UserID, ttl)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
