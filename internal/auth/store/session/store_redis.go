package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

func sessionKey(sessionID id.SessionID) string { return sessionKeyPrefix + sessionID.String() }
func userSessionsKey(userID id.UserID) string  { return userSessionKeyPrefix + userID.String() }

// RedisStore keeps each session as JSON under session:<id> with a TTL matching
// its expiry, plus a user_sessions:<user id> set for per-user fan-out.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	ok, err := s.client.SetNX(ctx, sessionKey(session.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}

	userKey := userSessionsKey(session.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, userKey, session.ID.String())
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decode(raw)
}

// ListByUser returns the user's live sessions, newest first. Index entries
// whose session key has expired are pruned.
func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	userKey := userSessionsKey(userID)
	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, sid := range ids {
		keys[i] = sessionKeyPrefix + sid
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load user sessions: %w", err)
	}

	var out []*models.Session
	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		sess, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if len(stale) > 0 {
		_ = s.client.SRem(ctx, userKey, stale...).Err()
	}
	sortNewestFirst(out)
	return out, nil
}

// RevokeSessionIfActive flips the session to revoked under WATCH. Concurrent
// writers lose with redis.TxFailedErr; a second revoke gets ErrSessionRevoked.
func (s *RedisStore) RevokeSessionIfActive(ctx context.Context, sessionID id.SessionID, now time.Time) error {
	key := sessionKey(sessionID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		sess, err := decode(raw)
		if err != nil {
			return err
		}
		if !sess.ApplyRevocation(now) {
			return ErrSessionRevoked
		}
		payload, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) DeleteSessionsByUser(ctx context.Context, userID id.UserID) (int, error) {
	userKey := userSessionsKey(userID)
	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, sid := range ids {
		keys = append(keys, sessionKeyPrefix+sid)
	}
	var deleted *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			deleted = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	if deleted == nil {
		return 0, nil
	}
	return int(deleted.Val()), nil
}

func decode(raw []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func sortNewestFirst(sessions []*models.Session) {
	slices.SortFunc(sessions, func(a, b *models.Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
