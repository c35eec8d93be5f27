package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"presale/internal/ratelimit/models"
)

// slidingWindowScript trims expired members, then adds one member scored by
// the current time if the window has room. It returns {allowed, count, oldestMs}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
  redis.call("ZADD", key, now, member)
  count = count + 1
  allowed = 1
end
redis.call("PEXPIRE", key, window)

local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local oldestMs = now
if oldest[2] then
  oldestMs = tonumber(oldest[2])
end
return {allowed, count, oldestMs}
`)

// RedisBucketStore implements Store on Redis sorted sets so limits hold
// across server instances.
type RedisBucketStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisBucketStore(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	res, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		nowMs, window.Milliseconds(), limit, fmt.Sprintf("%d-%s", nowMs, uuid.NewString()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("sliding window for %s: %w", key, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("sliding window for %s: unexpected reply length %d", key, len(res))
	}

	count := int(res[1])
	resetAt := time.UnixMilli(res[2]).Add(window)
	if res[0] == 1 {
		return &models.Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: max(limit-count, 0),
			ResetAt:   resetAt,
		}, nil
	}
	return &models.Result{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(now, resetAt),
	}, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}
