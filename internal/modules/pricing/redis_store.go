// README: Quote slot backed by Redis (INCR sequence + compare-and-set apply).
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	seqKeyPattern     = "quote:%s:seq"
	currentKeyPattern = "quote:%s:current"
)

// applyScript stores ARGV[2] only if the issued sequence still equals ARGV[1].
var applyScript = redis.NewScript(`
local issued = redis.call('GET', KEYS[1])
if issued ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

const defaultQuoteTTL = 30 * time.Minute

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func (s *RedisStore) NextSeq(ctx context.Context, sessionID string) (uint64, error) {
	key := seqKey(sessionID)
	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

func (s *RedisStore) Apply(ctx context.Context, sessionID string, q Quote) (bool, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return false, fmt.Errorf("marshal quote: %w", err)
	}
	n, err := applyScript.Run(ctx, s.redis,
		[]string{seqKey(sessionID), currentKey(sessionID)},
		strconv.FormatUint(q.Seq, 10), body, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisStore) Current(ctx context.Context, sessionID string) (Quote, bool, error) {
	val, err := s.redis.Get(ctx, currentKey(sessionID)).Bytes()
	if err == redis.Nil {
		return Quote{}, false, nil
	}
	if err != nil {
		return Quote{}, false, err
	}
	var q Quote
	if err := json.Unmarshal(val, &q); err != nil {
		return Quote{}, false, fmt.Errorf("decode stored quote: %w", err)
	}
	return q, true, nil
}

func seqKey(sessionID string) string {
	return fmt.Sprintf(seqKeyPattern, sessionID)
}

func currentKey(sessionID string) string {
	return fmt.Sprintf(currentKeyPattern, sessionID)
}
