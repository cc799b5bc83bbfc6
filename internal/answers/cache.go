package answers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atlas/autoapply/internal/types"
)

// DefaultCacheTTL is how long generated answers are reused for the same job and applicant.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cache stores generated answers.
type Cache interface {
	// Get returns the cached answers for key; found is false on a miss.
	Get(ctx context.Context, key string) (answers types.FreeTextAnswers, found bool, err error)
	Set(ctx context.Context, key string, answers types.FreeTextAnswers) error
}

// CacheKey identifies a request by job URL, applicant email and question set.
func CacheKey(req GenerateRequest) string {
	questions := slices.Clone(req.Questions)
	if len(questions) == 0 {
		questions = types.AnswerKeys()
	}
	slices.Sort(questions)

	email := ""
	if req.Profile != nil {
		email = strings.ToLower(strings.TrimSpace(req.Profile.Email))
	}
	sum := sha256.Sum256([]byte(strings.TrimSpace(req.JobURL) + "\x00" + email + "\x00" + strings.Join(questions, ",")))
	return hex.EncodeToString(sum[:])
}

// RedisCache keeps answers in Redis as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache returns a cache on client. A zero ttl uses DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, prefix: "answers:", ttl: ttl}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (types.FreeTextAnswers, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached answers: %w", err)
	}

	var out types.FreeTextAnswers
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached answers: %w", err)
	}
	return out, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, answers types.FreeTextAnswers) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache answers: %w", err)
	}
	return nil
}

// CachedGenerator serves answers from a cache and generates on a miss.
// Cache failures are logged and never fail generation.
type CachedGenerator struct {
	next   Generator
	cache  Cache
	logger *zap.Logger
}

// NewCachedGenerator wraps next with cache.
func NewCachedGenerator(next Generator, cache Cache, logger *zap.Logger) *CachedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGenerator{next: next, cache: cache, logger: logger}
}

// Generate implements Generator.
func (g *CachedGenerator) Generate(ctx context.Context, req GenerateRequest) (types.FreeTextAnswers, error) {
	key := CacheKey(req)
	log := g.logger.With(zap.String("job_url", req.JobURL))

	cached, found, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("answer cache read failed", zap.Error(err))
	case found:
		log.Debug("answer cache hit")
		return cached, nil
	}

	answers, err := g.next.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so a later call can try again.
	if len(answers) > 0 {
		if err := g.cache.Set(ctx, key, answers); err != nil {
			log.Warn("answer cache write failed", zap.Error(err))
		}
	}
	return answers, nil
}
