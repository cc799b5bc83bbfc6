package answers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/atlas/autoapply/internal/types"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type countingGenerator struct {
	calls   int
	answers types.FreeTextAnswers
	err     error
}

func (c *countingGenerator) Generate(context.Context, GenerateRequest) (types.FreeTextAnswers, error) {
	c.calls++
	return c.answers, c.err
}

func TestCacheKey(t *testing.T) {
	base := testRequest()
	key := CacheKey(base)
	assert.Len(t, key, 64)

	sameEmail := testRequest()
	sameEmail.Profile.Email = "  ADA@example.com "
	assert.Equal(t, key, CacheKey(sameEmail), "email is case and space insensitive")

	allQuestions := testRequest()
	allQuestions.Questions = types.AnswerKeys()
	assert.Equal(t, key, CacheKey(allQuestions), "empty question list means all questions")

	otherJob := testRequest()
	otherJob.JobURL = "https://jobs.lever.co/acme/43"
	assert.NotEqual(t, key, CacheKey(otherJob))

	subset := testRequest()
	subset.Questions = []string{types.AnswerWhyRole}
	assert.NotEqual(t, key, CacheKey(subset))
}

func TestRedisCache(t *testing.T) {
	mr, client := newRedis(t)
	cache := NewRedisCache(client, time.Hour)
	ctx := context.Background()

	_, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	want := types.FreeTextAnswers{types.AnswerWhyRole: "I write Go."}
	require.NoError(t, cache.Set(ctx, "k", want))

	got, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	assert.Equal(t, time.Hour, mr.TTL("answers:k"))
	mr.FastForward(2 * time.Hour)
	_, found, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "entry expires after the TTL")
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set("answers:bad", "not json"))

	_, _, err := NewRedisCache(client, 0).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode cached answers")
}

func TestCachedGenerator(t *testing.T) {
	_, client := newRedis(t)
	next := &countingGenerator{answers: types.FreeTextAnswers{types.AnswerWhyCompany: "Rockets."}}
	g := NewCachedGenerator(next, NewRedisCache(client, time.Hour), zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := g.Generate(ctx, testRequest())
	require.NoError(t, err)
	second, err := g.Generate(ctx, testRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls, "second call is served from the cache")

	other := testRequest()
	other.JobURL = "https://boards.greenhouse.io/acme/jobs/7"
	_, err = g.Generate(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedGenerator_DoesNotCacheFailuresOrEmpty(t *testing.T) {
	_, client := newRedis(t)
	next := &countingGenerator{err: errors.New("model unavailable")}
	g := NewCachedGenerator(next, NewRedisCache(client, time.Hour), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := g.Generate(ctx, testRequest())
	require.Error(t, err)

	next.err = nil
	next.answers = types.FreeTextAnswers{}
	_, err = g.Generate(ctx, testRequest())
	require.NoError(t, err)
	_, err = g.Generate(ctx, testRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, next.calls)
}

func TestCachedGenerator_CacheOutage(t *testing.T) {
	mr, client := newRedis(t)
	next := &countingGenerator{answers: types.FreeTextAnswers{types.AnswerWhyRole: "Go."}}
	g := NewCachedGenerator(next, NewRedisCache(client, time.Hour), zaptest.NewLogger(t))
	mr.Close()

	got, err := g.Generate(context.Background(), testRequest())
	require.NoError(t, err, "cache failures never fail generation")
	assert.Equal(t, next.answers, got)
}
