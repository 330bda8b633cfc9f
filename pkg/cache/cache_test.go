package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, time.Minute, nil), mr
}

func TestKey(t *testing.T) {
	in := models.SuggestInput{VisitType: models.Surgery, Pet: models.Pet{Species: "cat", HealthComplexity: 0.4}}

	k1, err := Key("clinic", in)
	require.NoError(t, err)
	k2, err := Key("clinic", in)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, KeySuggest))

	other, err := Key("elsewhere", in)
	require.NoError(t, err)
	assert.NotEqual(t, k1, other)

	in.Pet.HealthComplexity = 0.9
	changed, err := Key("clinic", in)
	require.NoError(t, err)
	assert.NotEqual(t, k1, changed)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, KeySuggest+"missing")
	require.NoError(t, err)
	assert.False(t, ok)

	start := time.Date(2024, time.October, 21, 9, 0, 0, 0, time.UTC)
	resp := &models.SuggestResponse{
		VisitType:       models.Dental,
		DurationMinutes: 60,
		CandidateCount:  12,
		Suggestions:     []models.Suggestion{{Rank: 1, Start: start, End: start.Add(time.Hour), Score: 81.5}},
	}
	require.NoError(t, c.Set(ctx, KeySuggest+"abc", resp))

	got, ok, err := c.Get(ctx, KeySuggest+"abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, got.CandidateCount)
	assert.Equal(t, 81.5, got.Suggestions[0].Score)
	assert.True(t, got.Suggestions[0].Start.Equal(start))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, KeySuggest+"abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(KeySuggest+"bad", "{not json"))

	_, ok, err := c.Get(context.Background(), KeySuggest+"bad")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(KeySuggest+"bad"))
}

func TestRedisCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), KeySuggest+"x")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), KeySuggest+"x", &models.SuggestResponse{}))
}

func TestNew_PingFailure(t *testing.T) {
	_, err := New(Config{RedisAddr: "127.0.0.1:1"}, nil)
	assert.Error(t, err)
}
