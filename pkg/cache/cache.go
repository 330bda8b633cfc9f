// Package cache stores suggestion responses in Redis so identical requests
// skip candidate generation and scoring.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/pkg/models"
)

// KeySuggest prefixes cached suggestion responses; the suffix is a request hash
const KeySuggest = "vetsched:suggest:"

// DefaultTTL applies when the configured TTL is zero
const DefaultTTL = 5 * time.Minute

// SuggestionCache looks up and stores suggestion responses by key.
// Get reports a miss with ok=false and a nil error.
type SuggestionCache interface {
	Get(ctx context.Context, key string) (resp *models.SuggestResponse, ok bool, err error)
	Set(ctx context.Context, key string, resp *models.SuggestResponse) error
}

// Key hashes the canonical JSON of the request together with the clinic and
// the engine settings that shape the answer
func Key(clinicID string, request any) (string, error) {
	body, err := json.Marshal(struct {
		Clinic  string `json:"clinic"`
		Request any    `json:"request"`
	}{clinicID, request})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(body)
	return KeySuggest + hex.EncodeToString(sum[:]), nil
}

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// RedisCache is a SuggestionCache backed by Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis. A failed ping is returned so the caller can run
// without a cache.
func New(cfg Config, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	return NewWithClient(client, cfg.TTL, logger), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger.With(zap.String("component", "cache"))}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.SuggestResponse, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var resp models.SuggestResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		// a stale or corrupt entry is a miss
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &resp, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, resp *models.SuggestResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
