package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/diagnosis"
)

const keyPrefix = "diagnosis:"

// DiagnosisCache stores scored results in Redis as JSON, keyed by the
// sorted symptom set. It implements diagnosis.Cache.
type DiagnosisCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *logrus.Logger
}

// NewDiagnosisCache parses url and checks the connection.
func NewDiagnosisCache(ctx context.Context, url string, ttl time.Duration, logger *logrus.Logger) (*DiagnosisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newDiagnosisCache(client, ttl, logger), nil
}

func newDiagnosisCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *DiagnosisCache {
	return &DiagnosisCache{redis: client, ttl: ttl, log: logger}
}

func (c *DiagnosisCache) Close() error {
	return c.redis.Close()
}

func (c *DiagnosisCache) Get(ctx context.Context, symptoms []string) ([]diagnosis.Result, bool) {
	key := Key(symptoms)
	val, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Diagnosis cache read failed")
		return nil, false
	}

	var results []diagnosis.Result
	if err := json.Unmarshal(val, &results); err != nil {
		c.redis.Del(ctx, key)
		return nil, false
	}
	return results, true
}

func (c *DiagnosisCache) Set(ctx context.Context, symptoms []string, results []diagnosis.Result) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	key := Key(symptoms)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Diagnosis cache write failed")
	}
}

// Key is independent of symptom order.
func Key(symptoms []string) string {
	sorted := append([]string(nil), symptoms...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return keyPrefix + hex.EncodeToString(sum[:])
}
