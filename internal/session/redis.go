package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	timeFormat     = "2006-01-02 15:04:05"
	sessionKeyTpl  = "session:%s" // session:${token}
	tokenPrefix    = "sk-qcm-"
	tokenByteCount = 24
)

// RedisManager stores sessions server side so that logout revokes them
// immediately.
type RedisManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisManager(ctx context.Context, url string, ttl time.Duration) (*RedisManager, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisManager{redis: client, ttl: ttl}, nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, tokenByteCount)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (m *RedisManager) Issue(ctx context.Context, id Identity) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	pipe := m.redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"student_id":       id.StudentID,
		"email":            id.Email,
		"created_dttm_utc": time.Now().UTC().Format(timeFormat),
	})
	pipe.Expire(ctx, key, m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

func (m *RedisManager) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	values, err := m.redis.HGetAll(ctx, fmt.Sprintf(sessionKeyTpl, token)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrUnauthenticated
	}

	studentID, err := strconv.ParseInt(values["student_id"], 10, 64)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	return &Identity{StudentID: studentID, Email: values["email"]}, nil
}

func (m *RedisManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.redis.Del(ctx, fmt.Sprintf(sessionKeyTpl, token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (m *RedisManager) Close() error {
	if m.redis != nil {
		return m.redis.Close()
	}
	return nil
}
