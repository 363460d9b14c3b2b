package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingSignUp описывает незавершённую регистрацию, которую мы храним в
// Redis по тикету до подтверждения кода из письма.
type PendingSignUp struct {
	Email        string
	PasswordHash string
	Code         string
}

// SignUpCache — минимальный контракт хранилища незавершённых регистраций.
type SignUpCache interface {
	// Put сохраняет запись с TTL (окно, за которое пользователь должен
	// подтвердить код).
	Put(ctx context.Context, ticket string, e *PendingSignUp, ttl time.Duration) error
	// Get возвращает запись и признак её наличия в кэше.
	Get(ctx context.Context, ticket string) (*PendingSignUp, bool, error)
	// Del удаляет запись (после успешного подтверждения).
	Del(ctx context.Context, ticket string) error
	// Ping проверяет доступность Redis (используется health-check'ом).
	Ping(ctx context.Context) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisSignUpCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "auth:su:".
func NewRedisSignUpCache(redisURL, prefix string) (SignUpCache, error) {
	if prefix == "" {
		prefix = "auth:su:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(ticket string) string { return c.prefix + ticket }

// Храним как Redis Hash с полями: email, pwd, code.
func (c *redisCache) Put(ctx context.Context, ticket string, e *PendingSignUp, ttl time.Duration) error {
	kv := map[string]string{
		"email": e.Email,
		"pwd":   e.PasswordHash,
		"code":  e.Code,
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(ticket), kv)
	pipe.Expire(ctx, c.key(ticket), ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) Get(ctx context.Context, ticket string) (*PendingSignUp, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(ticket)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	return &PendingSignUp{
		Email:        m["email"],
		PasswordHash: m["pwd"],
		Code:         m["code"],
	}, true, nil
}

func (c *redisCache) Del(ctx context.Context, ticket string) error {
	return c.rdb.Del(ctx, c.key(ticket)).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
