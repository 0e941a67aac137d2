package repository

import (
	"booking-server/config"
	"booking-server/internal/util"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCacheRepository : Redis-кэш отозванных jti, ключ живет до истечения токена
type RevocationCacheRepository struct {
	client *config.RedisClient
}

func NewRevocationCacheRepository(rdb *config.RedisClient) *RevocationCacheRepository {
	return &RevocationCacheRepository{rdb}
}

func (r *RevocationCacheRepository) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	cmd := r.client.Client.Set(ctx, r.key(jti), 1, ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *RevocationCacheRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Client.Get(ctx, r.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil // нет в кэше
	} else if err != nil {
		return false, util.LogError("ошибка чтения из Redis", err)
	}
	return true, nil
}

func (r *RevocationCacheRepository) key(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}
