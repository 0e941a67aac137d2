package service

import (
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RevocationList : черный список access-токенов.
// Postgres является источником истины, Redis только ускоряет положительные проверки.
type RevocationList struct {
	store ports.BlacklistRepository
	cache ports.RevocationCache
	now   Clock
}

// NewRevocationList : cache может быть nil
func NewRevocationList(store ports.BlacklistRepository, cache ports.RevocationCache, now Clock) *RevocationList {
	return &RevocationList{store: store, cache: cache, now: now}
}

func (l *RevocationList) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time, reason model.RevocationReason) error {
	now := l.now()
	entry := &model.RevokedToken{
		ID:        uuid.NewString(),
		TokenJTI:  jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
		Reason:    reason,
		CreatedAt: now,
	}
	if err := l.store.Add(ctx, entry); err != nil {
		return err
	}

	if l.cache != nil {
		if err := l.cache.MarkRevoked(ctx, jti, expiresAt.Sub(now)); err != nil {
			slog.WarnContext(ctx, "не удалось записать отзыв токена в кэш", slog.String("jti", jti), slog.Any("error", err))
		}
	}
	return nil
}

func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if l.cache != nil {
		hit, err := l.cache.IsRevoked(ctx, jti)
		if err != nil {
			slog.WarnContext(ctx, "кэш черного списка недоступен, проверка по БД", slog.Any("error", err))
		} else if hit {
			return true, nil
		}
	}

	return l.store.Exists(ctx, jti)
}

// Prune : удаление записей об уже истекших токенах
func (l *RevocationList) Prune(ctx context.Context) (int64, error) {
	return l.store.DeleteExpired(ctx, l.now())
}
