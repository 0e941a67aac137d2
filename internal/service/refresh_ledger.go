package service

import (
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"booking-server/internal/util"
	"context"
	"time"

	"github.com/google/uuid"
)

// refreshSecretBytes : длина секрета refresh-токена до hex-кодирования
const refreshSecretBytes = 64

// RefreshLedger : выдача и одноразовый обмен refresh-токенов
type RefreshLedger struct {
	tokens ports.RefreshTokenRepository
	ttl    time.Duration
	now    Clock
}

func NewRefreshLedger(tokens ports.RefreshTokenRepository, ttl time.Duration, now Clock) *RefreshLedger {
	return &RefreshLedger{tokens: tokens, ttl: ttl, now: now}
}

// Issue : новый refresh-токен, привязанный к jti access-токена
func (l *RefreshLedger) Issue(ctx context.Context, userID, accessJTI string, client model.ClientInfo) (*model.RefreshToken, error) {
	secret, err := util.RandomHex(refreshSecretBytes)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "ошибка генерации refresh-токена", err)
	}

	now := l.now()
	token := &model.RefreshToken{
		ID:             uuid.NewString(),
		UserID:         userID,
		Token:          secret,
		AccessTokenJTI: accessJTI,
		ExpiresAt:      now.Add(l.ttl),
		IPAddress:      client.IPAddress,
		UserAgent:      client.UserAgent,
		CreatedAt:      now,
	}

	if err := l.tokens.Save(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Rotate атомарно отзывает предъявленный токен и возвращает его запись.
// Успешен ровно один обмен одного секрета, повторные получают RefreshRevoked.
func (l *RefreshLedger) Rotate(ctx context.Context, secret string) (*model.RefreshToken, error) {
	if secret == "" {
		return nil, apperror.New(apperror.RefreshInvalid, "refresh-токен не передан")
	}

	now := l.now()
	revoked, err := l.tokens.RevokeIfActive(ctx, secret, now)
	if err != nil {
		return nil, err
	}
	if revoked != nil {
		return revoked, nil
	}

	// строка не обновилась: выясняем почему
	existing, err := l.tokens.FindByToken(ctx, secret)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return nil, apperror.New(apperror.RefreshInvalid, "невалидный refresh-токен")
		}
		return nil, err
	}
	if existing.Revoked {
		return nil, apperror.New(apperror.RefreshRevoked, "refresh-токен отозван")
	}
	return nil, apperror.New(apperror.RefreshExpired, "срок действия refresh-токена истек")
}

// Revoke : отзыв одного токена, пустой или уже отозванный токен не ошибка
func (l *RefreshLedger) Revoke(ctx context.Context, secret string) error {
	if secret == "" {
		return nil
	}
	return l.tokens.Revoke(ctx, secret, l.now())
}

func (l *RefreshLedger) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	return l.tokens.RevokeAllForUser(ctx, userID, l.now())
}

// Prune : удаление токенов, истекших раньше before
func (l *RefreshLedger) Prune(ctx context.Context, before time.Time) (int64, error) {
	return l.tokens.DeleteExpired(ctx, before)
}
