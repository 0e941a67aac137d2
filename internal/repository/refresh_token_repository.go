package repository

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/util"
	"context"
	"database/sql"
	"errors"
	"time"
)

const refreshTokenColumns = `id, user_id, token, access_token_jti, expires_at, revoked, revoked_at, ip_address, user_agent, created_at`

type RefreshTokenRepository struct {
	*config.Database
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

// Save сохраняет refresh-токен в базе данных
func (r *RefreshTokenRepository) Save(ctx context.Context, token *model.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, access_token_jti, expires_at, revoked, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.AccessTokenJTI,
		token.ExpiresAt,
		token.Revoked,
		token.IPAddress,
		token.UserAgent,
		token.CreatedAt,
	)
	if err != nil {
		return util.LogError("[RefreshRepo] ошибка вставки refresh-токена в БД", err)
	}

	return nil
}

// RevokeIfActive атомарно отзывает токен, если он не отозван и не просрочен.
// Из двух одновременных вызовов строку получит только один, второй получит nil, nil.
func (r *RefreshTokenRepository) RevokeIfActive(ctx context.Context, token string, now time.Time) (*model.RefreshToken, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE token = $1 AND revoked = FALSE AND expires_at > $2
		RETURNING ` + refreshTokenColumns

	var revoked model.RefreshToken
	err := r.DB.GetContext(ctx, &revoked, query, token, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[RefreshRepo] не удалось отозвать refresh-токен", err)
	}

	return &revoked, nil
}

// FindByToken ищет refresh-токен по значению
func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token = $1`

	var found model.RefreshToken
	if err := r.DB.GetContext(ctx, &found, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.NotFound, "refresh-токен не найден")
		}
		return nil, util.LogError("[RefreshRepo] ошибка при выполнении запроса", err)
	}

	return &found, nil
}

// Revoke помечает токен отозванным. Повторный отзыв не считается ошибкой.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string, now time.Time) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE token = $1 AND revoked = FALSE`

	if _, err := r.DB.ExecContext(ctx, query, token, now); err != nil {
		return util.LogError("[RefreshRepo] не удалось отозвать refresh-токен", err)
	}
	return nil
}

// RevokeAllForUser отзывает все активные refresh-токены пользователя
func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE user_id = $1 AND revoked = FALSE`

	result, err := r.DB.ExecContext(ctx, query, userID, now)
	if err != nil {
		return 0, util.LogError("[RefreshRepo] не удалось отозвать токены пользователя", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[RefreshRepo] не удалось проверить, обновлены ли токены", err)
	}
	return rowsAffected, nil
}

// DeleteExpired удаляет токены, истекшие раньше before
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, util.LogError("[RefreshRepo] не удалось удалить просроченные токены", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[RefreshRepo] не удалось проверить количество удаленных токенов", err)
	}
	return rowsAffected, nil
}
