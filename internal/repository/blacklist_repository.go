package repository

import (
	"booking-server/config"
	"booking-server/internal/model"
	"booking-server/internal/util"
	"context"
	"time"
)

// BlacklistRepository : черный список access-токенов по jti
type BlacklistRepository struct {
	*config.Database
}

func NewBlacklistRepository(database *config.Database) *BlacklistRepository {
	return &BlacklistRepository{database}
}

// Add : повторное добавление того же jti ничего не меняет
func (r *BlacklistRepository) Add(ctx context.Context, entry *model.RevokedToken) error {
	query := `
		INSERT INTO token_blacklist (id, token_jti, user_id, expires_at, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_jti) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.TokenJTI, entry.UserID, entry.ExpiresAt, entry.Reason, entry.CreatedAt,
	)
	if err != nil {
		return util.LogError("[BlacklistRepo] не удалось добавить токен в черный список", err)
	}
	return nil
}

func (r *BlacklistRepository) Exists(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_jti = $1)`, jti)
	if err != nil {
		return false, util.LogError("[BlacklistRepo] ошибка проверки черного списка", err)
	}
	return exists, nil
}

func (r *BlacklistRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM token_blacklist WHERE expires_at < $1`, before)
	if err != nil {
		return 0, util.LogError("[BlacklistRepo] не удалось очистить черный список", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("[BlacklistRepo] не удалось проверить количество удаленных записей", err)
	}
	return rowsAffected, nil
}
