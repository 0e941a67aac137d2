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

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, active, status,
	failed_login_attempts, locked_until, last_login, password_changed_at, created_at, updated_at`

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет пользователя и его роли в одной транзакции
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User, roleIDs []string) (*model.User, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, util.LogError("[UserRepo] не удалось начать транзакцию", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
	INSERT INTO users (id, username, email, first_name, last_name, password_hash, active, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + userColumns

	var created model.User
	err = sqlx.GetContext(ctx, tx, &created, query,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.Active, user.Status,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "users_username_key" {
				return nil, apperror.WithCode(apperror.Conflict, "USERNAME_DUPLICATED", "имя пользователя уже занято")
			}
			return nil, apperror.WithCode(apperror.Conflict, "EMAIL_DUPLICATED", "email уже зарегистрирован")
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	for _, roleID := range roleIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			created.ID, roleID,
		)
		if err != nil {
			if foreignKeyViolation(err) {
				return nil, apperror.Newf(apperror.NotFound, "роль %s не найдена", roleID)
			}
			return nil, util.LogError("[UserRepo] не удалось назначить роль", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, util.LogError("[UserRepo] не удалось зафиксировать транзакцию", err)
	}

	return &created, nil
}

// FindByEmail : ищет неудаленного пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND status = 'active'`
	return r.getUser(ctx, query, email)
}

// FindByID : ищет неудаленного пользователя по id
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND status = 'active'`
	return r.getUser(ctx, query, id)
}

func (r *UserRepository) FindByIDWithRoles(ctx context.Context, id string) (*model.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.name, r.description, r.is_active, r.created_at, r.updated_at
		FROM roles AS r
		INNER JOIN user_roles AS ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`
	if err := r.DB.SelectContext(ctx, &user.Roles, query, id); err != nil {
		return nil, util.LogError("[UserRepo] не удалось получить роли пользователя", err)
	}

	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

// RecordFailedLogin : атомарно увеличивает счетчик неудачных входов.
// При достижении threshold в том же запросе выставляется locked_until.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	query := `
		UPDATE users
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until
	`

	var result struct {
		Attempts    int        `db:"failed_login_attempts"`
		LockedUntil *time.Time `db:"locked_until"`
	}
	if err := r.DB.GetContext(ctx, &result, query, id, threshold, lockUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, apperror.New(apperror.NotFound, "пользователь не найден")
		}
		return 0, nil, util.LogError("[UserRepo] не удалось обновить счетчик входов", err)
	}

	return result.Attempts, result.LockedUntil, nil
}

// ResetLoginState : сбрасывает счетчик и блокировку после успешного входа
func (r *UserRepository) ResetLoginState(ctx context.Context, id string, lastLogin time.Time) error {
	query := `
		UPDATE users
		SET failed_login_attempts = 0, locked_until = NULL, last_login = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.DB.ExecContext(ctx, query, id, lastLogin); err != nil {
		return util.LogError("[UserRepo] не удалось сбросить счетчик входов", err)
	}
	return nil
}

// UpdatePassword : меняет пароль пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	result, err := r.DB.ExecContext(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return requireAffected(result, "пользователь не найден")
}

// SoftDelete : помечает пользователя удаленным
func (r *UserRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	query := `
		UPDATE users
		SET status = 'deleted', active = FALSE, deleted_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	result, err := r.DB.ExecContext(ctx, query, id, deletedAt)
	if err != nil {
		return util.LogError("[UserRepo] не удалось удалить пользователя", err)
	}
	return requireAffected(result, "пользователь не найден")
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	if err := r.DB.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.NotFound, "пользователь не найден")
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.DB.GetContext(ctx, &exists, query, arg); err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки существования", err)
	}
	return exists, nil
}

// requireAffected : NotFound, если запрос не затронул ни одной строки
func requireAffected(result sql.Result, notFoundMessage string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("не удалось проверить количество измененных строк", err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.NotFound, notFoundMessage)
	}
	return nil
}
