package repository

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/util"
	"context"
	"database/sql"
	"errors"
)

const roleColumns = `id, name, description, is_active, created_at, updated_at`

type RoleRepository struct {
	*config.Database
}

func NewRoleRepository(database *config.Database) *RoleRepository {
	return &RoleRepository{database}
}

// List : роли с поиском по имени
func (r *RoleRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Role, error) {
	query := `
		SELECT ` + roleColumns + `
		FROM roles
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	roles := []model.Role{}
	if err := r.DB.SelectContext(ctx, &roles, query, search, limit, offset); err != nil {
		return nil, util.LogError("[RoleRepo] не удалось получить список ролей", err)
	}
	return roles, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*model.Role, error) {
	return r.getRole(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	return r.getRole(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

func (r *RoleRepository) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	query := `
		INSERT INTO roles (id, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + roleColumns

	var created model.Role
	err := r.DB.GetContext(ctx, &created, query, role.ID, role.Name, role.Description, role.IsActive)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return nil, apperror.Newf(apperror.Conflict, "роль %s уже существует", role.Name)
		}
		return nil, util.LogError("[RoleRepo] не удалось создать роль", err)
	}
	return &created, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *model.Role) (*model.Role, error) {
	query := `
		UPDATE roles
		SET name = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + roleColumns

	var updated model.Role
	err := r.DB.GetContext(ctx, &updated, query, role.ID, role.Name, role.Description, role.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.NotFound, "роль не найдена")
		}
		if _, ok := uniqueViolation(err); ok {
			return nil, apperror.Newf(apperror.Conflict, "роль %s уже существует", role.Name)
		}
		return nil, util.LogError("[RoleRepo] не удалось обновить роль", err)
	}
	return &updated, nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return util.LogError("[RoleRepo] не удалось удалить роль", err)
	}
	return requireAffected(result, "роль не найдена")
}

// RolesForUser : роли пользователя, activeOnly отбрасывает выключенные роли
func (r *RoleRepository) RolesForUser(ctx context.Context, userID string, activeOnly bool) ([]model.Role, error) {
	query := `
		SELECT r.id, r.name, r.description, r.is_active, r.created_at, r.updated_at
		FROM roles AS r
		INNER JOIN user_roles AS ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 AND (NOT $2 OR r.is_active)
		ORDER BY r.name
	`
	roles := []model.Role{}
	if err := r.DB.SelectContext(ctx, &roles, query, userID, activeOnly); err != nil {
		return nil, util.LogError("[RoleRepo] не удалось получить роли пользователя", err)
	}
	return roles, nil
}

// UsersWithRole : неудаленные пользователи с ролью
func (r *RoleRepository) UsersWithRole(ctx context.Context, roleID string) ([]model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.active, u.status, u.last_login, u.created_at, u.updated_at
		FROM users AS u
		INNER JOIN user_roles AS ur ON ur.user_id = u.id
		WHERE ur.role_id = $1 AND u.status = 'active'
		ORDER BY u.username
	`
	users := []model.User{}
	if err := r.DB.SelectContext(ctx, &users, query, roleID); err != nil {
		return nil, util.LogError("[RoleRepo] не удалось получить пользователей роли", err)
	}
	return users, nil
}

// GrantRoleToUser : false, если роль уже была назначена
func (r *RoleRepository) GrantRoleToUser(ctx context.Context, userID, roleID string) (bool, error) {
	query := `
		INSERT INTO user_roles (user_id, role_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, userID, roleID)
	if err != nil {
		if foreignKeyViolation(err) {
			return false, apperror.New(apperror.NotFound, "пользователь или роль не найдены")
		}
		return false, util.LogError("[RoleRepo] не удалось назначить роль", err)
	}
	return affected(result)
}

// RevokeRoleFromUser : false, если роль не была назначена
func (r *RoleRepository) RevokeRoleFromUser(ctx context.Context, userID, roleID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return false, util.LogError("[RoleRepo] не удалось снять роль", err)
	}
	return affected(result)
}

func (r *RoleRepository) UserHasRole(ctx context.Context, userID, roleID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2)`
	if err := r.DB.GetContext(ctx, &exists, query, userID, roleID); err != nil {
		return false, util.LogError("[RoleRepo] ошибка проверки роли", err)
	}
	return exists, nil
}

func (r *RoleRepository) getRole(ctx context.Context, query string, arg any) (*model.Role, error) {
	var role model.Role
	if err := r.DB.GetContext(ctx, &role, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.NotFound, "роль не найдена")
		}
		return nil, util.LogError("[RoleRepo] не удалось найти роль", err)
	}
	return &role, nil
}

func affected(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("не удалось проверить количество измененных строк", err)
	}
	return rowsAffected > 0, nil
}
