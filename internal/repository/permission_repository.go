package repository

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/util"
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const permissionColumns = `id, name, description, resource, action, created_at, updated_at`

type PermissionRepository struct {
	*config.Database
}

func NewPermissionRepository(database *config.Database) *PermissionRepository {
	return &PermissionRepository{database}
}

func (r *PermissionRepository) List(ctx context.Context, resource string, limit, offset int) ([]model.Permission, error) {
	query := `
		SELECT ` + permissionColumns + `
		FROM permissions
		WHERE ($1 = '' OR resource = $1)
		ORDER BY resource, action
		LIMIT $2 OFFSET $3
	`
	permissions := []model.Permission{}
	if err := r.DB.SelectContext(ctx, &permissions, query, resource, limit, offset); err != nil {
		return nil, util.LogError("[PermissionRepo] не удалось получить список прав", err)
	}
	return permissions, nil
}

func (r *PermissionRepository) FindByID(ctx context.Context, id string) (*model.Permission, error) {
	var permission model.Permission
	err := r.DB.GetContext(ctx, &permission, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.NotFound, "право не найдено")
		}
		return nil, util.LogError("[PermissionRepo] не удалось найти право", err)
	}
	return &permission, nil
}

func (r *PermissionRepository) Create(ctx context.Context, permission *model.Permission) (*model.Permission, error) {
	query := `
		INSERT INTO permissions (id, name, description, resource, action)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + permissionColumns

	var created model.Permission
	err := r.DB.GetContext(ctx, &created, query,
		permission.ID, permission.Name, permission.Description, permission.Resource, permission.Action,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return nil, permissionConflict(constraint, permission)
		}
		return nil, util.LogError("[PermissionRepo] не удалось создать право", err)
	}
	return &created, nil
}

func (r *PermissionRepository) Update(ctx context.Context, permission *model.Permission) (*model.Permission, error) {
	query := `
		UPDATE permissions
		SET name = $2, description = $3, resource = $4, action = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + permissionColumns

	var updated model.Permission
	err := r.DB.GetContext(ctx, &updated, query,
		permission.ID, permission.Name, permission.Description, permission.Resource, permission.Action,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.New(apperror.NotFound, "право не найдено")
		}
		if constraint, ok := uniqueViolation(err); ok {
			return nil, permissionConflict(constraint, permission)
		}
		return nil, util.LogError("[PermissionRepo] не удалось обновить право", err)
	}
	return &updated, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return util.LogError("[PermissionRepo] не удалось удалить право", err)
	}
	return requireAffected(result, "право не найдено")
}

// PermissionsForRoles : объединение прав набора ролей без повторов
func (r *PermissionRepository) PermissionsForRoles(ctx context.Context, roleIDs []string) ([]model.Permission, error) {
	permissions := []model.Permission{}
	if len(roleIDs) == 0 {
		return permissions, nil
	}

	query := `
		SELECT DISTINCT p.id, p.name, p.description, p.resource, p.action, p.created_at, p.updated_at
		FROM permissions AS p
		INNER JOIN role_permissions AS rp ON rp.permission_id = p.id
		WHERE rp.role_id = ANY($1)
	`
	if err := r.DB.SelectContext(ctx, &permissions, query, pq.Array(roleIDs)); err != nil {
		return nil, util.LogError("[PermissionRepo] не удалось получить права ролей", err)
	}
	return permissions, nil
}

// GrantPermissionToRole : false, если право уже было у роли
func (r *PermissionRepository) GrantPermissionToRole(ctx context.Context, roleID, permissionID string) (bool, error) {
	query := `
		INSERT INTO role_permissions (role_id, permission_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, roleID, permissionID)
	if err != nil {
		if foreignKeyViolation(err) {
			return false, apperror.New(apperror.NotFound, "роль или право не найдены")
		}
		return false, util.LogError("[PermissionRepo] не удалось назначить право", err)
	}
	return affected(result)
}

func (r *PermissionRepository) RevokePermissionFromRole(ctx context.Context, roleID, permissionID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	if err != nil {
		return false, util.LogError("[PermissionRepo] не удалось снять право", err)
	}
	return affected(result)
}

func (r *PermissionRepository) RoleHasPermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM role_permissions WHERE role_id = $1 AND permission_id = $2)`
	if err := r.DB.GetContext(ctx, &exists, query, roleID, permissionID); err != nil {
		return false, util.LogError("[PermissionRepo] ошибка проверки права", err)
	}
	return exists, nil
}

func permissionConflict(constraint string, permission *model.Permission) error {
	if constraint == "permissions_resource_action_key" {
		return apperror.Newf(apperror.Conflict, "право на %s над %s уже существует", permission.Action, permission.Resource)
	}
	return apperror.Newf(apperror.Conflict, "право %s уже существует", permission.Name)
}
