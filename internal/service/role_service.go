package service

import (
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"context"
	"strings"

	"github.com/google/uuid"
)

type RoleService struct {
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
	users       ports.UserRepository
}

func NewRoleService(roles ports.RoleRepository, permissions ports.PermissionRepository, users ports.UserRepository) *RoleService {
	return &RoleService{roles: roles, permissions: permissions, users: users}
}

func (s *RoleService) ListRoles(ctx context.Context, search string, limit, offset int) ([]model.Role, error) {
	return s.roles.List(ctx, strings.TrimSpace(search), limit, offset)
}

// GetRole : роль вместе с ее правами
func (s *RoleService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	permissions, err := s.permissions.PermissionsForRoles(ctx, []string{role.ID})
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions
	return role, nil
}

func (s *RoleService) CreateRole(ctx context.Context, role *model.Role) (*model.Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return nil, apperror.New(apperror.Validation, "имя роли обязательно")
	}
	role.ID = uuid.NewString()
	return s.roles.Create(ctx, role)
}

func (s *RoleService) UpdateRole(ctx context.Context, role *model.Role) (*model.Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return nil, apperror.New(apperror.Validation, "имя роли обязательно")
	}
	return s.roles.Update(ctx, role)
}

func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	return s.roles.Delete(ctx, id)
}

// AssignRoleToUser : повторное назначение той же роли дает Conflict
func (s *RoleService) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	if err := s.requireUserAndRole(ctx, userID, roleID); err != nil {
		return err
	}

	granted, err := s.roles.GrantRoleToUser(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if !granted {
		return apperror.New(apperror.Conflict, "роль уже назначена пользователю")
	}
	return nil
}

func (s *RoleService) RemoveRoleFromUser(ctx context.Context, userID, roleID string) error {
	if err := s.requireUserAndRole(ctx, userID, roleID); err != nil {
		return err
	}

	removed, err := s.roles.RevokeRoleFromUser(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if !removed {
		return apperror.New(apperror.Conflict, "роль не назначена пользователю")
	}
	return nil
}

func (s *RoleService) GetUserRoles(ctx context.Context, userID string) ([]model.Role, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.roles.RolesForUser(ctx, userID, false)
}

func (s *RoleService) GetRoleUsers(ctx context.Context, roleID string) ([]*model.SanitizedUser, error) {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return nil, err
	}

	users, err := s.roles.UsersWithRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	sanitized := make([]*model.SanitizedUser, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}
	return sanitized, nil
}

func (s *RoleService) ListPermissions(ctx context.Context, resource string, limit, offset int) ([]model.Permission, error) {
	return s.permissions.List(ctx, strings.TrimSpace(resource), limit, offset)
}

func (s *RoleService) GetPermission(ctx context.Context, id string) (*model.Permission, error) {
	return s.permissions.FindByID(ctx, id)
}

// CreatePermission : имя права по умолчанию resource.action
func (s *RoleService) CreatePermission(ctx context.Context, permission *model.Permission) (*model.Permission, error) {
	if err := normalizePermission(permission); err != nil {
		return nil, err
	}
	permission.ID = uuid.NewString()
	return s.permissions.Create(ctx, permission)
}

func (s *RoleService) UpdatePermission(ctx context.Context, permission *model.Permission) (*model.Permission, error) {
	if err := normalizePermission(permission); err != nil {
		return nil, err
	}
	return s.permissions.Update(ctx, permission)
}

func (s *RoleService) DeletePermission(ctx context.Context, id string) error {
	return s.permissions.Delete(ctx, id)
}

func (s *RoleService) AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	if err := s.requireRoleAndPermission(ctx, roleID, permissionID); err != nil {
		return err
	}

	granted, err := s.permissions.GrantPermissionToRole(ctx, roleID, permissionID)
	if err != nil {
		return err
	}
	if !granted {
		return apperror.New(apperror.Conflict, "право уже назначено роли")
	}
	return nil
}

func (s *RoleService) RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	if err := s.requireRoleAndPermission(ctx, roleID, permissionID); err != nil {
		return err
	}

	removed, err := s.permissions.RevokePermissionFromRole(ctx, roleID, permissionID)
	if err != nil {
		return err
	}
	if !removed {
		return apperror.New(apperror.Conflict, "право не назначено роли")
	}
	return nil
}

func (s *RoleService) requireUserAndRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	_, err := s.roles.FindByID(ctx, roleID)
	return err
}

func (s *RoleService) requireRoleAndPermission(ctx context.Context, roleID, permissionID string) error {
	if _, err := s.roles.FindByID(ctx, roleID); err != nil {
		return err
	}
	_, err := s.permissions.FindByID(ctx, permissionID)
	return err
}

func normalizePermission(permission *model.Permission) error {
	permission.Resource = strings.ToLower(strings.TrimSpace(permission.Resource))
	permission.Action = model.Action(strings.ToLower(string(permission.Action)))

	if permission.Resource == "" {
		return apperror.New(apperror.Validation, "ресурс обязателен")
	}
	if !permission.Action.Valid() {
		return apperror.Newf(apperror.Validation, "недопустимое действие %q", permission.Action)
	}

	permission.Name = strings.TrimSpace(permission.Name)
	if permission.Name == "" {
		permission.Name = model.PermissionName(permission.Resource, permission.Action)
	}
	return nil
}
