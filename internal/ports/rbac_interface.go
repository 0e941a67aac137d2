package ports

import (
	"booking-server/internal/model"
	"context"
)

type RoleRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]model.Role, error)
	FindByID(ctx context.Context, id string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	Create(ctx context.Context, role *model.Role) (*model.Role, error)
	Update(ctx context.Context, role *model.Role) (*model.Role, error)
	Delete(ctx context.Context, id string) error
	RolesForUser(ctx context.Context, userID string, activeOnly bool) ([]model.Role, error)
	UsersWithRole(ctx context.Context, roleID string) ([]model.User, error)
	GrantRoleToUser(ctx context.Context, userID, roleID string) (bool, error)
	RevokeRoleFromUser(ctx context.Context, userID, roleID string) (bool, error)
	UserHasRole(ctx context.Context, userID, roleID string) (bool, error)
}

type PermissionRepository interface {
	List(ctx context.Context, resource string, limit, offset int) ([]model.Permission, error)
	FindByID(ctx context.Context, id string) (*model.Permission, error)
	Create(ctx context.Context, permission *model.Permission) (*model.Permission, error)
	Update(ctx context.Context, permission *model.Permission) (*model.Permission, error)
	Delete(ctx context.Context, id string) error
	PermissionsForRoles(ctx context.Context, roleIDs []string) ([]model.Permission, error)
	GrantPermissionToRole(ctx context.Context, roleID, permissionID string) (bool, error)
	RevokePermissionFromRole(ctx context.Context, roleID, permissionID string) (bool, error)
	RoleHasPermission(ctx context.Context, roleID, permissionID string) (bool, error)
}

type RoleService interface {
	ListRoles(ctx context.Context, search string, limit, offset int) ([]model.Role, error)
	GetRole(ctx context.Context, id string) (*model.Role, error)
	CreateRole(ctx context.Context, role *model.Role) (*model.Role, error)
	UpdateRole(ctx context.Context, role *model.Role) (*model.Role, error)
	DeleteRole(ctx context.Context, id string) error
	AssignRoleToUser(ctx context.Context, userID, roleID string) error
	RemoveRoleFromUser(ctx context.Context, userID, roleID string) error
	GetUserRoles(ctx context.Context, userID string) ([]model.Role, error)
	GetRoleUsers(ctx context.Context, roleID string) ([]*model.SanitizedUser, error)

	ListPermissions(ctx context.Context, resource string, limit, offset int) ([]model.Permission, error)
	GetPermission(ctx context.Context, id string) (*model.Permission, error)
	CreatePermission(ctx context.Context, permission *model.Permission) (*model.Permission, error)
	UpdatePermission(ctx context.Context, permission *model.Permission) (*model.Permission, error)
	DeletePermission(ctx context.Context, id string) error
	AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error
	RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error
}
