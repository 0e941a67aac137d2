package handler_test

import (
	"booking-server/internal/model"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input model.NewUser, client model.ClientInfo) (*model.AuthResult, error) {
	args := m.Called(ctx, input, client)
	result, _ := args.Get(0).(*model.AuthResult)
	return result, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, client model.ClientInfo) (*model.AuthResult, error) {
	args := m.Called(ctx, email, password, client)
	result, _ := args.Get(0).(*model.AuthResult)
	return result, args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, error) {
	args := m.Called(ctx, refreshToken, client)
	tokens, _ := args.Get(0).(*model.TokensPair)
	return tokens, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	m.Called(ctx, accessToken, refreshToken)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID, accessToken, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, accessToken, currentPassword, newPassword).Error(0)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*model.SanitizedUser, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.SanitizedUser)
	return user, args.Error(1)
}

type MockRoleService struct {
	mock.Mock
}

func (m *MockRoleService) ListRoles(ctx context.Context, search string, limit, offset int) ([]model.Role, error) {
	args := m.Called(ctx, search, limit, offset)
	roles, _ := args.Get(0).([]model.Role)
	return roles, args.Error(1)
}

func (m *MockRoleService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	args := m.Called(ctx, id)
	role, _ := args.Get(0).(*model.Role)
	return role, args.Error(1)
}

func (m *MockRoleService) CreateRole(ctx context.Context, role *model.Role) (*model.Role, error) {
	args := m.Called(ctx, role)
	created, _ := args.Get(0).(*model.Role)
	return created, args.Error(1)
}

func (m *MockRoleService) UpdateRole(ctx context.Context, role *model.Role) (*model.Role, error) {
	args := m.Called(ctx, role)
	updated, _ := args.Get(0).(*model.Role)
	return updated, args.Error(1)
}

func (m *MockRoleService) DeleteRole(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleService) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *MockRoleService) RemoveRoleFromUser(ctx context.Context, userID, roleID string) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *MockRoleService) GetUserRoles(ctx context.Context, userID string) ([]model.Role, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]model.Role)
	return roles, args.Error(1)
}

func (m *MockRoleService) GetRoleUsers(ctx context.Context, roleID string) ([]*model.SanitizedUser, error) {
	args := m.Called(ctx, roleID)
	users, _ := args.Get(0).([]*model.SanitizedUser)
	return users, args.Error(1)
}

func (m *MockRoleService) ListPermissions(ctx context.Context, resource string, limit, offset int) ([]model.Permission, error) {
	args := m.Called(ctx, resource, limit, offset)
	permissions, _ := args.Get(0).([]model.Permission)
	return permissions, args.Error(1)
}

func (m *MockRoleService) GetPermission(ctx context.Context, id string) (*model.Permission, error) {
	args := m.Called(ctx, id)
	permission, _ := args.Get(0).(*model.Permission)
	return permission, args.Error(1)
}

func (m *MockRoleService) CreatePermission(ctx context.Context, permission *model.Permission) (*model.Permission, error) {
	args := m.Called(ctx, permission)
	created, _ := args.Get(0).(*model.Permission)
	return created, args.Error(1)
}

func (m *MockRoleService) UpdatePermission(ctx context.Context, permission *model.Permission) (*model.Permission, error) {
	args := m.Called(ctx, permission)
	updated, _ := args.Get(0).(*model.Permission)
	return updated, args.Error(1)
}

func (m *MockRoleService) DeletePermission(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleService) AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

func (m *MockRoleService) RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	return m.Called(ctx, roleID, permissionID).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, input model.NewUser) (*model.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
