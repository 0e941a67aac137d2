package service_test

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/metrics"
	"booking-server/internal/model"
	"booking-server/internal/security"
	"booking-server/internal/service"
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Str0ng!Pass"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ===== users =====

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*model.User
	rbac  *fakeRBAC
	clock *fakeClock
}

func newFakeUsers(rbac *fakeRBAC, clock *fakeClock) *fakeUsers {
	return &fakeUsers{byID: map[string]*model.User{}, rbac: rbac, clock: clock}
}

func (f *fakeUsers) CreateUser(ctx context.Context, user *model.User, roleIDs []string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.Email == user.Email {
			return nil, apperror.WithCode(apperror.Conflict, "EMAIL_DUPLICATED", "email уже зарегистрирован")
		}
		if existing.Username == user.Username {
			return nil, apperror.WithCode(apperror.Conflict, "USERNAME_DUPLICATED", "имя пользователя уже занято")
		}
	}
	for _, roleID := range roleIDs {
		if _, err := f.rbac.GrantRoleToUser(ctx, user.ID, roleID); err != nil {
			return nil, err
		}
	}

	stored := *user
	stored.CreatedAt = f.clock.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.byID[stored.ID] = &stored

	created := stored
	return &created, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Email == email && user.Status == model.UserStatusActive {
			found := *user
			return &found, nil
		}
	}
	return nil, apperror.New(apperror.NotFound, "пользователь не найден")
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok || user.Status != model.UserStatusActive {
		return nil, apperror.New(apperror.NotFound, "пользователь не найден")
	}
	found := *user
	return &found, nil
}

func (f *fakeUsers) FindByIDWithRoles(ctx context.Context, id string) (*model.User, error) {
	user, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles, err = f.rbac.RolesForUser(ctx, id, false)
	return user, err
}

func (f *fakeUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.byID {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) RecordFailedLogin(_ context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return 0, nil, apperror.New(apperror.NotFound, "пользователь не найден")
	}
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= threshold {
		until := lockUntil
		user.LockedUntil = &until
	}
	return user.FailedLoginAttempts, user.LockedUntil, nil
}

func (f *fakeUsers) ResetLoginState(_ context.Context, id string, lastLogin time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return apperror.New(apperror.NotFound, "пользователь не найден")
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &lastLogin
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok || user.Status != model.UserStatusActive {
		return apperror.New(apperror.NotFound, "пользователь не найден")
	}
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = &changedAt
	return nil
}

func (f *fakeUsers) SoftDelete(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok || user.Status != model.UserStatusActive {
		return apperror.New(apperror.NotFound, "пользователь не найден")
	}
	user.Status = model.UserStatusDeleted
	user.Active = false
	return nil
}

func (f *fakeUsers) setActive(id string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Active = active
}

func (f *fakeUsers) get(id string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

// ===== rbac =====

type fakeRBAC struct {
	mu              sync.Mutex
	roles           map[string]*model.Role
	permissions     map[string]*model.Permission
	userRoles       map[string]map[string]bool
	rolePermissions map[string]map[string]bool
	users           *fakeUsers
}

func newFakeRBAC() *fakeRBAC {
	return &fakeRBAC{
		roles:           map[string]*model.Role{},
		permissions:     map[string]*model.Permission{},
		userRoles:       map[string]map[string]bool{},
		rolePermissions: map[string]map[string]bool{},
	}
}

func (f *fakeRBAC) addRole(name string, active bool) *model.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	role := &model.Role{ID: uuid.NewString(), Name: name, IsActive: active}
	f.roles[role.ID] = role
	return role
}

func (f *fakeRBAC) addPermission(resource string, action model.Action) *model.Permission {
	f.mu.Lock()
	defer f.mu.Unlock()
	permission := &model.Permission{
		ID:       uuid.NewString(),
		Name:     model.PermissionName(resource, action),
		Resource: resource,
		Action:   action,
	}
	f.permissions[permission.ID] = permission
	return permission
}

func (f *fakeRBAC) RolesForUser(_ context.Context, userID string, activeOnly bool) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roles := []model.Role{}
	for roleID := range f.userRoles[userID] {
		role := f.roles[roleID]
		if activeOnly && !role.IsActive {
			continue
		}
		roles = append(roles, *role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (f *fakeRBAC) GrantRoleToUser(_ context.Context, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[roleID]; !ok {
		return false, apperror.New(apperror.NotFound, "пользователь или роль не найдены")
	}
	if f.userRoles[userID] == nil {
		f.userRoles[userID] = map[string]bool{}
	}
	if f.userRoles[userID][roleID] {
		return false, nil
	}
	f.userRoles[userID][roleID] = true
	return true, nil
}

func (f *fakeRBAC) RevokeRoleFromUser(_ context.Context, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.userRoles[userID][roleID] {
		return false, nil
	}
	delete(f.userRoles[userID], roleID)
	return true, nil
}

func (f *fakeRBAC) UserHasRole(_ context.Context, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userRoles[userID][roleID], nil
}

func (f *fakeRBAC) UsersWithRole(ctx context.Context, roleID string) ([]model.User, error) {
	f.mu.Lock()
	var ids []string
	for userID, roles := range f.userRoles {
		if roles[roleID] {
			ids = append(ids, userID)
		}
	}
	f.mu.Unlock()

	users := []model.User{}
	for _, id := range ids {
		if user, err := f.users.FindByID(ctx, id); err == nil {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeRBAC) PermissionsForRoles(_ context.Context, roleIDs []string) ([]model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	permissions := []model.Permission{}
	for _, roleID := range roleIDs {
		for permissionID := range f.rolePermissions[roleID] {
			if seen[permissionID] {
				continue
			}
			seen[permissionID] = true
			permissions = append(permissions, *f.permissions[permissionID])
		}
	}
	return permissions, nil
}

func (f *fakeRBAC) GrantPermissionToRole(_ context.Context, roleID, permissionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolePermissions[roleID] == nil {
		f.rolePermissions[roleID] = map[string]bool{}
	}
	if f.rolePermissions[roleID][permissionID] {
		return false, nil
	}
	f.rolePermissions[roleID][permissionID] = true
	return true, nil
}

func (f *fakeRBAC) RevokePermissionFromRole(_ context.Context, roleID, permissionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rolePermissions[roleID][permissionID] {
		return false, nil
	}
	delete(f.rolePermissions[roleID], permissionID)
	return true, nil
}

func (f *fakeRBAC) RoleHasPermission(_ context.Context, roleID, permissionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rolePermissions[roleID][permissionID], nil
}

// fakeRoles и fakePermissions разделяют одно хранилище,
// но реализуют разные интерфейсы с пересекающимися именами методов
type fakeRoles struct{ *fakeRBAC }

func (f fakeRoles) List(_ context.Context, search string, limit, offset int) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roles := []model.Role{}
	for _, role := range f.roles {
		if search == "" || strings.Contains(strings.ToLower(role.Name), strings.ToLower(search)) {
			roles = append(roles, *role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return page(roles, limit, offset), nil
}

func (f fakeRoles) FindByID(_ context.Context, id string) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "роль не найдена")
	}
	found := *role
	return &found, nil
}

func (f fakeRoles) FindByName(_ context.Context, name string) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range f.roles {
		if role.Name == name {
			found := *role
			return &found, nil
		}
	}
	return nil, apperror.New(apperror.NotFound, "роль не найдена")
}

func (f fakeRoles) Create(_ context.Context, role *model.Role) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.roles {
		if existing.Name == role.Name {
			return nil, apperror.Newf(apperror.Conflict, "роль %s уже существует", role.Name)
		}
	}
	stored := *role
	f.roles[stored.ID] = &stored
	created := stored
	return &created, nil
}

func (f fakeRoles) Update(_ context.Context, role *model.Role) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role.ID]; !ok {
		return nil, apperror.New(apperror.NotFound, "роль не найдена")
	}
	stored := *role
	f.roles[role.ID] = &stored
	updated := stored
	return &updated, nil
}

func (f fakeRoles) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return apperror.New(apperror.NotFound, "роль не найдена")
	}
	delete(f.roles, id)
	return nil
}

type fakePermissions struct{ *fakeRBAC }

func (f fakePermissions) List(_ context.Context, resource string, limit, offset int) ([]model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	permissions := []model.Permission{}
	for _, permission := range f.permissions {
		if resource == "" || permission.Resource == resource {
			permissions = append(permissions, *permission)
		}
	}
	sort.Slice(permissions, func(i, j int) bool { return permissions[i].Name < permissions[j].Name })
	return page(permissions, limit, offset), nil
}

func (f fakePermissions) FindByID(_ context.Context, id string) (*model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	permission, ok := f.permissions[id]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "право не найдено")
	}
	found := *permission
	return &found, nil
}

func (f fakePermissions) Create(_ context.Context, permission *model.Permission) (*model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.permissions {
		if existing.Resource == permission.Resource && existing.Action == permission.Action {
			return nil, apperror.Newf(apperror.Conflict, "право %s уже существует", permission.Name)
		}
	}
	stored := *permission
	f.permissions[stored.ID] = &stored
	created := stored
	return &created, nil
}

func (f fakePermissions) Update(_ context.Context, permission *model.Permission) (*model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.permissions[permission.ID]; !ok {
		return nil, apperror.New(apperror.NotFound, "право не найдено")
	}
	stored := *permission
	f.permissions[permission.ID] = &stored
	updated := stored
	return &updated, nil
}

func (f fakePermissions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.permissions[id]; !ok {
		return apperror.New(apperror.NotFound, "право не найдено")
	}
	delete(f.permissions, id)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ===== tokens =====

type fakeRefreshTokens struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{tokens: map[string]*model.RefreshToken{}}
}

func (f *fakeRefreshTokens) Save(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *token
	f.tokens[token.Token] = &stored
	return nil
}

func (f *fakeRefreshTokens) RevokeIfActive(_ context.Context, token string, now time.Time) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[token]
	if !ok || stored.Revoked || !stored.ExpiresAt.After(now) {
		return nil, nil
	}
	stored.Revoked = true
	stored.RevokedAt = &now
	revoked := *stored
	return &revoked, nil
}

func (f *fakeRefreshTokens) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[token]
	if !ok {
		return nil, apperror.New(apperror.NotFound, "refresh-токен не найден")
	}
	found := *stored
	return &found, nil
}

func (f *fakeRefreshTokens) Revoke(_ context.Context, token string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.tokens[token]; ok && !stored.Revoked {
		stored.Revoked = true
		stored.RevokedAt = &now
	}
	return nil
}

func (f *fakeRefreshTokens) RevokeAllForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, stored := range f.tokens {
		if stored.UserID == userID && !stored.Revoked {
			stored.Revoked = true
			stored.RevokedAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeRefreshTokens) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for key, stored := range f.tokens {
		if stored.ExpiresAt.Before(before) {
			delete(f.tokens, key)
			count++
		}
	}
	return count, nil
}

func (f *fakeRefreshTokens) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeBlacklist struct {
	mu      sync.Mutex
	entries map[string]*model.RevokedToken
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{entries: map[string]*model.RevokedToken{}}
}

func (f *fakeBlacklist) Add(_ context.Context, entry *model.RevokedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entry.TokenJTI]; !ok {
		stored := *entry
		f.entries[entry.TokenJTI] = &stored
	}
	return nil
}

func (f *fakeBlacklist) Exists(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[jti]
	return ok, nil
}

func (f *fakeBlacklist) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for jti, entry := range f.entries {
		if entry.ExpiresAt.Before(before) {
			delete(f.entries, jti)
			count++
		}
	}
	return count, nil
}

func (f *fakeBlacklist) reason(jti string) model.RevocationReason {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.entries[jti]; ok {
		return entry.Reason
	}
	return ""
}

// ===== окружение =====

type testEnv struct {
	clock       *fakeClock
	users       *fakeUsers
	rbac        *fakeRBAC
	refresh     *fakeRefreshTokens
	blacklist   *fakeBlacklist
	metrics     *metrics.AuthMetrics
	codec       *security.JWTService
	ledger      *service.RefreshLedger
	revocations *service.RevocationList
	lockout     *service.LockoutPolicy
	userService *service.UserService
	auth        *service.AuthenticationService
	authorizer  *service.Authorizer
	roles       *service.RoleService
	defaultRole *model.Role
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock:     newFakeClock(),
		rbac:      newFakeRBAC(),
		refresh:   newFakeRefreshTokens(),
		blacklist: newFakeBlacklist(),
		metrics:   metrics.NewNop(),
	}
	env.users = newFakeUsers(env.rbac, env.clock)
	env.rbac.users = env.users
	env.defaultRole = env.rbac.addRole("user", true)

	now := env.clock.Now
	env.codec = security.NewJWTService(&config.JWTConfig{
		SecretKey:       "test-secret-key-with-enough-length",
		Issuer:          "booking-server",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}).WithClock(now)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	env.ledger = service.NewRefreshLedger(env.refresh, 7*24*time.Hour, now)
	env.revocations = service.NewRevocationList(env.blacklist, nil, now)
	env.lockout = service.NewLockoutPolicy(env.users, config.LockoutConfig{MaxAttempts: 5, Window: 15 * time.Minute}, env.metrics, now)
	env.userService = service.NewUserService(env.users, fakeRoles{env.rbac}, hasher, env.ledger, "user", now)
	env.auth = service.NewAuthenticationService(
		env.users, env.userService, env.codec, hasher,
		env.ledger, env.revocations, env.lockout, env.metrics, now,
	)
	env.authorizer = service.NewAuthorizer(fakeRoles{env.rbac}, fakePermissions{env.rbac}, env.metrics)
	env.roles = service.NewRoleService(fakeRoles{env.rbac}, fakePermissions{env.rbac}, env.users)
	return env
}

func (e *testEnv) register(t *testing.T, name string) *model.AuthResult {
	t.Helper()
	result, err := e.auth.Register(context.Background(), model.NewUser{
		Username: name,
		Email:    name + "@example.com",
		Password: strongPassword,
	}, model.ClientInfo{IPAddress: "127.0.0.1", UserAgent: "test"})
	if err != nil {
		t.Fatalf("регистрация %s: %v", name, err)
	}
	return result
}

func (e *testEnv) login(email, password string) (*model.AuthResult, error) {
	return e.auth.Login(context.Background(), email, password, model.ClientInfo{IPAddress: "127.0.0.1"})
}
