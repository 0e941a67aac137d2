package service

import (
	"booking-server/internal/apperror"
	"booking-server/internal/metrics"
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"context"
	"log/slog"
	"strings"
)

// Authorizer : проверка прав по ролям пользователя.
// Каждый вызов читает текущие назначения из БД, кэша нет.
type Authorizer struct {
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
	metrics     *metrics.AuthMetrics
}

func NewAuthorizer(roles ports.RoleRepository, permissions ports.PermissionRepository, m *metrics.AuthMetrics) *Authorizer {
	return &Authorizer{roles: roles, permissions: permissions, metrics: m}
}

// Authorize разрешает действие, если одна из активных ролей пользователя
// дает право resource.action или resource.manage
func (a *Authorizer) Authorize(ctx context.Context, userID, resource string, action model.Action) error {
	roles, err := a.roles.RolesForUser(ctx, userID, true)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return a.deny(ctx, userID, resource, "у пользователя нет ролей")
	}

	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	permissions, err := a.permissions.PermissionsForRoles(ctx, roleIDs)
	if err != nil {
		return err
	}

	for _, permission := range permissions {
		if permission.Grants(resource, action) {
			return nil
		}
	}

	return a.deny(ctx, userID, resource, "недостаточно прав: требуется "+model.PermissionName(resource, action))
}

// AuthorizeAnyRole : грубая проверка по имени роли, без разбора прав
func (a *Authorizer) AuthorizeAnyRole(ctx context.Context, userID string, roleNames ...string) error {
	roles, err := a.roles.RolesForUser(ctx, userID, true)
	if err != nil {
		return err
	}

	for _, role := range roles {
		for _, name := range roleNames {
			if strings.EqualFold(role.Name, name) {
				return nil
			}
		}
	}

	return a.deny(ctx, userID, "role", "недостаточно прав: требуется роль "+strings.Join(roleNames, " или "))
}

func (a *Authorizer) deny(ctx context.Context, userID, resource, message string) error {
	a.metrics.AccessDenied.WithLabelValues(resource).Inc()
	slog.InfoContext(ctx, "доступ запрещен",
		slog.String("user_id", userID), slog.String("resource", resource), slog.String("reason", message))
	return apperror.New(apperror.Forbidden, message)
}
