package model

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionManage покрывает все остальные действия над ресурсом
	ActionManage Action = "manage"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return true
	}
	return false
}

type Role struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	Permissions []Permission `db:"-" json:"permissions,omitempty"`
}

type Permission struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Resource    string    `db:"resource" json:"resource"`
	Action      Action    `db:"action" json:"action"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// PermissionName : имя права в формате resource.action
func PermissionName(resource string, action Action) string {
	return fmt.Sprintf("%s.%s", resource, action)
}

// Grants : право разрешает действие над ресурсом напрямую или через manage
func (p Permission) Grants(resource string, action Action) bool {
	if p.Resource != resource {
		return false
	}
	return p.Action == action || p.Action == ActionManage
}
