package requestresponse

// RoleRequest : создание или обновление роли
type RoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=255"`
	IsActive    *bool  `json:"isActive"`
}

// PermissionRequest : создание или обновление права
type PermissionRequest struct {
	Name        string `json:"name" validate:"omitempty,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=255"`
	Resource    string `json:"resource" validate:"required,min=2,max=50"`
	Action      string `json:"action" validate:"required,oneof=create read update delete manage"`
}

// UserRoleRequest : назначение роли пользователю
type UserRoleRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	RoleID string `json:"roleId" validate:"required,uuid"`
}

// RolePermissionRequest : назначение права роли
type RolePermissionRequest struct {
	RoleID       string `json:"roleId" validate:"required,uuid"`
	PermissionID string `json:"permissionId" validate:"required,uuid"`
}
