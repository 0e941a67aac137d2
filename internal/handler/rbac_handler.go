package handler

import (
	"booking-server/internal/model"
	"booking-server/internal/model/requestresponse"
	"booking-server/internal/ports"
	"booking-server/internal/util"
	"net/http"
)

// RBACHandler : администрирование ролей, прав и их назначений
type RBACHandler struct {
	service ports.RoleService
}

func NewRBACHandler(service ports.RoleService) *RBACHandler {
	return &RBACHandler{service: service}
}

func (h *RBACHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	roles, err := h.service.ListRoles(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, requestresponse.ListResponse{Items: roles, Limit: limit, Offset: offset}, "")
}

func (h *RBACHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, role, "")
}

func (h *RBACHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.RoleRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	role, err := h.service.CreateRole(r.Context(), roleFromRequest(req, ""))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusCreated, role, "роль создана")
}

func (h *RBACHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	req, err := decodeValidBody[requestresponse.RoleRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	role, err := h.service.UpdateRole(r.Context(), roleFromRequest(req, id))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, role, "роль обновлена")
}

func (h *RBACHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil, "роль удалена")
}

func (h *RBACHandler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "userId")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	roles, err := h.service.GetUserRoles(r.Context(), id)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, roles, "")
}

func (h *RBACHandler) GetRoleUsers(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	users, err := h.service.GetRoleUsers(r.Context(), id)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, users, "")
}

func (h *RBACHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.UserRoleRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	if err := h.service.AssignRoleToUser(r.Context(), req.UserID, req.RoleID); err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil, "роль назначена")
}

func (h *RBACHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.UserRoleRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	if err := h.service.RemoveRoleFromUser(r.Context(), req.UserID, req.RoleID); err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil, "роль снята")
}

func (h *RBACHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	permissions, err := h.service.ListPermissions(r.Context(), r.URL.Query().Get("resource"), limit, offset)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, requestresponse.ListResponse{Items: permissions, Limit: limit, Offset: offset}, "")
}

func (h *RBACHandler) GetPermission(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	permission, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, permission, "")
}

func (h *RBACHandler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.PermissionRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	permission, err := h.service.CreatePermission(r.Context(), permissionFromRequest(req, ""))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusCreated, permission, "право создано")
}

func (h *RBACHandler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	req, err := decodeValidBody[requestresponse.PermissionRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	permission, err := h.service.UpdatePermission(r.Context(), permissionFromRequest(req, id))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, permission, "право обновлено")
}

func (h *RBACHandler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}
	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil, "право удалено")
}

func (h *RBACHandler) AssignPermission(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.RolePermissionRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	if err := h.service.AssignPermissionToRole(r.Context(), req.RoleID, req.PermissionID); err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil, "право назначено роли")
}

func (h *RBACHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.RolePermissionRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	if err := h.service.RemovePermissionFromRole(r.Context(), req.RoleID, req.PermissionID); err != nil {
		util.HandleError(w, r, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil, "право отозвано у роли")
}

// roleFromRequest : роль без isActive в запросе считается активной
func roleFromRequest(req requestresponse.RoleRequest, id string) *model.Role {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &model.Role{ID: id, Name: req.Name, Description: req.Description, IsActive: active}
}

func permissionFromRequest(req requestresponse.PermissionRequest, id string) *model.Permission {
	return &model.Permission{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Resource:    req.Resource,
		Action:      model.Action(req.Action),
	}
}
