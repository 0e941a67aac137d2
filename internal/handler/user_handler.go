package handler

import (
	"booking-server/internal/ports"
	"booking-server/internal/util"
	"net/http"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// DeleteUser : DELETE /api/users/{id}, мягкое удаление с отзывом refresh-токенов
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusOK, nil, "пользователь удален")
}
