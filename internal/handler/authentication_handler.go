package handler

import (
	"booking-server/config"
	"booking-server/internal/model"
	"booking-server/internal/model/requestresponse"
	"booking-server/internal/ports"
	"booking-server/internal/security"
	"booking-server/internal/util"
	"net/http"
	"strings"
)

type AuthenticationHandler struct {
	service ports.AuthenticationService
	csrf    config.CSRFConfig
}

func NewAuthenticationHandler(service ports.AuthenticationService, csrf config.CSRFConfig) *AuthenticationHandler {
	return &AuthenticationHandler{service: service, csrf: csrf}
}

// Register : POST /api/auth/register
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.RegisterRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	result, err := h.service.Register(r.Context(), model.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleIDs:   req.RoleIDs,
	}, clientInfo(r))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusCreated, authResponse(result), "пользователь зарегистрирован")
}

// Login : POST /api/auth/login
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeValidBody[requestresponse.LoginRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusOK, authResponse(result), "вход выполнен")
}

// Refresh : POST /api/auth/refresh. Пустой refreshToken отклоняется сервисом как REFRESH_TOKEN_INVALID.
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req, err := decodeOptionalBody[requestresponse.RefreshTokenRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), strings.TrimSpace(req.RefreshToken), clientInfo(r))
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusOK, requestresponse.TokensResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}, "")
}

// Logout всегда отвечает 200: и access-токен, и тело необязательны
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	req, _ := decodeOptionalBody[requestresponse.LogoutRequest](r)

	accessToken, err := security.BearerToken(r)
	if err != nil {
		accessToken = ""
	}

	h.service.Logout(r.Context(), accessToken, strings.TrimSpace(req.RefreshToken))
	sendSuccess(w, http.StatusOK, nil, "выход выполнен")
}

// LogoutAll : POST /api/auth/logout-all
func (h *AuthenticationHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, err := security.PrincipalFromContext(r.Context())
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	revoked, err := h.service.LogoutAll(r.Context(), principal.User.ID)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusOK, requestresponse.LogoutAllResponse{RevokedSessions: revoked}, "все сессии завершены")
}

// Me : GET /api/auth/me
func (h *AuthenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, err := security.PrincipalFromContext(r.Context())
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), principal.User.ID)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusOK, requestresponse.CurrentUserResponse{User: profile}, "")
}

// ChangePassword : PATCH /api/auth/change-password
func (h *AuthenticationHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, err := security.PrincipalFromContext(r.Context())
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	req, err := decodeValidBody[requestresponse.ChangePasswordRequest](r)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	err = h.service.ChangePassword(r.Context(), principal.User.ID, principal.AccessToken, req.CurrentPassword, req.NewPassword)
	if err != nil {
		util.HandleError(w, r, err)
		return
	}

	sendSuccess(w, http.StatusOK, nil, "пароль изменен, войдите заново на других устройствах")
}

// CSRFToken : GET /api/auth/csrf-token, отдает статический секрет для заголовка
func (h *AuthenticationHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, requestresponse.CSRFTokenResponse{CSRFToken: h.csrf.Secret}, "")
}

func authResponse(result *model.AuthResult) requestresponse.AuthResponse {
	return requestresponse.AuthResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
	}
}
