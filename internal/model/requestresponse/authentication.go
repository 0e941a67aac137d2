package requestresponse

import (
	"booking-server/internal/model"
	"time"
)

// RegisterRequest : тело запроса на регистрацию
type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email     string   `json:"email" validate:"required,email,max=255"`
	Password  string   `json:"password" validate:"required,min=8,max=128"`
	FirstName string   `json:"firstName" validate:"omitempty,max=100"`
	LastName  string   `json:"lastName" validate:"omitempty,max=100"`
	RoleIDs   []string `json:"roleIds" validate:"omitempty,dive,uuid"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest : смена пароля текущего пользователя
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// AuthResponse : пользователь и выданная пара токенов
type AuthResponse struct {
	User         *model.SanitizedUser `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	ExpiresAt    time.Time            `json:"expiresAt"`
}

type TokensResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type CurrentUserResponse struct {
	User *model.SanitizedUser `json:"user"`
}

// LogoutAllResponse : количество завершенных сессий
type LogoutAllResponse struct {
	RevokedSessions int64 `json:"revokedSessions"`
}

type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}
