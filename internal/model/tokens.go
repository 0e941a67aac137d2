package model

import "time"

type RevocationReason string

const (
	ReasonLogout         RevocationReason = "LOGOUT"
	ReasonPasswordChange RevocationReason = "PASSWORD_CHANGE"
	ReasonSecurityBreach RevocationReason = "SECURITY_BREACH"
	ReasonAdminRevoke    RevocationReason = "ADMIN_REVOKE"
)

// IssuedAccessToken : подписанный access-токен и его метаданные
type IssuedAccessToken struct {
	Token     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshToken : одноразовый refresh-токен, привязанный к jti access-токена
type RefreshToken struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	Token          string     `db:"token"`
	AccessTokenJTI string     `db:"access_token_jti"`
	ExpiresAt      time.Time  `db:"expires_at"`
	Revoked        bool       `db:"revoked"`
	RevokedAt      *time.Time `db:"revoked_at"`
	IPAddress      string     `db:"ip_address"`
	UserAgent      string     `db:"user_agent"`
	CreatedAt      time.Time  `db:"created_at"`
}

// RevokedToken : запись черного списка access-токенов
type RevokedToken struct {
	ID        string           `db:"id"`
	TokenJTI  string           `db:"token_jti"`
	UserID    string           `db:"user_id"`
	ExpiresAt time.Time        `db:"expires_at"`
	Reason    RevocationReason `db:"reason"`
	CreatedAt time.Time        `db:"created_at"`
}

// ClientInfo : данные клиента, сохраняются только для аудита
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type TokensPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type AuthResult struct {
	User *SanitizedUser `json:"user"`
	TokensPair
}
