package ports

import (
	"booking-server/internal/model"
	"booking-server/internal/security"
	"context"
	"time"
)

type RefreshTokenRepository interface {
	Save(ctx context.Context, token *model.RefreshToken) error
	// RevokeIfActive атомарно помечает токен отозванным. Возвращает nil, nil если токен
	// не найден, уже отозван или просрочен.
	RevokeIfActive(ctx context.Context, token string, now time.Time) (*model.RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, token string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID string, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type BlacklistRepository interface {
	Add(ctx context.Context, entry *model.RevokedToken) error
	Exists(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// RevocationCache : быстрый слой черного списка поверх БД
type RevocationCache interface {
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenCodec interface {
	IssueAccessToken(user *model.User) (*model.IssuedAccessToken, error)
	VerifyAccessToken(token string) (*security.Claims, error)
	DecodeAccessToken(token string) (*security.Claims, error)
}

type AuthenticationService interface {
	Register(ctx context.Context, input model.NewUser, client model.ClientInfo) (*model.AuthResult, error)
	Login(ctx context.Context, email, password string, client model.ClientInfo) (*model.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string)
	LogoutAll(ctx context.Context, userID string) (int64, error)
	ChangePassword(ctx context.Context, userID, accessToken, currentPassword, newPassword string) error
	GetProfile(ctx context.Context, userID string) (*model.SanitizedUser, error)
}
