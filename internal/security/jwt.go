package security

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/util"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jtiBytes : длина случайного идентификатора access-токена
const jtiBytes = 16

type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JTI : уникальный идентификатор токена
func (c *Claims) JTI() string {
	return c.ID
}

type JWTService struct {
	cfg *config.JWTConfig
	now func() time.Time
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg: cfg, now: time.Now}
}

// WithClock : подмена часов для тестов
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// IssueAccessToken : подписывает новый access-токен со свежим jti.
// Время истечения берется из подписанного claim, а не вычисляется повторно.
func (s *JWTService) IssueAccessToken(user *model.User) (*model.IssuedAccessToken, error) {
	jti, err := util.RandomHex(jtiBytes)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "ошибка генерации jti", err)
	}

	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "ошибка подписи токена", err)
	}

	return &model.IssuedAccessToken{
		Token:     signed,
		JTI:       jti,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyAccessToken : проверяет подпись, алгоритм и срок действия.
// Черный список здесь не проверяется.
func (s *JWTService) VerifyAccessToken(token string) (*Claims, error) {
	if token == "" {
		return nil, apperror.New(apperror.TokenMissing, "токен доступа не передан")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Wrap(apperror.TokenExpired, "срок действия токена истек", err)
		}
		return nil, apperror.Wrap(apperror.TokenInvalid, "невалидный токен", err)
	}

	if !parsed.Valid || claims.ID == "" || claims.UserID == "" {
		return nil, apperror.New(apperror.TokenInvalid, "невалидный токен")
	}

	return claims, nil
}

// DecodeAccessToken : разбирает токен без проверки подписи и срока.
// Используется только при logout, чтобы достать jti и exp.
func (s *JWTService) DecodeAccessToken(token string) (*Claims, error) {
	if token == "" {
		return nil, apperror.New(apperror.TokenMissing, "токен доступа не передан")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, apperror.Wrap(apperror.TokenInvalid, "не удалось разобрать токен", err)
	}
	if claims.ID == "" {
		return nil, apperror.New(apperror.TokenInvalid, "в токене нет jti")
	}

	return claims, nil
}
