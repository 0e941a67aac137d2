package service

import (
	"booking-server/internal/apperror"
	"booking-server/internal/metrics"
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"booking-server/internal/security"
	"context"
	"log/slog"
	"time"
)

// dummyPassword хэшируется при старте, чтобы вход с несуществующим email
// занимал столько же времени, сколько вход с неверным паролем
const dummyPassword = "dummy-password-for-timing"

type AuthenticationService struct {
	users       ports.UserRepository
	userService *UserService
	codec       ports.TokenCodec
	hasher      ports.PasswordHasher
	ledger      *RefreshLedger
	revocations *RevocationList
	lockout     *LockoutPolicy
	metrics     *metrics.AuthMetrics
	now         Clock
	dummyHash   string
}

func NewAuthenticationService(
	users ports.UserRepository,
	userService *UserService,
	codec ports.TokenCodec,
	hasher ports.PasswordHasher,
	ledger *RefreshLedger,
	revocations *RevocationList,
	lockout *LockoutPolicy,
	m *metrics.AuthMetrics,
	now Clock,
) *AuthenticationService {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		slog.Warn("не удалось подготовить фиктивный хэш пароля", slog.Any("error", err))
	}

	return &AuthenticationService{
		users:       users,
		userService: userService,
		codec:       codec,
		hasher:      hasher,
		ledger:      ledger,
		revocations: revocations,
		lockout:     lockout,
		metrics:     m,
		now:         now,
		dummyHash:   dummyHash,
	}
}

// Register : создает пользователя и сразу выдает пару токенов
func (s *AuthenticationService) Register(ctx context.Context, input model.NewUser, client model.ClientInfo) (*model.AuthResult, error) {
	user, err := s.userService.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.AuthResult{User: profile, TokensPair: *tokens}, nil
}

// Login проверяет учетные данные с учетом блокировки аккаунта.
// Для отсутствующего и неактивного пользователя ответ не отличается от неверного пароля.
func (s *AuthenticationService) Login(ctx context.Context, email, password string, client model.ClientInfo) (*model.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !apperror.Is(err, apperror.NotFound) {
		return nil, err
	}
	if user == nil || !user.IsUsable() {
		s.hasher.Compare(s.dummyHash, password)
		s.metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, invalidCredentials()
	}

	if err := s.lockout.Check(user); err != nil {
		s.metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		err := s.lockout.RecordFailure(ctx, user)
		s.metrics.LoginAttempts.WithLabelValues(loginResult(err)).Inc()
		return nil, err
	}

	if err := s.lockout.RecordSuccess(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &model.AuthResult{User: profile, TokensPair: *tokens}, nil
}

// Refresh обменивает refresh-токен на новую пару.
// Старый access-токен не отзывается и действует до своего истечения.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (*model.TokensPair, error) {
	record, err := s.ledger.Rotate(ctx, refreshToken)
	if err != nil {
		s.metrics.RefreshRotations.WithLabelValues(apperror.KindOf(err).Code()).Inc()
		return nil, err
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return nil, apperror.New(apperror.UserInactive, "пользователь неактивен")
		}
		return nil, err
	}
	if !user.IsUsable() {
		return nil, apperror.New(apperror.UserInactive, "пользователь неактивен")
	}

	tokens, err := s.issueTokens(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.metrics.RefreshRotations.WithLabelValues("success").Inc()
	return tokens, nil
}

// Logout всегда завершается успешно: ошибки только логируются.
// Access-токен разбирается без проверки подписи, чтобы отозвать и уже просроченный токен.
func (s *AuthenticationService) Logout(ctx context.Context, accessToken, refreshToken string) {
	if accessToken != "" {
		s.revokeAccessToken(ctx, accessToken, model.ReasonLogout)
	}

	if err := s.ledger.Revoke(ctx, refreshToken); err != nil {
		slog.ErrorContext(ctx, "не удалось отозвать refresh-токен при выходе", slog.Any("error", err))
	}
}

// LogoutAll отзывает все refresh-токены пользователя.
// Уже выданные access-токены остаются действительными до истечения.
func (s *AuthenticationService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return s.ledger.RevokeAllForUser(ctx, userID)
}

// ChangePassword : после смены пароля все токены, выданные раньше, перестают приниматься
func (s *AuthenticationService) ChangePassword(ctx context.Context, userID, accessToken, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(user.PasswordHash, currentPassword) {
		return apperror.New(apperror.Unauthorized, "текущий пароль неверен")
	}
	if currentPassword == newPassword {
		return apperror.New(apperror.Validation, "новый пароль должен отличаться от текущего")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		return err
	}

	if accessToken != "" {
		s.revokeAccessToken(ctx, accessToken, model.ReasonPasswordChange)
	}
	if _, err := s.ledger.RevokeAllForUser(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "не удалось отозвать refresh-токены после смены пароля",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}
	return nil
}

// GetUserFromToken : полная проверка access-токена, используется middleware аутентификации
func (s *AuthenticationService) GetUserFromToken(ctx context.Context, token string) (*model.User, *security.Claims, error) {
	claims, err := s.codec.VerifyAccessToken(token)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, apperror.New(apperror.TokenBlacklisted, "токен отозван")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return nil, nil, apperror.New(apperror.TokenInvalid, "пользователь токена не найден")
		}
		return nil, nil, err
	}
	if !user.IsUsable() {
		return nil, nil, apperror.New(apperror.UserInactive, "пользователь неактивен")
	}

	// iat хранится с точностью до секунды
	if user.PasswordChangedAt != nil {
		changedAt := user.PasswordChangedAt.Truncate(time.Second)
		if claims.IssuedAt == nil || changedAt.After(claims.IssuedAt.Time) {
			return nil, nil, apperror.New(apperror.TokenInvalid, "пароль был изменен, войдите заново")
		}
	}

	return user, claims, nil
}

// GetProfile : пользователь вместе с ролями, без хеша пароля
func (s *AuthenticationService) GetProfile(ctx context.Context, userID string) (*model.SanitizedUser, error) {
	user, err := s.users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

func (s *AuthenticationService) issueTokens(ctx context.Context, user *model.User, client model.ClientInfo) (*model.TokensPair, error) {
	access, err := s.codec.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.ledger.Issue(ctx, user.ID, access.JTI, client)
	if err != nil {
		return nil, err
	}

	return &model.TokensPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

func (s *AuthenticationService) revokeAccessToken(ctx context.Context, accessToken string, reason model.RevocationReason) {
	claims, err := s.codec.DecodeAccessToken(accessToken)
	if err != nil {
		slog.WarnContext(ctx, "не удалось разобрать access-токен для отзыва", slog.Any("error", err))
		return
	}
	if claims.ExpiresAt == nil {
		return
	}

	if err := s.revocations.Revoke(ctx, claims.JTI(), claims.UserID, claims.ExpiresAt.Time, reason); err != nil {
		slog.ErrorContext(ctx, "не удалось добавить токен в черный список",
			slog.String("jti", claims.JTI()), slog.Any("error", err))
		return
	}
	s.metrics.TokenRevocations.WithLabelValues(string(reason)).Inc()
}

func invalidCredentials() error {
	return apperror.New(apperror.InvalidCredentials, "неверный email или пароль")
}

func loginResult(err error) string {
	if apperror.Is(err, apperror.AccountLocked) {
		return "locked"
	}
	return "invalid_credentials"
}
