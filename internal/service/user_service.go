package service

import (
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type UserService struct {
	users       ports.UserRepository
	roles       ports.RoleRepository
	hasher      ports.PasswordHasher
	ledger      *RefreshLedger
	defaultRole string
	now         Clock
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	ledger *RefreshLedger,
	defaultRole string,
	now Clock,
) *UserService {
	return &UserService{
		users:       users,
		roles:       roles,
		hasher:      hasher,
		ledger:      ledger,
		defaultRole: defaultRole,
		now:         now,
	}
}

// CreateUser : создает активного пользователя. Без явных ролей назначается роль по умолчанию.
func (s *UserService) CreateUser(ctx context.Context, input model.NewUser) (*model.User, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" {
		return nil, apperror.New(apperror.Validation, "email и имя пользователя обязательны")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.WithCode(apperror.Conflict, "EMAIL_DUPLICATED", "email уже зарегистрирован")
	}

	exists, err = s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.WithCode(apperror.Conflict, "USERNAME_DUPLICATED", "имя пользователя уже занято")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	roleIDs, err := s.resolveRoles(ctx, input.RoleIDs)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		Active:       true,
		Status:       model.UserStatusActive,
	}

	return s.users.CreateUser(ctx, user, roleIDs)
}

// DeleteUser : мягкое удаление и отзыв всех refresh-токенов пользователя
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}

	if _, err := s.ledger.RevokeAllForUser(ctx, id); err != nil {
		slog.ErrorContext(ctx, "не удалось отозвать токены удаленного пользователя",
			slog.String("user_id", id), slog.Any("error", err))
	}
	return nil
}

func (s *UserService) resolveRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) > 0 || s.defaultRole == "" {
		return roleIDs, nil
	}

	role, err := s.roles.FindByName(ctx, s.defaultRole)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			slog.WarnContext(ctx, "роль по умолчанию не найдена", slog.String("role", s.defaultRole))
			return nil, nil
		}
		return nil, err
	}
	return []string{role.ID}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return apperror.New(apperror.Validation, "пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return apperror.New(apperror.Validation, "пароль должен содержать буквы в разных регистрах")
	}
	if digitCount < 1 {
		return apperror.New(apperror.Validation, "пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return apperror.New(apperror.Validation, "пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}
