package ports

import (
	"booking-server/internal/model"
	"context"
	"time"
)

// UserRepository : хранилище учетных данных. Удаленные (status=deleted) пользователи не возвращаются.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User, roleIDs []string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDWithRoles(ctx context.Context, id string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error)
	ResetLoginState(ctx context.Context, id string, lastLogin time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}

type UserService interface {
	CreateUser(ctx context.Context, input model.NewUser) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}
