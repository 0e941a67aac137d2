package repository_test

import (
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/repository"
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumnNames = []string{
	"id", "username", "email", "first_name", "last_name", "password_hash", "active", "status",
	"failed_login_attempts", "locked_until", "last_login", "password_changed_at", "created_at", "updated_at",
}

func userRow(id, email string, attempts int, lockedUntil *time.Time) []driver.Value {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	var locked driver.Value
	if lockedUntil != nil {
		locked = *lockedUntil
	}
	return []driver.Value{id, "alice", email, "Alice", "Smith", "$2a$hash", true, "active", attempts, locked, nil, nil, now, now}
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)

	user := &model.User{
		ID: "u1", Username: "alice", Email: "alice@example.com",
		PasswordHash: "$2a$hash", Active: true, Status: model.UserStatusActive,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "alice", "alice@example.com", "", "", "$2a$hash", true, model.UserStatusActive).
		WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow("u1", "alice@example.com", 0, nil)...))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs("u1", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.CreateUser(context.Background(), user, []string{"r1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.ID)
	assert.Equal(t, model.UserStatusActive, created.Status)
}

func TestUserRepository_CreateUser_Conflicts(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantCode   string
	}{
		{"email", "users_email_key", "EMAIL_DUPLICATED"},
		{"username", "users_username_key", "USERNAME_DUPLICATED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDatabase(t)
			repo := repository.NewUserRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})
			mock.ExpectRollback()

			_, err := repo.CreateUser(context.Background(), &model.User{ID: "u1"}, nil)
			require.Error(t, err)

			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.Conflict, appErr.Kind)
			assert.Equal(t, tt.wantCode, appErr.Code())
		})
	}
}

func TestUserRepository_CreateUser_UnknownRole(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow("u1", "alice@example.com", 0, nil)...))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	_, err := repo.CreateUser(context.Background(), &model.User{ID: "u1"}, []string{"missing"})
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)
	query := regexp.QuoteMeta("FROM users WHERE email = $1 AND status = 'active'")

	mock.ExpectQuery(query).WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow("u1", "alice@example.com", 2, nil)...))
	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, user.FailedLoginAttempts)
	assert.Nil(t, user.LockedUntil)

	mock.ExpectQuery(query).WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumnNames))
	_, err = repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	mock.ExpectQuery(query).WithArgs("err@example.com").WillReturnError(errors.New("connection reset"))
	_, err = repo.FindByEmail(context.Background(), "err@example.com")
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}

func TestUserRepository_FindByIDWithRoles(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userColumnNames).AddRow(userRow("u1", "alice@example.com", 0, nil)...))
	mock.ExpectQuery(regexp.QuoteMeta("INNER JOIN user_roles")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "is_active", "created_at", "updated_at"}).
			AddRow("r1", "admin", "", true, now, now))

	user, err := repo.FindByIDWithRoles(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, "admin", user.Roles[0].Name)
}

func TestUserRepository_RecordFailedLogin(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)
	lockUntil := time.Date(2026, 1, 10, 12, 15, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SET failed_login_attempts = failed_login_attempts + 1")).
		WithArgs("u1", 5, lockUntil).
		WillReturnRows(sqlmock.NewRows([]string{"failed_login_attempts", "locked_until"}).AddRow(5, lockUntil))

	attempts, lockedUntil, err := repo.RecordFailedLogin(context.Background(), "u1", 5, lockUntil)
	require.NoError(t, err)
	assert.Equal(t, 5, attempts)
	require.NotNil(t, lockedUntil)
	assert.True(t, lockedUntil.Equal(lockUntil))
}

func TestUserRepository_ResetLoginState(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("SET failed_login_attempts = 0, locked_until = NULL")).
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.ResetLoginState(context.Background(), "u1", now))
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WithArgs("u1", "new-hash", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), "u1", "new-hash", now)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestUserRepository_SoftDelete(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'deleted', active = FALSE")).
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SoftDelete(context.Background(), "u1", now))
}
