package model

import "time"

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusDeleted UserStatus = "deleted"
)

type User struct {
	ID                  string     `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	Email               string     `db:"email" json:"email"`
	FirstName           string     `db:"first_name" json:"firstName"`
	LastName            string     `db:"last_name" json:"lastName"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Active              bool       `db:"active" json:"active"`
	Status              UserStatus `db:"status" json:"status"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	LastLogin           *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	PasswordChangedAt   *time.Time `db:"password_changed_at" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`

	Roles []Role `db:"-" json:"roles,omitempty"`
}

// IsUsable : пользователь активен и не удален
func (u *User) IsUsable() bool {
	return u.Active && u.Status == UserStatusActive
}

// IsLocked : блокировка снимается лениво, по истечении LockedUntil
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// SanitizedUser : публичное представление пользователя без хэша и служебных полей
type SanitizedUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Active    bool       `json:"active"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Roles     []string   `json:"roles,omitempty"`
}

func (u *User) Sanitize() *SanitizedUser {
	sanitized := &SanitizedUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
	for _, role := range u.Roles {
		sanitized.Roles = append(sanitized.Roles, role.Name)
	}
	return sanitized
}

// NewUser : данные для создания пользователя
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleIDs   []string
}
