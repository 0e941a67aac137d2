package service

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/metrics"
	"booking-server/internal/model"
	"booking-server/internal/ports"
	"context"
	"math"
	"time"
)

// Clock : источник текущего времени, подменяется в тестах
type Clock func() time.Time

// LockoutPolicy блокирует аккаунт после MaxAttempts неудачных входов подряд на Window.
// Истекшая блокировка не снимается явно, она просто перестает действовать.
type LockoutPolicy struct {
	users       ports.UserRepository
	maxAttempts int
	window      time.Duration
	metrics     *metrics.AuthMetrics
	now         Clock
}

func NewLockoutPolicy(users ports.UserRepository, cfg config.LockoutConfig, m *metrics.AuthMetrics, now Clock) *LockoutPolicy {
	return &LockoutPolicy{
		users:       users,
		maxAttempts: cfg.MaxAttempts,
		window:      cfg.Window,
		metrics:     m,
		now:         now,
	}
}

// Check : AccountLocked с оставшимися минутами, если блокировка еще действует
func (p *LockoutPolicy) Check(user *model.User) error {
	now := p.now()
	if !user.IsLocked(now) {
		return nil
	}

	return apperror.Newf(apperror.AccountLocked,
		"аккаунт временно заблокирован, попробуйте через %d мин.", ceilMinutes(user.LockedUntil.Sub(now)))
}

// RecordFailure фиксирует неудачный вход и возвращает ошибку для клиента:
// InvalidCredentials с числом оставшихся попыток или AccountLocked, если порог достигнут.
func (p *LockoutPolicy) RecordFailure(ctx context.Context, user *model.User) error {
	now := p.now()
	attempts, lockedUntil, err := p.users.RecordFailedLogin(ctx, user.ID, p.maxAttempts, now.Add(p.window))
	if err != nil {
		return err
	}

	user.FailedLoginAttempts = attempts
	user.LockedUntil = lockedUntil

	if attempts >= p.maxAttempts {
		p.metrics.AccountLockouts.Inc()
		return apperror.Newf(apperror.AccountLocked,
			"слишком много неудачных попыток, аккаунт заблокирован на %d мин.", ceilMinutes(p.window))
	}

	return apperror.Newf(apperror.InvalidCredentials,
		"неверный email или пароль, осталось попыток: %d", p.Remaining(attempts))
}

// RecordSuccess : сброс счетчика и блокировки, отметка времени входа
func (p *LockoutPolicy) RecordSuccess(ctx context.Context, user *model.User) error {
	now := p.now()
	if err := p.users.ResetLoginState(ctx, user.ID, now); err != nil {
		return err
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now
	return nil
}

func (p *LockoutPolicy) Remaining(attempts int) int {
	if remaining := p.maxAttempts - attempts; remaining > 0 {
		return remaining
	}
	return 0
}

func ceilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
