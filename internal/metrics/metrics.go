// Package metrics : prometheus-метрики подсистемы аутентификации
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "booking"

type AuthMetrics struct {
	LoginAttempts    *prometheus.CounterVec
	AccountLockouts  prometheus.Counter
	RefreshRotations *prometheus.CounterVec
	TokenRevocations *prometheus.CounterVec
	AccessDenied     *prometheus.CounterVec
	PrunedRecords    *prometheus.CounterVec
}

// New регистрирует метрики в reg. Для тестов передается отдельный prometheus.NewRegistry().
func New(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Попытки входа по результату.",
		}, []string{"result"}),
		AccountLockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "account_lockouts_total",
			Help:      "Блокировки аккаунтов после серии неудачных входов.",
		}),
		RefreshRotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "refresh_rotations_total",
			Help:      "Обмены refresh-токенов по результату.",
		}, []string{"result"}),
		TokenRevocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_revocations_total",
			Help:      "Access-токены, добавленные в черный список, по причине.",
		}, []string{"reason"}),
		AccessDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rbac",
			Name:      "access_denied_total",
			Help:      "Отказы в доступе по ресурсу.",
		}, []string{"resource"}),
		PrunedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "maintenance",
			Name:      "pruned_records_total",
			Help:      "Удаленные просроченные записи по таблице.",
		}, []string{"table"}),
	}

	reg.MustRegister(
		m.LoginAttempts,
		m.AccountLockouts,
		m.RefreshRotations,
		m.TokenRevocations,
		m.AccessDenied,
		m.PrunedRecords,
	)
	return m
}

// NewNop : метрики без регистрации
func NewNop() *AuthMetrics {
	return New(prometheus.NewRegistry())
}
