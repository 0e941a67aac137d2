package service

import (
	"booking-server/config"
	"booking-server/internal/metrics"
	"context"
	"log/slog"
	"time"
)

// Pruner периодически удаляет истекшие refresh-токены и записи черного списка.
// Refresh-токены хранятся еще RefreshRetention после истечения.
type Pruner struct {
	ledger      *RefreshLedger
	revocations *RevocationList
	interval    time.Duration
	retention   time.Duration
	metrics     *metrics.AuthMetrics
	now         Clock
}

func NewPruner(ledger *RefreshLedger, revocations *RevocationList, cfg config.MaintenanceConfig, m *metrics.AuthMetrics, now Clock) *Pruner {
	return &Pruner{
		ledger:      ledger,
		revocations: revocations,
		interval:    cfg.PruneInterval,
		retention:   cfg.RefreshRetention,
		metrics:     m,
		now:         now,
	}
}

// Run : блокируется до отмены ctx
func (p *Pruner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("запущена очистка просроченных токенов", slog.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("очистка просроченных токенов остановлена")
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				slog.Error("ошибка очистки просроченных токенов", slog.Any("error", err))
			}
		}
	}
}

func (p *Pruner) RunOnce(ctx context.Context) error {
	refreshDeleted, err := p.ledger.Prune(ctx, p.now().Add(-p.retention))
	if err != nil {
		return err
	}
	p.metrics.PrunedRecords.WithLabelValues("refresh_tokens").Add(float64(refreshDeleted))

	blacklistDeleted, err := p.revocations.Prune(ctx)
	if err != nil {
		return err
	}
	p.metrics.PrunedRecords.WithLabelValues("token_blacklist").Add(float64(blacklistDeleted))

	slog.Info("очистка просроченных токенов завершена",
		slog.Int64("refresh_tokens", refreshDeleted), slog.Int64("token_blacklist", blacklistDeleted))
	return nil
}
