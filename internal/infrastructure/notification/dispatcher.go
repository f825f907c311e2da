package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
	"github.com/accordfamily/accord-backend/pkg/config"
)

// Dispatcher delivers notifications to users. Delivery failures are logged
// and swallowed so that the triggering operation never fails on them.
type Dispatcher struct {
	repo    repositories.NotificationRepository
	logger  *zap.Logger
	enabled bool
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(cfg *config.NotificationConfig, repo repositories.NotificationRepository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, logger: logger, enabled: cfg.Enabled}
}

// Dispatch records a notification for the recipient
func (d *Dispatcher) Dispatch(ctx context.Context, n *entities.Notification) {
	if !d.enabled {
		d.logger.Debug("notification delivery disabled, dropping",
			zap.String("recipient", n.RecipientEmail),
			zap.String("type", string(n.Type)))
		return
	}

	if err := d.repo.Create(ctx, n); err != nil {
		d.logger.Warn("failed to deliver notification",
			zap.String("recipient", n.RecipientEmail),
			zap.String("type", string(n.Type)),
			zap.Error(err))
		return
	}

	d.logger.Info("notification dispatched",
		zap.String("recipient", n.RecipientEmail),
		zap.String("type", string(n.Type)))
}
