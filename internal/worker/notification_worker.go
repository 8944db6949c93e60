package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/service"
	"github.com/spec-kit/fieldops/internal/settings"
)

// NotificationWorker owns the notification handlers and the settings stores
// they read recipient preferences from.
type NotificationWorker struct {
	registry *settings.Registry
	logger   *zap.Logger
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService, registry *settings.Registry, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	logger.Info("notification worker started")
	return &NotificationWorker{registry: registry, logger: logger}
}

// Stop drains pending settings writes.
func (w *NotificationWorker) Stop() {
	if w == nil {
		return
	}
	if w.registry != nil {
		w.registry.Close()
	}
	w.logger.Info("notification worker stopped")
}
