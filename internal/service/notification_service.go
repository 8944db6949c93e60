package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/config"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/events"
	"github.com/spec-kit/fieldops/internal/settings"
)

// Channel names a notification delivery channel.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// NotificationService turns domain events into notifications, delivered on
// the channels each recipient enabled in their settings.
type NotificationService struct {
	dispatcher events.Dispatcher
	registry   *settings.Registry
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, registry *settings.Registry, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		registry:   registry,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLeadCreated, n.handleLeadCreated)
	n.dispatcher.Subscribe(events.EventLeadStatusChanged, n.handleLeadStatusChanged)
	n.dispatcher.Subscribe(events.EventLeadConverted, n.handleLeadConverted)
	n.dispatcher.Subscribe(events.EventIdentityCreated, n.handleIdentityCreated)
}

func (n *NotificationService) handleLeadCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("LeadCreated", zap.String("lead_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleLeadStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LeadStatusChangedPayload)
	if !ok {
		return nil
	}
	if payload.CreatedBy != event.Actor.IdentityID {
		n.notify(ctx, payload.CreatedBy, event)
	}
	return nil
}

func (n *NotificationService) handleLeadConverted(ctx context.Context, event events.Event) error {
	n.logger.Info("LeadConverted", zap.String("lead_id", event.SubjectID), zap.Any("payload", event.Payload))
	if payload, ok := event.Payload.(events.LeadConvertedPayload); ok && payload.CreatedBy != event.Actor.IdentityID {
		n.notify(ctx, payload.CreatedBy, event)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleIdentityCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("IdentityCreated", zap.String("identity_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.notify(ctx, event.SubjectID, event)
	return nil
}

// Channels returns the channels enabled in recipient's settings.
func (n *NotificationService) Channels(ctx context.Context, recipient string) []Channel {
	prefs := domain.DefaultNotificationSettings()
	if n.registry != nil {
		store, err := n.registry.For(ctx, recipient)
		if err != nil {
			n.logger.Warn("recipient settings unavailable; using defaults", zap.String("recipient", recipient), zap.Error(err))
		} else {
			prefs = store.Snapshot()
		}
	}
	var channels []Channel
	if prefs.PushNotifications {
		channels = append(channels, ChannelPush)
	}
	if prefs.EmailAlerts {
		channels = append(channels, ChannelEmail)
	}
	if prefs.SMSAlerts {
		channels = append(channels, ChannelSMS)
	}
	return channels
}

func (n *NotificationService) notify(ctx context.Context, recipient string, event events.Event) {
	if recipient == "" {
		return
	}
	for _, channel := range n.Channels(ctx, recipient) {
		switch channel {
		case ChannelPush:
			n.sendPushNotificationStub(ctx, recipient, event)
		case ChannelEmail:
			n.sendEmailNotificationStub(ctx, recipient, event)
		case ChannelSMS:
			n.sendSMSNotificationStub(ctx, recipient, event)
		}
	}
}

func (n *NotificationService) sendPushNotificationStub(ctx context.Context, recipient string, event events.Event) {
	if strings.TrimSpace(n.cfg.PushTopic) == "" {
		return
	}
	n.logger.Debug("sendPushNotificationStub",
		zap.String("topic", n.cfg.PushTopic),
		zap.String("recipient", recipient),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, recipient string, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient", recipient),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendSMSNotificationStub(ctx context.Context, recipient string, event events.Event) {
	if strings.TrimSpace(n.cfg.SMSSender) == "" {
		return
	}
	n.logger.Debug("sendSMSNotificationStub",
		zap.String("sender", n.cfg.SMSSender),
		zap.String("recipient", recipient),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
