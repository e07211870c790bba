package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventActivationRequested, n.handleActivationRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventTicketIssued, n.handleTicketIssued)
	n.dispatcher.Subscribe(events.EventTicketRedeemed, n.handleTicketRedeemed)
}

func (n *NotificationService) handleActivationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ActivationRequestedPayload)
	if !ok {
		return errUnexpectedPayload
	}
	n.sendEmailNotificationStub(ctx, payload.Email, "Activate your account", event,
		zap.String("activation_code", payload.Code))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return errUnexpectedPayload
	}
	n.sendEmailNotificationStub(ctx, payload.Email, "Reset your password", event,
		zap.String("reset_code", payload.Code))
	return nil
}

func (n *NotificationService) handleTicketIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketIssued", zap.String("account_id", event.AccountID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketRedeemed(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketRedeemed", zap.String("account_id", event.AccountID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, to, subject string, event events.Event, fields ...zap.Field) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub", append([]zap.Field{
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("event_type", string(event.Type)),
	}, fields...)...)
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
