package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/config"
	"github.com/nexis/campus-services/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
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
	n.dispatcher.Subscribe(events.EventStudentRegistered, n.handleEvent)
	n.dispatcher.Subscribe(events.EventStudentEnrolled, n.handleEvent)
	n.dispatcher.Subscribe(events.EventStudentRemoved, n.handleEvent)
	n.dispatcher.Subscribe(events.EventInvoiceCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventPaymentRecorded, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("notification",
		zap.String("event", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.Any("payload", event.Payload),
	)
	n.sendWebhookNotification(ctx, event)
	return nil
}

// sendWebhookNotification posts the event to the configured webhook, if any.
// Delivery is best-effort; failures are logged and dropped.
func (n *NotificationService) sendWebhookNotification(ctx context.Context, event events.Event) {
	if n.cfg.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("marshal webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		n.logger.Warn("deliver webhook", zap.Error(err))
		return
	}
	_ = resp.Body.Close()
}
