package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/events"
)

// AuditService records account events and stands in for the confirmation mailer.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventAccountRegistered,
		events.EventEmailConfirmed,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventPasswordChanged,
		events.EventRoleAssigned,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
	a.dispatcher.Subscribe(events.EventEmailConfirmationRequested, a.handleConfirmationRequested)
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("account_id", event.AccountID),
		zap.String("username", event.Username),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	return nil
}

func (a *AuditService) handleConfirmationRequested(ctx context.Context, event events.Event) error {
	if err := a.record(ctx, event); err != nil {
		return err
	}
	payload, ok := event.Payload.(events.EmailConfirmationRequestedPayload)
	if !ok {
		return nil
	}
	a.sendConfirmationEmailStub(event, payload)
	return nil
}

// ConfirmationLink builds the link a confirmation email would carry.
func (a *AuditService) ConfirmationLink(accountID, token string) string {
	query := url.Values{}
	query.Set("userId", accountID)
	query.Set("token", token)
	return strings.TrimRight(a.cfg.PublicBaseURL, "/") + "/api/auth/confirm-email?" + query.Encode()
}

func (a *AuditService) sendConfirmationEmailStub(event events.Event, payload events.EmailConfirmationRequestedPayload) {
	if strings.TrimSpace(a.cfg.EmailFrom) == "" {
		return
	}
	a.logger.Debug("sendConfirmationEmailStub",
		zap.String("from", a.cfg.EmailFrom),
		zap.String("to", payload.Email),
		zap.String("link", a.ConfirmationLink(event.AccountID, payload.Token)),
		zap.Time("expires_at", payload.ExpiresAt),
	)
}
