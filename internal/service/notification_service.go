package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/events"
)

// NotificationService writes lifecycle events to the structured log.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRecordAdded, n.handleRecordAdded)
	n.dispatcher.Subscribe(events.EventRecordStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventRecordArchived, n.handleRecordArchived)
	n.dispatcher.Subscribe(events.EventRecordRemoved, n.handleRecordRemoved)
}

func (n *NotificationService) handleRecordAdded(ctx context.Context, event events.Event) error {
	n.logger.Debug("RecordAdded", eventFields(event)...)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Debug("RecordStatusChanged", eventFields(event)...)
	return nil
}

func (n *NotificationService) handleRecordArchived(ctx context.Context, event events.Event) error {
	n.logger.Info("RecordArchived", eventFields(event)...)
	return nil
}

func (n *NotificationService) handleRecordRemoved(ctx context.Context, event events.Event) error {
	n.logger.Info("RecordRemoved", eventFields(event)...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.String("record_id", event.RecordID),
		zap.Any("payload", event.Payload),
	}
}
