package worker

import (
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/notify"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// Subscribers are the lifecycle event consumers. Nil entries are skipped.
type Subscribers struct {
	Notifications *service.NotificationService
	Publisher     *notify.RedisPublisher
	Mirror        *persistence.ArchiveMirror
}

// StartNotificationWorker registers every subscriber on dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, subs Subscribers) {
	if dispatcher == nil {
		return
	}
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	if subs.Publisher != nil {
		subs.Publisher.Register(dispatcher)
	}
	if subs.Mirror != nil {
		subs.Mirror.Register(dispatcher)
	}
}
