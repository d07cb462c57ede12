package worker

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/notify"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

type countingExecer struct{ n int }

func (c *countingExecer) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	c.n++
	return pgconn.CommandTag{}, nil
}

func TestStartNotificationWorker_WiresEverySubscriber(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher(logger)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sub := client.Subscribe(ctx, "tracker:events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	db := &countingExecer{}
	StartNotificationWorker(dispatcher, Subscribers{
		Notifications: service.NewNotificationService(dispatcher, logger),
		Publisher:     notify.NewRedisPublisher(client, "tracker:events", logger),
		Mirror:        persistence.NewArchiveMirror(db, logger),
	})

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:       "e1",
		Type:     events.EventRecordArchived,
		Kind:     domain.KindTicket,
		RecordID: "T1",
		Payload:  events.RecordArchivedPayload{Columns: map[string]string{"Ticket Number": "T1"}},
	}))

	assert.Equal(t, 1, db.n)
	assert.Equal(t, 1, logs.FilterMessage("RecordArchived").Len())
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"record_archived"`)
}

func TestStartNotificationWorker_NilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() { StartNotificationWorker(nil, Subscribers{}) })
}
