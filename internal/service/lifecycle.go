package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// KindSpec describes how records of one kind move from the active store into
// the archive. A is the active record type, R the archived one.
type KindSpec[A, R any] struct {
	Kind    domain.Kind
	Active  *repository.Table[A]
	Archive *repository.Table[R]

	Status      func(A) domain.Status
	WithStatus  func(A, domain.Status) A
	LogDate     func(A) domain.Timestamp
	WithLogDate func(A, domain.Timestamp) A
	// ToArchived builds the archived variant. It fails with MISSING_CLASSIFICATION
	// when the kind needs a classification that was not supplied.
	ToArchived func(A, domain.Timestamp, Classification) (R, error)
}

// Classification is the operator input attached to a record when it is archived.
type Classification struct {
	Team domain.Team
}

// StatusUpdate requests a status change for the record at a 1-based position
// in the active list.
type StatusUpdate struct {
	Selector string
	Status   domain.Status
	Classification
	// ExpectedID, when set, must equal the identifier of the record found at
	// Selector. It guards against the list shifting between display and update.
	ExpectedID string
}

// UpdateOutcome reports the result of a status update.
type UpdateOutcome[A, R any] struct {
	Position int
	Record   A
	// Archived is set when the record was relocated into the archive.
	Archived *R
}

// LifecycleDependencies bundles collaborators shared by every kind.
type LifecycleDependencies struct {
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Lifecycle runs add, list, status update and removal for one record kind.
// Every operation rewrites whole files, so mu serializes them per kind.
type Lifecycle[A, R any] struct {
	mu         sync.Mutex
	spec       KindSpec[A, R]
	clock      clock.Clock
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewLifecycle constructs the engine for one kind.
func NewLifecycle[A, R any](spec KindSpec[A, R], deps LifecycleDependencies) (*Lifecycle[A, R], error) {
	if spec.Active == nil || spec.Archive == nil {
		return nil, errors.New("active and archive tables are required")
	}
	if spec.Status == nil || spec.WithStatus == nil || spec.LogDate == nil || spec.WithLogDate == nil || spec.ToArchived == nil {
		return nil, errors.New("kind spec is incomplete")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Lifecycle[A, R]{
		spec:       spec,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With(zap.String("kind", string(spec.Kind))),
	}, nil
}

// Kind returns the record kind handled by this engine.
func (l *Lifecycle[A, R]) Kind() domain.Kind {
	return l.spec.Kind
}

// Init creates or repairs both store files.
func (l *Lifecycle[A, R]) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.spec.Active.EnsureSchema(); err != nil {
		return apperrors.NewIOFailure("prepare "+l.spec.Active.Path(), err)
	}
	if err := l.spec.Archive.EnsureSchema(); err != nil {
		return apperrors.NewIOFailure("prepare "+l.spec.Archive.Path(), err)
	}
	return nil
}

// Add appends rec to the active store with its log date set to now.
// Identifiers are not checked for uniqueness.
func (l *Lifecycle[A, R]) Add(ctx context.Context, rec A) (A, error) {
	status := l.spec.Status(rec)
	if !status.IsKnown() {
		var zero A
		return zero, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec = l.spec.WithLogDate(rec, domain.NewTimestamp(l.clock.Now()))
	if err := l.spec.Active.Append(rec); err != nil {
		var zero A
		return zero, apperrors.NewIOFailure("add "+string(l.spec.Kind), err)
	}

	id := l.id(rec)
	l.metrics.RecordLifecycle(string(l.spec.Kind), observability.OpAdded)
	l.logger.Info("record added", zap.String("id", id), zap.String("status", string(status)))
	l.publish(ctx, events.EventRecordAdded, id, events.RecordAddedPayload{
		Status:  status,
		LogDate: l.spec.LogDate(rec),
	})
	return rec, nil
}

// ListActive returns the active records in file order.
func (l *Lifecycle[A, R]) ListActive(ctx context.Context) ([]A, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listActive()
}

func (l *Lifecycle[A, R]) listActive() ([]A, error) {
	items, err := l.spec.Active.List()
	if err != nil {
		return nil, apperrors.NewIOFailure("list "+string(l.spec.Kind)+"s", err)
	}
	return items, nil
}

// ListArchive returns the archived records in file order.
func (l *Lifecycle[A, R]) ListArchive(ctx context.Context) ([]R, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.spec.Archive.List()
	if err != nil {
		return nil, apperrors.NewIOFailure("list archived "+string(l.spec.Kind)+"s", err)
	}
	return items, nil
}

// UpdateStatus sets the status of the record at upd.Selector. A Done status
// relocates the record: the archived variant is appended to the archive first
// and the record is then removed from the active store, so an interruption
// between the two writes leaves a duplicate rather than a lost record.
//
// Every validation runs before the first write; on any non-I/O error neither
// store is touched.
func (l *Lifecycle[A, R]) UpdateStatus(ctx context.Context, upd StatusUpdate) (*UpdateOutcome[A, R], error) {
	position, err := strconv.Atoi(strings.TrimSpace(upd.Selector))
	if err != nil {
		return nil, apperrors.NewNotANumber(upd.Selector)
	}
	if !upd.Status.IsKnown() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": upd.Status})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.listActive()
	if err != nil {
		return nil, err
	}
	if position < 1 || position > len(items) {
		return nil, apperrors.NewSelectionOutOfRange(position, len(items))
	}
	current := items[position-1]
	if upd.ExpectedID != "" && l.id(current) != upd.ExpectedID {
		return nil, apperrors.NewStaleSelection(upd.ExpectedID, l.id(current))
	}

	updated := l.spec.WithStatus(current, upd.Status)
	outcome := &UpdateOutcome[A, R]{Position: position, Record: updated}

	var archived R
	if upd.Status.IsTerminal() {
		archived, err = l.spec.ToArchived(updated, domain.NewTimestamp(l.clock.Now()), upd.Classification)
		if err != nil {
			return nil, err
		}
	}

	oldStatus := l.spec.Status(current)
	items[position-1] = updated
	if err := l.spec.Active.Replace(items); err != nil {
		return nil, apperrors.NewIOFailure("update "+string(l.spec.Kind), err)
	}
	l.metrics.RecordLifecycle(string(l.spec.Kind), observability.OpStatusChanged)
	l.publish(ctx, events.EventRecordStatusChanged, l.id(updated), events.RecordStatusChangedPayload{
		Position:  position,
		OldStatus: oldStatus,
		NewStatus: upd.Status,
	})

	if !upd.Status.IsTerminal() {
		l.logger.Info("record status changed",
			zap.String("id", l.id(updated)),
			zap.String("old_status", string(oldStatus)),
			zap.String("new_status", string(upd.Status)))
		return outcome, nil
	}

	if err := l.relocate(updated, archived); err != nil {
		return nil, err
	}
	outcome.Archived = &archived

	l.metrics.RecordLifecycle(string(l.spec.Kind), observability.OpArchived)
	payload := l.archivedPayload(archived)
	l.logger.Info("record archived",
		zap.String("id", l.id(updated)),
		zap.String("closing_date", string(payload.ClosingDate)),
		zap.String("team", string(payload.Team)))
	l.publish(ctx, events.EventRecordArchived, l.id(updated), payload)
	return outcome, nil
}

// relocate appends archived to the archive store, then removes the first
// active row equal to rec. Rows are compared on every field, not the
// identifier alone, so unselected duplicates sharing the identifier stay
// active. The caller holds mu.
func (l *Lifecycle[A, R]) relocate(rec A, archived R) error {
	if err := l.spec.Archive.Append(archived); err != nil {
		return apperrors.NewIOFailure("archive "+string(l.spec.Kind), err)
	}

	items, err := l.spec.Active.List()
	if err != nil {
		return apperrors.NewIOFailure("archive "+string(l.spec.Kind), err)
	}
	encode := l.spec.Active.Codec().Encode
	want := encode(rec)
	idx := slices.IndexFunc(items, func(item A) bool {
		return slices.Equal(encode(item), want)
	})
	if idx < 0 {
		l.logger.Warn("archived record no longer present in active store", zap.String("id", l.id(rec)))
		return nil
	}
	if err := l.spec.Active.Replace(slices.Delete(items, idx, idx+1)); err != nil {
		return apperrors.NewIOFailure("archive "+string(l.spec.Kind), err)
	}
	return nil
}

// Remove deletes every active record whose identifier equals id and returns how
// many were removed. The archive is never touched.
func (l *Lifecycle[A, R]) Remove(ctx context.Context, id string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.listActive()
	if err != nil {
		return 0, err
	}
	kept := slices.DeleteFunc(slices.Clone(items), func(item A) bool {
		return l.id(item) == id
	})
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, apperrors.NewNotFound(string(l.spec.Kind), map[string]any{"id": id})
	}
	if err := l.spec.Active.Replace(kept); err != nil {
		return 0, apperrors.NewIOFailure("remove "+string(l.spec.Kind), err)
	}

	l.metrics.RecordLifecycle(string(l.spec.Kind), observability.OpRemoved)
	l.logger.Info("record removed", zap.String("id", id), zap.Int("count", removed))
	l.publish(ctx, events.EventRecordRemoved, id, events.RecordRemovedPayload{Count: removed})
	return removed, nil
}

func (l *Lifecycle[A, R]) id(rec A) string {
	return l.spec.Active.Codec().ID(rec)
}

func (l *Lifecycle[A, R]) archivedPayload(archived R) events.RecordArchivedPayload {
	codec := l.spec.Archive.Codec()
	row := codec.Encode(archived)
	columns := make(map[string]string, len(row))
	for i, name := range codec.Header {
		columns[name] = row[i]
	}
	return events.RecordArchivedPayload{
		Columns:     columns,
		LogDate:     domain.Timestamp(columns["Log Date"]),
		ClosingDate: domain.Timestamp(columns["Closing Date"]),
		Team:        domain.Team(columns["Team"]),
	}
}

func (l *Lifecycle[A, R]) publish(ctx context.Context, eventType events.EventType, recordID string, payload interface{}) {
	if l.dispatcher == nil {
		return
	}
	_ = l.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Kind:      l.spec.Kind,
		RecordID:  recordID,
		Timestamp: l.clock.Now().In(time.Local),
		Payload:   payload,
	})
}
