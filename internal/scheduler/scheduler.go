// Package scheduler delivers one-shot reminder messages at a wall-clock time.
// It shares no state with the record stores.
package scheduler

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/clock"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// DateLayout is the accepted date format.
const DateLayout = "2006-01-02"

// Notification is delivered when a job fires.
type Notification struct {
	JobID   string
	Message string
	FireAt  time.Time
}

// Notifier receives fired notifications. It is called from the timer goroutine.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Job is a pending one-shot notification.
type Job struct {
	ID      string
	Message string
	FireAt  time.Time

	timer     clock.Timer
	scheduler *Scheduler
}

// Cancel stops the job. It reports false when the job already fired or was cancelled.
func (j *Job) Cancel() bool {
	j.scheduler.mu.Lock()
	delete(j.scheduler.jobs, j.ID)
	j.scheduler.mu.Unlock()
	return j.timer.Stop()
}

// Dependencies bundles collaborators for the scheduler.
type Dependencies struct {
	Clock    clock.Clock
	Notifier Notifier
	Logger   *zap.Logger
	// FireHour is the local hour at which jobs fire on their date.
	FireHour int
}

// Scheduler owns every pending job.
type Scheduler struct {
	clock    clock.Clock
	notifier Notifier
	logger   *zap.Logger
	fireHour int

	mu   sync.Mutex
	jobs map[string]*Job
}

// New constructs a Scheduler. Without a Notifier fired messages are logged.
func New(deps Dependencies) *Scheduler {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Scheduler{
		clock:    deps.Clock,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		fireHour: deps.FireHour,
		jobs:     make(map[string]*Job),
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(n Notification) {
			s.logger.Info("reminder", zap.String("job_id", n.JobID), zap.String("message", n.Message))
		})
	}
	return s
}

// ScheduleOneShot arranges for message to be delivered at FireHour:00 local
// time on date (YYYY-MM-DD). It fails without scheduling anything when the date
// does not parse or the fire time is not strictly in the future.
func (s *Scheduler) ScheduleOneShot(date, message string) (*Job, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.Local)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date format, use YYYY-MM-DD", map[string]any{"date": date})
	}
	fireAt := time.Date(day.Year(), day.Month(), day.Day(), s.fireHour, 0, 0, 0, time.Local)
	delay := fireAt.Sub(s.clock.Now())
	if delay <= 0 {
		return nil, apperrors.NewValidationError("the scheduled time is already past", map[string]any{"fire_at": fireAt.Format(time.DateTime)})
	}

	job := &Job{
		ID:        uuid.NewString(),
		Message:   message,
		FireAt:    fireAt,
		scheduler: s,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	job.timer = s.clock.AfterFunc(delay, func() { s.fire(job) })
	s.mu.Unlock()

	s.logger.Info("reminder scheduled", zap.String("job_id", job.ID), zap.Time("fire_at", fireAt))
	return job, nil
}

// Pending returns the jobs that have not fired, ordered by fire time.
func (s *Scheduler) Pending() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].FireAt.Before(jobs[j].FireAt) })
	return jobs
}

// Stop cancels every pending job.
func (s *Scheduler) Stop() {
	for _, job := range s.Pending() {
		job.Cancel()
	}
}

func (s *Scheduler) fire(job *Job) {
	s.mu.Lock()
	_, pending := s.jobs[job.ID]
	delete(s.jobs, job.ID)
	s.mu.Unlock()
	if !pending {
		return
	}
	s.notifier.Notify(Notification{JobID: job.ID, Message: job.Message, FireAt: job.FireAt})
}
