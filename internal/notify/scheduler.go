package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var ErrNotInFuture = errors.New("reminder time is not in the future")

// Scheduler keeps pending reminders in memory and fires them from a cron
// sweep. Reminders are lost on restart unless rescheduled by the host.
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier
	sweep    time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]Reminder
}

// NewScheduler creates a scheduler that checks for due reminders every sweep.
func NewScheduler(notifier Notifier, sweep time.Duration) *Scheduler {
	if sweep <= 0 {
		sweep = time.Minute
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		notifier: notifier,
		sweep:    sweep,
		now:      time.Now,
		pending:  make(map[string]Reminder),
	}
}

// Start registers the sweep job and starts the cron runner.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.sweep), s.Sweep)
	if err != nil {
		return fmt.Errorf("register reminder sweep: %w", err)
	}
	s.cron.Start()
	log.WithField("sweep", s.sweep).Info("Reminder scheduler started")
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Reminder scheduler stopped")
}

// Schedule queues r for delivery at r.At, replacing any reminder with the
// same ID. Times that are not in the future are rejected.
func (s *Scheduler) Schedule(r Reminder) error {
	if !r.At.After(s.now()) {
		return fmt.Errorf("schedule %s at %s: %w", r.ID, r.At.Format(time.RFC3339), ErrNotInFuture)
	}
	s.mu.Lock()
	s.pending[r.ID] = r
	s.mu.Unlock()
	log.WithFields(log.Fields{"record_id": r.ID, "at": r.At}).Debug("Reminder scheduled")
	return nil
}

// Cancel drops the pending reminder with the given ID.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Pending returns the queued reminders ordered by due time.
func (s *Scheduler) Pending() []Reminder {
	s.mu.Lock()
	out := make([]Reminder, 0, len(s.pending))
	for _, r := range s.pending {
		out = append(out, r)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Sweep delivers every reminder that has come due. Delivery is best effort:
// a failed reminder is logged and dropped.
func (s *Scheduler) Sweep() {
	now := s.now()
	var due []Reminder
	s.mu.Lock()
	for id, r := range s.pending {
		if !r.At.After(now) {
			due = append(due, r)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()
	if len(due) == 0 {
		return
	}
	sort.Slice(due, func(i, j int) bool { return due[i].At.Before(due[j].At) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			log.WithError(err).WithField("record_id", r.ID).Error("Failed to deliver reminder")
		}
	}
}
