package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/locallibrary/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a standard five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime calculates when schedule next fires after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Enqueuer hands tasks to the background queue. *tasks.Client satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// OverdueScheduler enqueues the overdue sweep, followed by audit retention
// cleanup, on a cron schedule. The work itself runs on the task queue.
type OverdueScheduler struct {
	queue         Enqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewOverdueScheduler creates a scheduler that fires on schedule.
func NewOverdueScheduler(queue Enqueuer, schedule string, retentionDays int) *OverdueScheduler {
	return &OverdueScheduler{
		queue:         queue,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the job and starts cron. Cancelling ctx stops it.
func (s *OverdueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(cancelCtx, "cron"); err != nil {
			log.Printf("Overdue scheduler: failed to enqueue sweep: %v", err)
		}
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("Overdue scheduler: started with schedule '%s'. Next run: %v", s.schedule, next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *OverdueScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Overdue scheduler: stopped")
}

// RunNow enqueues one sweep and one audit cleanup immediately.
func (s *OverdueScheduler) RunNow(ctx context.Context, trigger string) error {
	ids, err := s.queue.Enqueue(ctx,
		tasks.OverdueSweepTask{Trigger: trigger},
		tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays},
	)
	if err != nil {
		return err
	}
	log.Printf("Overdue scheduler: enqueued %d tasks (%s)", len(ids), trigger)
	return nil
}

// IsRunning returns whether the scheduler is active.
func (s *OverdueScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will be enqueued, or nil when
// stopped.
func (s *OverdueScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			next := entry.Next
			return &next
		}
	}
	return nil
}
