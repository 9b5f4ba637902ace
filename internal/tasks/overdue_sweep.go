package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/locallibrary/internal/entities"
)

const overdueSweepQueue = "overdue_sweep"

// OverdueLister finds loans past their due date. *catalog.Queries
// satisfies it.
type OverdueLister interface {
	ListOverdue(ctx context.Context) ([]entities.BookInstance, error)
	Today() entities.Date
}

// OverdueRecorder writes one audit entry per overdue copy.
type OverdueRecorder interface {
	LogOverdue(ctx context.Context, instance *entities.BookInstance, today entities.Date)
}

// OverdueSweepTask scans for overdue loans. Trigger names what enqueued it
// ("cron", "manual") and ends up in the log line only.
type OverdueSweepTask struct {
	Trigger string `json:"trigger"`
}

// Config returns the queue configuration for overdue sweeps.
func (t OverdueSweepTask) Config() backlite.QueueConfig {
	return queueConfig(overdueSweepQueue, time.Minute, 5*time.Minute, 7*24*time.Hour)
}

// OverdueSweepProcessor lists overdue copies and records each one.
func OverdueSweepProcessor(lister OverdueLister, recorder OverdueRecorder) backlite.QueueProcessor[OverdueSweepTask] {
	return func(ctx context.Context, task OverdueSweepTask) error {
		if lister == nil || recorder == nil {
			return fmt.Errorf("overdue sweep not configured")
		}

		today := lister.Today()
		overdue, err := lister.ListOverdue(ctx)
		if err != nil {
			return fmt.Errorf("list overdue loans: %w", err)
		}

		for i := range overdue {
			recorder.LogOverdue(ctx, &overdue[i], today)
		}

		log.Printf("[TASK] Overdue sweep (%s): %d overdue copies as of %s", task.Trigger, len(overdue), today)
		return nil
	}
}

// NewOverdueSweepQueue creates a backlite queue for overdue sweeps.
func NewOverdueSweepQueue(lister OverdueLister, recorder OverdueRecorder) backlite.Queue {
	return backlite.NewQueue(OverdueSweepProcessor(lister, recorder))
}
