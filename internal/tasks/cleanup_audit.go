package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/locallibrary/internal/config"
)

const cleanupAuditQueue = "cleanup_audit_events"

// AuditEventCleaner deletes audit events past their retention period.
// *audit.Service satisfies it and archives them first when configured.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask removes audit events older than RetentionDays.
// Zero uses config.DefaultAuditRetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return queueConfig(cleanupAuditQueue, 5*time.Minute, 2*time.Minute, 24*time.Hour)
}

func (t CleanupAuditEventsTask) days() int {
	if t.RetentionDays <= 0 {
		return config.DefaultAuditRetentionDays
	}
	return t.RetentionDays
}

// CleanupAuditEventsProcessor deletes expired audit events in one pass.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		days := task.days()
		deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		if deleted > 0 {
			log.Printf("[TASK] Removed %d audit events older than %d days", deleted, days)
		}
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
