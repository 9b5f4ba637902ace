package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"
)

// RunOptions carries the values a task started on demand may need.
type RunOptions struct {
	Trigger       string
	RetentionDays int
}

// Definition describes a task type staff can start from the API.
// Type doubles as the backlite queue name.
type Definition struct {
	Type        string
	Description string
	New         func(RunOptions) backlite.Task
}

var definitions = []Definition{
	{
		Type:        overdueSweepQueue,
		Description: "Record an audit event for every overdue loan",
		New: func(o RunOptions) backlite.Task {
			return OverdueSweepTask{Trigger: o.Trigger}
		},
	},
	{
		Type:        cleanupAuditQueue,
		Description: "Delete audit events past the retention period",
		New: func(o RunOptions) backlite.Task {
			return CleanupAuditEventsTask{RetentionDays: o.RetentionDays}
		},
	},
}

// Definitions lists the on-demand task types in display order.
func Definitions() []Definition {
	return definitions
}

// Lookup finds a task type by name.
func Lookup(taskType string) (Definition, bool) {
	for _, d := range definitions {
		if d.Type == taskType {
			return d, true
		}
	}
	return Definition{}, false
}

// queueConfig is the shared queue shape: three attempts, successful runs
// kept for keep, payloads retained only for failures.
func queueConfig(name string, backoff, timeout, keep time.Duration) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: 3,
		Backoff:     backoff,
		Timeout:     timeout,
		Retention: &backlite.Retention{
			Duration:   keep,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}
