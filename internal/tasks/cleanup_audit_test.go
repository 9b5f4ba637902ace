package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCleaner struct {
	retention time.Duration
	err       error
}

func (s *stubCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	s.retention = retention
	return 4, s.err
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	t.Run("uses task retention", func(t *testing.T) {
		cleaner := &stubCleaner{}
		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: 30})
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	})

	t.Run("defaults to 90 days", func(t *testing.T) {
		cleaner := &stubCleaner{}
		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{})
		require.NoError(t, err)
		assert.Equal(t, 90*24*time.Hour, cleaner.retention)
	})

	t.Run("wraps errors", func(t *testing.T) {
		cleaner := &stubCleaner{err: errors.New("disk full")}
		err := CleanupAuditEventsProcessor(cleaner)(context.Background(), CleanupAuditEventsTask{})
		assert.ErrorContains(t, err, "cleanup audit events: disk full")
	})

	t.Run("nil cleaner", func(t *testing.T) {
		err := CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{})
		assert.Error(t, err)
	})
}
