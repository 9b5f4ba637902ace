package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/locallibrary/internal/database/audit"
	"github.com/mrlokans/locallibrary/internal/entities"
)

const (
	entityBookInstance = "book_instance"
	entityAuthor       = "author"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo     *audit.Repository
	archiver *Archiver
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// WithArchiver makes DeleteOldEvents write events to disk before removal.
func (s *Service) WithArchiver(archiver *Archiver) *Service {
	s.archiver = archiver
	return s
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// record writes synchronously and only logs failures, so auditing never
// fails the operation being audited.
func (s *Service) record(ctx context.Context, event *entities.AuditEvent) {
	if err := s.repo.LogEvent(ctx, event); err != nil {
		log.Printf("Failed to log audit event %s: %v", event.Action, err)
	}
}

// LogLoanChange records a renewal, return, lend or status change on a copy.
func (s *Service) LogLoanChange(ctx context.Context, userID uint, action string, instance *entities.BookInstance, description string) {
	eventType := entities.AuditEventLoan
	if action == "status_change" {
		eventType = entities.AuditEventStatus
	}

	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   eventType,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityBookInstance,
		EntityID:    instance.ID.String(),
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{"status": instance.Status}
	if instance.DueBack != nil {
		metadata["due_back"] = instance.DueBack.String()
	}
	if instance.BorrowerID != nil {
		metadata["borrower_id"] = *instance.BorrowerID
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	s.record(ctx, event)
}

// LogAuthorChange records an author create, update or delete.
func (s *Service) LogAuthorChange(ctx context.Context, userID uint, action string, author *entities.Author) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCatalog,
		Action:      "author_" + action,
		Description: truncate(fmt.Sprintf("Author %s: %s", action, author), 500),
		EntityType:  entityAuthor,
		EntityID:    fmt.Sprintf("%d", author.ID),
		Status:      entities.AuditStatusSuccess,
	}

	s.record(ctx, event)
}

// LogOverdue records that a copy was found past its due date.
func (s *Service) LogOverdue(ctx context.Context, instance *entities.BookInstance, today entities.Date) {
	var borrowerID uint
	if instance.BorrowerID != nil {
		borrowerID = *instance.BorrowerID
	}
	due := ""
	if instance.DueBack != nil {
		due = instance.DueBack.String()
	}

	event := &entities.AuditEvent{
		UserID:      borrowerID,
		EventType:   entities.AuditEventOverdue,
		Action:      "overdue_detected",
		Description: truncate(fmt.Sprintf("%s due %s, overdue as of %s", instance, due, today), 500),
		EntityType:  entityBookInstance,
		EntityID:    instance.ID.String(),
		Status:      entities.AuditStatusSuccess,
	}

	s.record(ctx, event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, filter audit.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, filter, limit, offset)
}

// DeleteOldEvents removes events older than the retention period, archiving
// them first when an archiver is configured.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	if s.archiver != nil {
		old, err := s.repo.GetEventsBefore(ctx, cutoff)
		if err != nil {
			return 0, fmt.Errorf("failed to load events for archive: %w", err)
		}
		if len(old) > 0 {
			if _, err := s.archiver.SaveEvents(old, cutoff); err != nil {
				return 0, err
			}
		}
	}

	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
