package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/entities"
)

// RenewalDateField is the form field carrying the proposed due date.
const RenewalDateField = "renewal_date"

// AllBorrowedPath is where a successful renewal sends the librarian.
const AllBorrowedPath = "/catalog/borrowed"

// RenewalForm is the state of the renewal form as shown to the librarian.
type RenewalForm struct {
	RenewalDate string            `json:"renewal_date"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Valid reports whether the form carries no field errors.
func (f RenewalForm) Valid() bool {
	return len(f.Errors) == 0
}

// Renewal is the outcome of preparing or submitting the renewal form.
type Renewal struct {
	Instance   *entities.BookInstance
	Form       RenewalForm
	Renewed    bool
	RedirectTo string
}

// RenewalWindow bounds how far a due date may move. A zero MaxDays accepts
// any well-formed date.
type RenewalWindow struct {
	MaxDays int
}

// Check returns a field message when proposed falls outside the window.
func (w RenewalWindow) Check(today, proposed entities.Date) string {
	if w.MaxDays <= 0 {
		return ""
	}
	if proposed.Before(today) {
		return "Invalid date - renewal in past"
	}
	if proposed.After(today.AddDays(w.MaxDays)) {
		return fmt.Sprintf("Invalid date - renewal more than %d days ahead", w.MaxDays)
	}
	return ""
}

// RenewalService extends the due date of a borrowed copy.
type RenewalService struct {
	instances InstanceStore
	auditor   Auditor
	window    RenewalWindow
	opts      Options
}

func NewRenewalService(store InstanceStore, auditor Auditor, opts Options) *RenewalService {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	opts = opts.withDefaults()
	return &RenewalService{
		instances: store,
		auditor:   auditor,
		window:    RenewalWindow{MaxDays: opts.MaxRenewalDays},
		opts:      opts,
	}
}

// ProposedDate is today plus the renewal period.
func (s *RenewalService) ProposedDate() entities.Date {
	return s.opts.Clock().AddDays(s.opts.RenewalPeriodDays)
}

// Prepare returns the form pre-filled with the proposed date.
func (s *RenewalService) Prepare(ctx context.Context, principal *entities.User, id uuid.UUID) (*Renewal, error) {
	if !canMarkReturned(principal) {
		return nil, ErrForbidden
	}
	instance, err := s.instances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Renewal{
		Instance: instance,
		Form:     RenewalForm{RenewalDate: s.ProposedDate().String()},
	}, nil
}

// Submit validates raw and, when valid, sets it as the copy's due date.
// An invalid date comes back as a form error and nothing is written.
func (s *RenewalService) Submit(ctx context.Context, principal *entities.User, id uuid.UUID, raw string) (*Renewal, error) {
	if !canMarkReturned(principal) {
		return nil, ErrForbidden
	}
	instance, err := s.instances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	result := &Renewal{Instance: instance, Form: RenewalForm{RenewalDate: raw}}

	if raw == "" {
		result.Form.Errors = map[string]string{RenewalDateField: "This field is required."}
		return result, nil
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		result.Form.Errors = map[string]string{RenewalDateField: "Enter a valid date."}
		return result, nil
	}
	if msg := s.window.Check(s.opts.Clock(), date); msg != "" {
		result.Form.Errors = map[string]string{RenewalDateField: msg}
		return result, nil
	}

	if err := s.instances.UpdateDueBack(ctx, id, date); err != nil {
		return nil, err
	}
	instance.DueBack = &date
	s.auditor.LogLoanChange(ctx, actorID(principal), "loan_renew", instance,
		fmt.Sprintf("Renewed until %s", date))

	result.Form.RenewalDate = date.String()
	result.Renewed = true
	result.RedirectTo = AllBorrowedPath
	return result, nil
}
