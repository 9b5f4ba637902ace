package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// TransitionPolicy decides whether a copy may move between two statuses.
type TransitionPolicy interface {
	Allow(from, to entities.LoanStatus) error
}

// TransitionFunc adapts a function to TransitionPolicy.
type TransitionFunc func(from, to entities.LoanStatus) error

func (f TransitionFunc) Allow(from, to entities.LoanStatus) error {
	return f(from, to)
}

// AllowAnyTransition lets staff set any status from any status.
var AllowAnyTransition TransitionPolicy = TransitionFunc(func(_, _ entities.LoanStatus) error {
	return nil
})

// TransitionTable lists the statuses reachable from each status. Setting a
// copy to its current status is always allowed.
type TransitionTable map[entities.LoanStatus][]entities.LoanStatus

func (t TransitionTable) Allow(from, to entities.LoanStatus) error {
	if from == to || slices.Contains(t[from], to) {
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, from.Label(), to.Label())
}

// StandardTransitions routes every copy through Available before it can be
// lent, so a copy in maintenance cannot go straight out on loan.
var StandardTransitions = TransitionTable{
	entities.LoanStatusMaintenance: {entities.LoanStatusAvailable},
	entities.LoanStatusAvailable:   {entities.LoanStatusOnLoan, entities.LoanStatusReserved, entities.LoanStatusMaintenance},
	entities.LoanStatusReserved:    {entities.LoanStatusOnLoan, entities.LoanStatusAvailable, entities.LoanStatusMaintenance},
	entities.LoanStatusOnLoan:      {entities.LoanStatusAvailable, entities.LoanStatusMaintenance},
}

// Lifecycle applies staff-driven status changes to book copies.
type Lifecycle struct {
	instances InstanceStore
	borrowers BorrowerStore
	auditor   Auditor
	policy    TransitionPolicy
	opts      Options
}

// NewLifecycle builds a lifecycle manager. StrictTransitions selects
// StandardTransitions, otherwise any transition is allowed.
func NewLifecycle(store InstanceStore, auditor Auditor, opts Options) *Lifecycle {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	policy := AllowAnyTransition
	if opts.StrictTransitions {
		policy = StandardTransitions
	}
	return &Lifecycle{
		instances: store,
		auditor:   auditor,
		policy:    policy,
		opts:      opts.withDefaults(),
	}
}

// WithPolicy replaces the transition policy.
func (l *Lifecycle) WithPolicy(policy TransitionPolicy) *Lifecycle {
	l.policy = policy
	return l
}

// WithBorrowers makes Lend check that the borrower exists before the copy is
// updated.
func (l *Lifecycle) WithBorrowers(borrowers BorrowerStore) *Lifecycle {
	l.borrowers = borrowers
	return l
}

// Statuses lists the states a copy can be in.
func (l *Lifecycle) Statuses() []entities.LoanStatus {
	return entities.LoanStatuses()
}

// IsOverdue evaluates a copy against the lifecycle clock.
func (l *Lifecycle) IsOverdue(instance *entities.BookInstance) bool {
	return instance.IsOverdue(l.opts.Clock())
}

// SetStatus changes only the status, keeping borrower and due date.
func (l *Lifecycle) SetStatus(ctx context.Context, actor *entities.User, id uuid.UUID, status entities.LoanStatus) (*entities.BookInstance, error) {
	if !canMarkReturned(actor) {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		verr := entities.NewValidationError()
		verr.Add("status", fmt.Sprintf("%q is not a valid loan status", status))
		return nil, verr
	}
	instance, err := l.instances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := instance.Status
	update := instances.LoanUpdate{Status: status, DueBack: instance.DueBack, BorrowerID: instance.BorrowerID}
	if err := l.apply(ctx, instance, update); err != nil {
		return nil, err
	}
	l.auditor.LogLoanChange(ctx, actorID(actor), "status_change", instance,
		fmt.Sprintf("Status changed from %s to %s", from.Label(), status.Label()))
	return instance, nil
}

// Lend puts a copy on loan to borrowerID. A nil due date uses the configured
// loan period from today.
func (l *Lifecycle) Lend(ctx context.Context, actor *entities.User, id uuid.UUID, borrowerID uint, due *entities.Date) (*entities.BookInstance, error) {
	if !canMarkReturned(actor) {
		return nil, ErrForbidden
	}
	instance, err := l.instances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.checkBorrower(ctx, borrowerID); err != nil {
		return nil, err
	}
	if due == nil {
		d := l.opts.Clock().AddDays(l.opts.LoanPeriodDays)
		due = &d
	}
	update := instances.LoanUpdate{Status: entities.LoanStatusOnLoan, DueBack: due, BorrowerID: &borrowerID}
	if err := l.apply(ctx, instance, update); err != nil {
		return nil, err
	}
	l.auditor.LogLoanChange(ctx, actorID(actor), "loan_lend", instance,
		fmt.Sprintf("Lent until %s", due))
	return instance, nil
}

// MarkReturned makes a copy available again and clears the loan.
func (l *Lifecycle) MarkReturned(ctx context.Context, actor *entities.User, id uuid.UUID) (*entities.BookInstance, error) {
	if !canMarkReturned(actor) {
		return nil, ErrForbidden
	}
	instance, err := l.instances.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasOverdue := l.IsOverdue(instance)
	if err := l.apply(ctx, instance, instances.LoanUpdate{Status: entities.LoanStatusAvailable}); err != nil {
		return nil, err
	}
	description := "Marked returned"
	if wasOverdue {
		description = "Marked returned after due date"
	}
	l.auditor.LogLoanChange(ctx, actorID(actor), "loan_return", instance, description)
	return instance, nil
}

// Reserve holds a copy, keeping any borrower and due date.
func (l *Lifecycle) Reserve(ctx context.Context, actor *entities.User, id uuid.UUID) (*entities.BookInstance, error) {
	return l.SetStatus(ctx, actor, id, entities.LoanStatusReserved)
}

func (l *Lifecycle) checkBorrower(ctx context.Context, borrowerID uint) error {
	if l.borrowers == nil {
		return nil
	}
	_, err := l.borrowers.GetByID(ctx, borrowerID)
	if errors.Is(err, entities.ErrNotFound) {
		verr := entities.NewValidationError()
		verr.Add("borrower_id", "Select a valid borrower.")
		return verr
	}
	return err
}

func (l *Lifecycle) apply(ctx context.Context, instance *entities.BookInstance, update instances.LoanUpdate) error {
	if err := l.policy.Allow(instance.Status, update.Status); err != nil {
		return err
	}
	if err := l.instances.UpdateLoan(ctx, instance.ID, update); err != nil {
		return err
	}
	instance.Status = update.Status
	instance.DueBack = update.DueBack
	instance.BorrowerID = update.BorrowerID
	if update.BorrowerID == nil {
		instance.Borrower = nil
	}
	return nil
}
