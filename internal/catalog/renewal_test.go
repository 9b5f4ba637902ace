package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/entities"
)

var today = entities.NewDate(2024, time.March, 15)

func onLoanCopy() *entities.BookInstance {
	borrower := uint(2)
	return &entities.BookInstance{
		ID:         uuid.New(),
		Imprint:    "Vintage, 1995",
		Status:     entities.LoanStatusOnLoan,
		DueBack:    datePtr(today.AddDays(-1)),
		BorrowerID: &borrower,
	}
}

func TestRenewal_PrepareProposesTodayPlus21Days(t *testing.T) {
	instance := onLoanCopy()
	svc := NewRenewalService(newFakeInstances(instance), nil, Options{Clock: fixedClock(today)})

	got, err := svc.Prepare(context.Background(), librarian(), instance.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-05", got.Form.RenewalDate)
	assert.Equal(t, instance.ID, got.Instance.ID)
	assert.False(t, got.Renewed)
}

func TestRenewal_ForbiddenBeforeAnyRead(t *testing.T) {
	instance := onLoanCopy()
	originalDue := *instance.DueBack
	store := newFakeInstances(instance)
	svc := NewRenewalService(store, nil, Options{Clock: fixedClock(today)})

	for _, principal := range []*entities.User{patron(), nil} {
		_, err := svc.Prepare(context.Background(), principal, instance.ID)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = svc.Submit(context.Background(), principal, instance.ID, "2024-05-01")
		assert.ErrorIs(t, err, ErrForbidden)
	}

	assert.Zero(t, store.Calls(), "store must not be touched without the capability")
	assert.Equal(t, originalDue, *instance.DueBack)
}

func TestRenewal_SubmitValidDate(t *testing.T) {
	instance := onLoanCopy()
	store := newFakeInstances(instance)
	auditor := &recordingAuditor{}
	svc := NewRenewalService(store, auditor, Options{Clock: fixedClock(today)})

	got, err := svc.Submit(context.Background(), staffPatron(), instance.ID, "2024-04-20")
	require.NoError(t, err)
	assert.True(t, got.Renewed)
	assert.True(t, got.Form.Valid())
	assert.Equal(t, AllBorrowedPath, got.RedirectTo)

	want := entities.NewDate(2024, time.April, 20)
	assert.Equal(t, want, *instance.DueBack)
	assert.Equal(t, want, *got.Instance.DueBack)
	assert.Equal(t, entities.LoanStatusOnLoan, instance.Status, "renewal only moves the due date")

	require.Len(t, auditor.changes, 1)
	assert.Equal(t, "loan_renew", auditor.changes[0].Action)
	assert.Equal(t, uint(3), auditor.changes[0].UserID)
}

func TestRenewal_SubmitInvalidDateDoesNotMutate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		message string
	}{
		{"missing", "", "This field is required."},
		{"blank", "   ", "This field is required."},
		{"malformed", "20/04/2024", "Enter a valid date."},
		{"impossible", "2024-02-30", "Enter a valid date."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instance := onLoanCopy()
			originalDue := *instance.DueBack
			auditor := &recordingAuditor{}
			svc := NewRenewalService(newFakeInstances(instance), auditor, Options{Clock: fixedClock(today)})

			got, err := svc.Submit(context.Background(), librarian(), instance.ID, tt.raw)
			require.NoError(t, err)
			assert.False(t, got.Renewed)
			assert.Empty(t, got.RedirectTo)
			assert.Equal(t, tt.message, got.Form.Errors[RenewalDateField])
			assert.Equal(t, originalDue, *instance.DueBack)
			assert.Empty(t, auditor.changes)
		})
	}
}

func TestRenewal_PastAndFarFutureDatesAcceptedByDefault(t *testing.T) {
	instance := onLoanCopy()
	svc := NewRenewalService(newFakeInstances(instance), nil, Options{Clock: fixedClock(today)})

	got, err := svc.Submit(context.Background(), librarian(), instance.ID, "2020-01-01")
	require.NoError(t, err)
	assert.True(t, got.Renewed)

	got, err = svc.Submit(context.Background(), librarian(), instance.ID, "2099-12-31")
	require.NoError(t, err)
	assert.True(t, got.Renewed)
}

func TestRenewal_WindowRejectsOutOfRangeDates(t *testing.T) {
	instance := onLoanCopy()
	originalDue := *instance.DueBack
	svc := NewRenewalService(newFakeInstances(instance), nil, Options{Clock: fixedClock(today), MaxRenewalDays: 28})

	got, err := svc.Submit(context.Background(), librarian(), instance.ID, "2024-03-14")
	require.NoError(t, err)
	assert.Equal(t, "Invalid date - renewal in past", got.Form.Errors[RenewalDateField])

	got, err = svc.Submit(context.Background(), librarian(), instance.ID, "2024-04-13")
	require.NoError(t, err)
	assert.Contains(t, got.Form.Errors[RenewalDateField], "more than 28 days ahead")
	assert.Equal(t, originalDue, *instance.DueBack)

	got, err = svc.Submit(context.Background(), librarian(), instance.ID, "2024-04-12")
	require.NoError(t, err)
	assert.True(t, got.Renewed)
}

func TestRenewal_UnknownInstanceIsNotFound(t *testing.T) {
	svc := NewRenewalService(newFakeInstances(), nil, Options{Clock: fixedClock(today)})

	_, err := svc.Prepare(context.Background(), librarian(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrNotFound)

	_, err = svc.Submit(context.Background(), librarian(), uuid.New(), "2024-04-01")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRenewalWindow_Disabled(t *testing.T) {
	w := RenewalWindow{}
	assert.Empty(t, w.Check(today, today.AddDays(-365)))
	assert.Empty(t, w.Check(today, today.AddDays(365)))
}
