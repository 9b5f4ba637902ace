package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// fakeInstances is an in-memory InstanceStore that counts every call.
type fakeInstances struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entities.BookInstance
	calls int
}

func newFakeInstances(items ...*entities.BookInstance) *fakeInstances {
	f := &fakeInstances{items: make(map[uuid.UUID]*entities.BookInstance)}
	for _, bi := range items {
		if bi.ID == uuid.Nil {
			bi.ID = uuid.New()
		}
		f.items[bi.ID] = bi
	}
	return f
}

func (f *fakeInstances) touch() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeInstances) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeInstances) GetByID(_ context.Context, id uuid.UUID) (*entities.BookInstance, error) {
	f.touch()
	bi, ok := f.items[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	clone := *bi
	return &clone, nil
}

func (f *fakeInstances) Count(context.Context) (int64, error) {
	f.touch()
	return int64(len(f.items)), nil
}

func (f *fakeInstances) CountByStatus(_ context.Context, status entities.LoanStatus) (int64, error) {
	f.touch()
	var n int64
	for _, bi := range f.items {
		if bi.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeInstances) ListByStatus(_ context.Context, status entities.LoanStatus, _, _ int) ([]entities.BookInstance, error) {
	f.touch()
	var out []entities.BookInstance
	for _, bi := range f.items {
		if bi.Status == status {
			out = append(out, *bi)
		}
	}
	return out, nil
}

func (f *fakeInstances) ListBorrowedBy(_ context.Context, userID uint, _, _ int) ([]entities.BookInstance, error) {
	f.touch()
	var out []entities.BookInstance
	for _, bi := range f.items {
		if bi.BorrowerID != nil && *bi.BorrowerID == userID && bi.Status == entities.LoanStatusOnLoan {
			out = append(out, *bi)
		}
	}
	return out, nil
}

func (f *fakeInstances) CountBorrowedBy(ctx context.Context, userID uint) (int64, error) {
	loans, err := f.ListBorrowedBy(ctx, userID, 0, 0)
	return int64(len(loans)), err
}

func (f *fakeInstances) ListOverdue(_ context.Context, today entities.Date) ([]entities.BookInstance, error) {
	f.touch()
	var out []entities.BookInstance
	for _, bi := range f.items {
		if bi.Status == entities.LoanStatusOnLoan && bi.IsOverdue(today) {
			out = append(out, *bi)
		}
	}
	return out, nil
}

func (f *fakeInstances) UpdateDueBack(_ context.Context, id uuid.UUID, dueBack entities.Date) error {
	f.touch()
	bi, ok := f.items[id]
	if !ok {
		return entities.ErrNotFound
	}
	bi.DueBack = &dueBack
	return nil
}

func (f *fakeInstances) UpdateLoan(_ context.Context, id uuid.UUID, update instances.LoanUpdate) error {
	f.touch()
	bi, ok := f.items[id]
	if !ok {
		return entities.ErrNotFound
	}
	bi.Status = update.Status
	bi.DueBack = update.DueBack
	bi.BorrowerID = update.BorrowerID
	return nil
}

// fakeBorrowers knows the accounts with the given ids.
type fakeBorrowers map[uint]bool

func (f fakeBorrowers) GetByID(_ context.Context, id uint) (*entities.User, error) {
	if !f[id] {
		return nil, entities.ErrNotFound
	}
	return &entities.User{ID: id, Role: entities.UserRolePatron}, nil
}

type loggedChange struct {
	UserID      uint
	Action      string
	InstanceID  uuid.UUID
	Description string
}

type recordingAuditor struct {
	changes []loggedChange
}

func (a *recordingAuditor) LogLoanChange(_ context.Context, userID uint, action string, instance *entities.BookInstance, description string) {
	a.changes = append(a.changes, loggedChange{
		UserID:      userID,
		Action:      action,
		InstanceID:  instance.ID,
		Description: description,
	})
}

func fixedClock(d entities.Date) Clock {
	return func() entities.Date { return d }
}

func librarian() *entities.User {
	return &entities.User{ID: 1, Username: "librarian", Role: entities.UserRoleLibrarian}
}

func patron() *entities.User {
	return &entities.User{ID: 2, Username: "patron", Role: entities.UserRolePatron}
}

func staffPatron() *entities.User {
	return &entities.User{
		ID:          3,
		Username:    "helper",
		Role:        entities.UserRolePatron,
		Permissions: []entities.UserPermission{{Codename: entities.PermissionCanMarkReturned}},
	}
}

func datePtr(d entities.Date) *entities.Date {
	return &d
}
