package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/database/dbtest"
	"github.com/mrlokans/locallibrary/internal/entities"
)

func TestLoansController_MyBooks(t *testing.T) {
	env := newTestEnv(t, withLocalAuth)
	patron := env.createUser(t, "pat", entities.UserRolePatron)
	other := env.createUser(t, "olive", entities.UserRolePatron)

	book := dbtest.CreateBook(t, env.db, "Mine", nil)
	otherBook := dbtest.CreateBook(t, env.db, "Theirs", nil)
	mine := dbtest.CreateInstance(t, env.db, book, entities.LoanStatusAvailable, nil)
	theirs := dbtest.CreateInstance(t, env.db, otherBook, entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, env.db, mine, patron, entities.NewDate(2024, 3, 1))
	dbtest.Lend(t, env.db, theirs, other, entities.NewDate(2024, 3, 20))

	t.Run("anonymous visitors are sent to login", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/catalog/mybooks", nil, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next="+url.QueryEscape("/catalog/mybooks"), w.Header().Get("Location"))
	})

	t.Run("lists only the user's loans and flags overdue ones", func(t *testing.T) {
		cookie := env.login(t, "pat")

		w := env.do(t, http.MethodGet, "/catalog/mybooks", nil, cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Mine")
		assert.Contains(t, body, "(2024-03-01)")
		assert.Contains(t, body, `class="text-danger"`)
		assert.NotContains(t, body, "Theirs")
	})

	t.Run("pages through long loan lists", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			extra := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Later loan", nil), entities.LoanStatusAvailable, nil)
			dbtest.Lend(t, env.db, extra, patron, entities.NewDate(2024, 4, 1+i))
		}
		cookie := env.login(t, "pat")

		first := env.do(t, http.MethodGet, "/catalog/mybooks", nil, cookie)
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Contains(t, first.Body.String(), "Mine")
		assert.Contains(t, first.Body.String(), "Page 1 of 2.")

		second := env.do(t, http.MethodGet, "/catalog/mybooks?page=2", nil, cookie)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.NotContains(t, second.Body.String(), "Mine")
		assert.Contains(t, second.Body.String(), "(2024-04-10)")

		beyond := env.do(t, http.MethodGet, "/catalog/mybooks?page=3", nil, cookie)
		assert.Equal(t, http.StatusNotFound, beyond.Code)
	})
}

func TestLoansController_StaffGuard(t *testing.T) {
	env := newTestEnv(t, withLocalAuth)
	env.createUser(t, "pat", entities.UserRolePatron)
	env.createUser(t, "libby", entities.UserRoleLibrarian)
	instance := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Guarded", nil), entities.LoanStatusOnLoan, nil)

	t.Run("patron without permission is forbidden", func(t *testing.T) {
		cookie := env.login(t, "pat")

		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/catalog/borrowed", nil, cookie).Code)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/catalog/instance/"+instance.ID.String()+"/renew", nil, cookie).Code)
	})

	t.Run("granted patron may manage loans", func(t *testing.T) {
		require.NoError(t, env.authn.Grant(context.Background(), "pat", entities.PermissionCanMarkReturned))
		cookie := env.login(t, "pat")

		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/catalog/borrowed", nil, cookie).Code)
	})

	t.Run("librarian may manage loans", func(t *testing.T) {
		cookie := env.login(t, "libby")

		w := env.do(t, http.MethodGet, "/catalog/borrowed", nil, cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Guarded")
	})
}

func TestLoansController_AllBorrowed(t *testing.T) {
	env := newTestEnv(t)
	patron := dbtest.CreateUser(t, env.db, "pat", entities.UserRolePatron)
	late := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Late", nil), entities.LoanStatusAvailable, nil)
	soon := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Soon", nil), entities.LoanStatusAvailable, nil)
	dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Shelf", nil), entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, env.db, soon, patron, entities.NewDate(2024, 3, 25))
	dbtest.Lend(t, env.db, late, patron, entities.NewDate(2024, 3, 2))

	w := env.do(t, http.MethodGet, "/catalog/borrowed", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "Shelf")
	assert.Less(t, indexOf(body, "Late"), indexOf(body, "Soon"), "soonest due first")
	assert.Contains(t, body, "pat")
}

func TestLoansController_Renew(t *testing.T) {
	env := newTestEnv(t)
	patron := dbtest.CreateUser(t, env.db, "pat", entities.UserRolePatron)
	instance := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Renewable", nil), entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, env.db, instance, patron, entities.NewDate(2024, 3, 5))
	path := "/catalog/instance/" + instance.ID.String() + "/renew"

	t.Run("form proposes three weeks from today", func(t *testing.T) {
		w := env.do(t, http.MethodGet, path, nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="2024-03-31"`)
		assert.Contains(t, w.Body.String(), "Renew: Renewable")
	})

	t.Run("empty date is required", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"renewal_date": {""}}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required.")
		assert.Equal(t, "2024-03-05", env.instance(t, instance.ID.String()).DueBack.String())
	})

	t.Run("malformed date re-renders with an error", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"renewal_date": {"next tuesday"}}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Enter a valid date.")
		assert.Contains(t, w.Body.String(), `value="next tuesday"`)
		assert.Equal(t, "2024-03-05", env.instance(t, instance.ID.String()).DueBack.String())
	})

	t.Run("valid date is saved and redirects to all borrowed", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"renewal_date": {"2024-04-01"}}, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/catalog/borrowed", w.Header().Get("Location"))
		assert.Equal(t, "2024-04-01", env.instance(t, instance.ID.String()).DueBack.String())
		assert.Contains(t, env.auditActions(t), "loan_renew")
	})

	t.Run("json clients get field errors", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"renewal_date": {"31/31/2024"}}, nil, "Accept", "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body struct {
			Renewed bool `json:"renewed"`
			Form    struct {
				Errors map[string]string `json:"errors"`
			} `json:"form"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Renewed)
		assert.Equal(t, "Enter a valid date.", body.Form.Errors["renewal_date"])
	})

	t.Run("unknown copy is not found", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/catalog/instance/"+uuid.NewString()+"/renew", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed copy id is not found", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/catalog/instance/not-a-uuid/renew", url.Values{"renewal_date": {"2024-04-01"}}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoansController_Return(t *testing.T) {
	env := newTestEnv(t)
	patron := dbtest.CreateUser(t, env.db, "pat", entities.UserRolePatron)
	instance := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Returned", nil), entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, env.db, instance, patron, entities.NewDate(2024, 3, 1))

	w := env.do(t, http.MethodPost, "/catalog/instance/"+instance.ID.String()+"/return", url.Values{}, nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/catalog/borrowed", w.Header().Get("Location"))
	saved := env.instance(t, instance.ID.String())
	assert.Equal(t, entities.LoanStatusAvailable, saved.Status)
	assert.Nil(t, saved.BorrowerID)
	assert.Nil(t, saved.DueBack)
	assert.Contains(t, env.auditActions(t), "loan_return")
}

func TestLoansController_SetStatus(t *testing.T) {
	env := newTestEnv(t)
	instance := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Shelved", nil), entities.LoanStatusMaintenance, nil)
	path := "/catalog/instance/" + instance.ID.String() + "/status"

	t.Run("accepts a label and honours next", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"status": {"Reserved"}, "next": {"/catalog/books"}}, nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/catalog/books", w.Header().Get("Location"))
		assert.Equal(t, entities.LoanStatusReserved, env.instance(t, instance.ID.String()).Status)
	})

	t.Run("ignores an off-site next", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"status": {"a"}, "next": {"//evil.example"}}, nil)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/catalog/borrowed", w.Header().Get("Location"))
	})

	t.Run("unknown status is a bad request", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"status": {"lost"}}, nil, "Accept", "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "status")
	})
}

func TestLoansController_Lend(t *testing.T) {
	env := newTestEnv(t)
	patron := dbtest.CreateUser(t, env.db, "pat", entities.UserRolePatron)
	instance := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Lendable", nil), entities.LoanStatusAvailable, nil)
	path := "/catalog/instance/" + instance.ID.String() + "/lend"

	t.Run("missing borrower is rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{}, nil, "Accept", "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "borrower_id")
	})

	t.Run("unknown borrower is a field error", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"borrower_id": {"9999"}}, nil, "Accept", "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "borrower_id")
		assert.Equal(t, entities.LoanStatusAvailable, env.instance(t, instance.ID.String()).Status)
	})

	t.Run("defaults the due date to the loan period", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, url.Values{"borrower_id": {uintString(patron.ID)}}, nil, "Accept", "application/json")

		assert.Equal(t, http.StatusOK, w.Code)
		saved := env.instance(t, instance.ID.String())
		assert.Equal(t, entities.LoanStatusOnLoan, saved.Status)
		require.NotNil(t, saved.BorrowerID)
		assert.Equal(t, patron.ID, *saved.BorrowerID)
		assert.Equal(t, "2024-03-31", saved.DueBack.String())
	})
}
