package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/database/dbtest"
	"github.com/mrlokans/locallibrary/internal/entities"
)

func TestAuditController(t *testing.T) {
	env := newTestEnv(t)
	patron := dbtest.CreateUser(t, env.db, "pat", entities.UserRolePatron)
	instance := dbtest.CreateInstance(t, env.db, dbtest.CreateBook(t, env.db, "Audited", nil), entities.LoanStatusAvailable, nil)
	dbtest.Lend(t, env.db, instance, patron, entities.NewDate(2024, 3, 12))

	env.do(t, http.MethodPost, "/catalog/instance/"+instance.ID.String()+"/renew", url.Values{"renewal_date": {"2024-04-02"}}, nil)
	env.do(t, http.MethodPost, "/catalog/author/create", url.Values{"first_name": {"A"}, "last_name": {"B"}}, nil)

	t.Run("json lists every event", func(t *testing.T) {
		w := env.getJSON(t, "/api/audit", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Events      []entities.AuditEvent `json:"events"`
			TotalEvents int64                 `json:"total_events"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, int64(2), body.TotalEvents)
	})

	t.Run("filters by entity", func(t *testing.T) {
		w := env.getJSON(t, "/api/audit?entity_type=book_instance&entity_id="+instance.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"action":"loan_renew"`)
		assert.NotContains(t, w.Body.String(), "author_create")
	})

	t.Run("page renders", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/audit?type=catalog", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "author_create")
		assert.NotContains(t, w.Body.String(), "loan_renew")
	})
}
