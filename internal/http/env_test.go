package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/audit"
	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/database"
	dbaudit "github.com/mrlokans/locallibrary/internal/database/audit"
	"github.com/mrlokans/locallibrary/internal/database/authors"
	"github.com/mrlokans/locallibrary/internal/database/books"
	"github.com/mrlokans/locallibrary/internal/database/dbtest"
	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/database/taxonomy"
	"github.com/mrlokans/locallibrary/internal/database/users"
	"github.com/mrlokans/locallibrary/internal/entities"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv is a fully wired router over a temp SQLite catalog with a fixed
// calendar day.
type testEnv struct {
	db     *database.Database
	router *gin.Engine
	audit  *audit.Service
	authn  *auth.Service
	today  entities.Date
}

type envOption func(*RouterConfig)

// withLocalAuth turns on session logins instead of the local librarian.
func withLocalAuth(env *testEnv) envOption {
	return func(cfg *RouterConfig) {
		authCfg := config.Auth{
			Mode:             config.AuthModeLocal,
			BcryptCost:       4,
			MaxLoginAttempts: 5,
			RateLimitWindow:  time.Minute,
			LockoutDuration:  time.Minute,
		}
		env.authn = auth.NewService(users.NewRepository(env.db.DB), authCfg)
		sm, err := auth.NewSessionManager(nil, authCfg)
		if err != nil {
			panic(err)
		}
		cfg.AuthConfig = authCfg
		cfg.AuthService = env.authn
		cfg.SessionManager = sm
		cfg.AuthMiddleware = auth.NewMiddleware(env.authn, sm, authCfg)
	}
}

func newTestEnv(t *testing.T, opts ...func(*testEnv) envOption) *testEnv {
	t.Helper()

	env := &testEnv{
		db:    dbtest.New(t),
		today: entities.NewDate(2024, time.March, 10),
	}
	env.audit = audit.NewService(dbaudit.NewRepository(env.db.DB))

	authorRepo := authors.NewRepository(env.db.DB)
	instanceRepo := instances.NewRepository(env.db.DB)
	catalogOpts := catalog.Options{
		PageSize: 10,
		Clock:    func() entities.Date { return env.today },
	}

	cfg := RouterConfig{
		Queries: catalog.NewQueries(authorRepo, books.NewRepository(env.db.DB), instanceRepo,
			taxonomy.NewRepository(env.db.DB), catalogOpts),
		Lifecycle:     catalog.NewLifecycle(instanceRepo, env.audit, catalogOpts).WithBorrowers(users.NewRepository(env.db.DB)),
		Renewals:      catalog.NewRenewalService(instanceRepo, env.audit, catalogOpts),
		Authors:       authorRepo,
		AuthorAuditor: env.audit,
		AuditReader:   env.audit,
		Database:      env.db,
		Version:       "test",
		AuthConfig:    config.Auth{Mode: config.AuthModeNone},
	}
	for _, opt := range opts {
		opt(env)(&cfg)
	}

	env.router = NewRouter(cfg)
	return env
}

// createUser stores an account that can log in with testPassword.
func (env *testEnv) createUser(t *testing.T, username string, role entities.UserRole) *entities.User {
	t.Helper()
	require.NotNil(t, env.authn, "createUser needs withLocalAuth")
	user, err := env.authn.CreateUser(context.Background(), username, username+"@example.com", testPassword, role)
	require.NoError(t, err)
	return user
}

// login returns the session cookie for username.
func (env *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	w := env.do(t, http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {testPassword},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

// do sends a request; form, when non-nil, is posted url-encoded.
func (env *testEnv) do(t *testing.T, method, target string, form url.Values, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) getJSON(t *testing.T, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(t, http.MethodGet, target, nil, cookie, "Accept", "application/json")
}

func (env *testEnv) instance(t *testing.T, id string) *entities.BookInstance {
	t.Helper()
	var instance entities.BookInstance
	require.NoError(t, env.db.DB.First(&instance, "id = ?", id).Error)
	return &instance
}

func (env *testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	events, _, err := env.audit.GetEvents(context.Background(), dbaudit.EventFilter{}, 100, 0)
	require.NoError(t, err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
