package http

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/locallibrary/internal/entities"
)

func TestRouter_FirstRunSetup(t *testing.T) {
	env := newTestEnv(t, withLocalAuth)

	w := env.do(t, http.MethodGet, "/login", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/setup", w.Header().Get("Location"))

	w = env.do(t, http.MethodGet, "/setup", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Create the first librarian account.")

	w = env.do(t, http.MethodPost, "/setup", url.Values{
		"username":         {"libby"},
		"email":            {"libby@example.com"},
		"password":         {testPassword},
		"confirm_password": {testPassword},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)

	user, err := env.authn.GetUserByUsername(context.Background(), "libby")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleLibrarian, user.Role)

	cookie := env.login(t, "libby")
	w = env.do(t, http.MethodGet, "/catalog/borrowed", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User: libby")
	assert.NotContains(t, w.Body.String(), "(front desk)")
}

func TestRouter_LoginPageRendersErrors(t *testing.T) {
	env := newTestEnv(t, withLocalAuth)
	env.createUser(t, "pat", entities.UserRolePatron)

	w := env.do(t, http.MethodPost, "/login", url.Values{
		"username": {"pat"},
		"password": {"wrong-password-entirely"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Contains(t, w.Body.String(), `value="pat"`)
}

func TestRouter_NoAuthActsAsLocalLibrarian(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/catalog/borrowed", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User: local (front desk)")
	assert.NotContains(t, w.Body.String(), `action="/logout"`)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/login", nil, nil).Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/", nil, nil)

	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestLoadTemplates(t *testing.T) {
	t.Run("built-in set when no directory is configured", func(t *testing.T) {
		tmpl, err := LoadTemplates("", templateFuncs(entities.Today))

		require.NoError(t, err)
		for _, name := range []string{"index.html", "book_list.html", "book_renew.html", "login.html", "setup.html", "error.html"} {
			assert.NotNil(t, tmpl.Lookup(name), name)
		}
	})

	t.Run("directory overrides the built-in set", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`custom {{.num_books}}`), 0o644))

		tmpl, err := LoadTemplates(dir, templateFuncs(entities.Today))

		require.NoError(t, err)
		assert.NotNil(t, tmpl.Lookup("index.html"))
		assert.Nil(t, tmpl.Lookup("book_list.html"))
	})

	t.Run("missing directory falls back", func(t *testing.T) {
		tmpl, err := LoadTemplates(filepath.Join(t.TempDir(), "absent"), templateFuncs(entities.Today))

		require.NoError(t, err)
		assert.NotNil(t, tmpl.Lookup("book_detail.html"))
	})
}
