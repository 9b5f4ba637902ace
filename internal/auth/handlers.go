package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// setupMutex serializes setup so two requests cannot both see an empty
// user table.
var setupMutex sync.Mutex

// Renderer writes a named HTML page. A nil Renderer makes the controller
// answer with the page data as JSON.
type Renderer func(c *gin.Context, status int, name string, data gin.H)

// EventLogger receives login, logout and setup outcomes.
type EventLogger interface {
	LogAuth(userID uint, action string, ipAddr string, success bool)
}

// isLocalPath reports whether path is safe to redirect to: a local absolute
// path with no scheme, host or backslash tricks.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") || strings.Contains(path, "://") {
		return false
	}
	return !strings.Contains(path, "\\")
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// SafeRedirectPath returns path when it is local, fallback otherwise.
func SafeRedirectPath(path, fallback string) string {
	if isLocalPath(path) {
		return path
	}
	return fallback
}

// AuthController serves the login, logout and first-run setup pages.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	render         Renderer
	events         EventLogger
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller. events may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, render Renderer, events EventLogger, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		render:         render,
		events:         events,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout)
	router.GET("/setup", ac.SetupPage)
	router.POST("/setup", ac.Setup)
}

// Stop releases the rate limiter's cleanup goroutine.
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

func (ac *AuthController) logEvent(userID uint, action, ip string, success bool) {
	if ac.events != nil {
		ac.events.LogAuth(userID, action, ip, success)
	}
}

// LoginPage renders the login form, or sends the visitor to setup when no
// account exists yet.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	hasUsers, _ := ac.service.HasUsers(c.Request.Context())
	if !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}

	ac.page(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login",
		"Next":  sanitizeRedirectPath(c.Query("next")),
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	loginError := func(status int, msg string) {
		ac.page(c, status, "login.html", gin.H{
			"Title":    "Login",
			"Next":     next,
			"Username": username,
			"Error":    msg,
		})
	}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		loginError(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.logEvent(0, "login_failed", clientIP, false)

		msg := "Invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			msg = "Account is locked. Please try again later."
		}
		loginError(http.StatusUnauthorized, msg)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			loginError(http.StatusInternalServerError, "Failed to create session")
			return
		}
	}
	ac.logEvent(user.ID, "login", clientIP, true)

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to the catalog home.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		userID := ac.sessionManager.GetUserID(c.Request)
		username := ac.sessionManager.GetUsername(c.Request)
		loginAt := ac.sessionManager.LoginTime(c.Request)
		_ = ac.sessionManager.DestroySession(c.Request)
		if userID != 0 {
			if !loginAt.IsZero() {
				log.Printf("User %q logged out after %s", username, time.Since(loginAt).Round(time.Second))
			}
			ac.logEvent(userID, "logout", c.ClientIP(), true)
		}
	}
	c.Redirect(http.StatusFound, "/")
}

// SetupPage renders the first-librarian form while the user table is empty.
func (ac *AuthController) SetupPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers(c.Request.Context())
	if err != nil {
		ac.page(c, http.StatusInternalServerError, "setup.html", gin.H{
			"Title": "Initial Setup",
			"Error": "Database error. Please try again.",
		})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ac.page(c, http.StatusOK, "setup.html", gin.H{
		"Title": "Initial Setup",
		"Error": c.Query("error"),
	})
}

// Setup creates the first account as a librarian and logs it in.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	ctx := c.Request.Context()
	hasUsers, err := ac.service.HasUsers(ctx)
	if err != nil {
		ac.page(c, http.StatusInternalServerError, "setup.html", gin.H{
			"Title": "Initial Setup",
			"Error": "Database error. Please try again.",
		})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	setupError := func(msg string) {
		ac.page(c, http.StatusBadRequest, "setup.html", gin.H{
			"Title":    "Initial Setup",
			"Username": username,
			"Email":    email,
			"Error":    msg,
		})
	}

	if password != c.PostForm("confirm_password") {
		setupError("Passwords do not match")
		return
	}

	user, err := ac.service.CreateUser(ctx, username, email, password, entities.UserRoleLibrarian)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		setupError(setupErrorMessage(err))
		return
	}
	ac.logEvent(user.ID, "setup", c.ClientIP(), true)

	if ac.sessionManager != nil {
		_ = ac.sessionManager.CreateSession(c.Request, user)
	}

	c.Redirect(http.StatusFound, "/")
}

func setupErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 12 characters"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 characters"
	case errors.Is(err, ErrUsernameRequired):
		return "Username is required"
	case errors.Is(err, ErrUsernameInvalid):
		return "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
	case errors.Is(err, ErrEmailRequired):
		return "Email is required"
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format"
	case errors.Is(err, ErrPasswordRequired):
		return "Password is required"
	}
	return "Failed to create user"
}

func (ac *AuthController) page(c *gin.Context, status int, name string, data gin.H) {
	data["CSRFField"] = CSRFTokenField(c)
	if ac.render == nil {
		c.JSON(status, data)
		return
	}
	ac.render(c, status, name, data)
}
