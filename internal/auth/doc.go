// Package auth provides authentication and authorization for the catalog.
//
// Two modes are supported:
//   - "local" (default): accounts in the users table, bcrypt passwords and
//     scs session cookies. Catalog pages are public; patron and staff
//     routes are guarded per route.
//   - "none": no login at all, every request acts as a local librarian.
//     Meant for a single-user desktop install.
//
// # Configuration
//
//	AUTH_MODE=local|none
//	AUTH_SESSION_SECRET=<hex>     # CSRF key, generated per process if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//
// # Usage
//
//	svc := auth.NewService(users.NewRepository(db), cfg.Auth)
//	mw := auth.NewMiddleware(svc, sessions, cfg.Auth)
//	router.Use(sessions.SessionLoadSave(), mw.Handler())
//	staff := router.Group("/", mw.RequirePermission(entities.PermissionCanMarkReturned))
//
// Handlers read the requester with auth.CurrentUser(c), which is nil for
// anonymous visitors.
package auth
