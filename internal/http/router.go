package http

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// hstsMaxAge is one year in seconds.
const hstsMaxAge = 31536000

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Without an auth middleware every request acts as the local librarian
	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, config.Auth{Mode: config.AuthModeNone})
	}
	router.Use(authMiddleware.Handler())

	// Inject auth data for templates
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	tmpl, err := LoadTemplates(cfg.TemplatesPath, templateFuncs(cfg.Queries.Today))
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		if info, err := os.Stat(cfg.StaticPath); err == nil && info.IsDir() {
			router.Static("/static", cfg.StaticPath)
		}
	}

	requireLogin := authMiddleware.RequireAuth()
	requireStaff := authMiddleware.RequirePermission(entities.PermissionCanMarkReturned)

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, render, cfg.AuthEvents, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version).
		WithCatalog(cfg.Queries).
		WithTasks(cfg.TaskQueue != nil)
	catalogController := NewCatalogController(cfg.Queries)
	loansController := NewLoansController(cfg.Queries, cfg.Lifecycle, cfg.Renewals)
	apiController := NewAPIController(cfg.Queries)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Public catalog
	router.GET("/", catalogController.Index)
	router.GET("/catalog/", catalogController.Index)
	router.GET("/catalog/books", catalogController.BookList)
	router.GET("/catalog/book/:id", catalogController.BookDetail)
	router.GET("/catalog/authors", catalogController.AuthorList)
	router.GET("/catalog/author/:id", catalogController.AuthorDetail)

	// Loans
	router.GET("/catalog/mybooks", requireLogin, loansController.MyBooks)
	staff := router.Group("/", requireStaff)
	staff.GET("/catalog/borrowed", loansController.AllBorrowed)
	staff.GET("/catalog/instance/:id/renew", loansController.RenewPage)
	staff.POST("/catalog/instance/:id/renew", loansController.Renew)
	staff.POST("/catalog/instance/:id/return", loansController.Return)
	staff.POST("/catalog/instance/:id/status", loansController.SetStatus)
	staff.POST("/catalog/instance/:id/lend", loansController.Lend)

	// Author editing
	if cfg.Authors != nil {
		authorsController := NewAuthorsController(cfg.Authors, cfg.AuthorAuditor)
		staff.GET("/catalog/author/create", authorsController.CreatePage)
		staff.POST("/catalog/author/create", authorsController.Create)
		staff.GET("/catalog/author/:id/update", authorsController.UpdatePage)
		staff.POST("/catalog/author/:id/update", authorsController.Update)
		staff.GET("/catalog/author/:id/delete", authorsController.DeletePage)
		staff.POST("/catalog/author/:id/delete", authorsController.Delete)
	}

	// Catalog API
	router.GET("/api/catalog/stats", apiController.Stats)
	router.GET("/api/catalog/books", apiController.Books)
	router.GET("/api/catalog/books/:id", apiController.Book)
	router.GET("/api/catalog/authors", apiController.Authors)
	router.GET("/api/catalog/authors/:id", apiController.Author)
	router.GET("/api/catalog/vocabulary", apiController.Vocabulary)
	router.GET("/api/catalog/mybooks", requireLogin, apiController.MyLoans)
	staff.GET("/api/catalog/overdue", apiController.Overdue)

	// Audit log
	if cfg.AuditReader != nil {
		auditController := NewAuditController(cfg.AuditReader)
		staff.GET("/audit", auditController.AuditLogPage)
		staff.GET("/api/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.RetentionDays).WithSchedule(cfg.Schedule)
		staff.GET("/api/tasks/types", tasksController.ListTaskTypes)
		staff.GET("/api/tasks/schedule", tasksController.Schedule)
		staff.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		staff.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
