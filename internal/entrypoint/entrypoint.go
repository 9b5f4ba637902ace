package entrypoint

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/audit"
	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/database"
	dbaudit "github.com/mrlokans/locallibrary/internal/database/audit"
	"github.com/mrlokans/locallibrary/internal/database/authors"
	"github.com/mrlokans/locallibrary/internal/database/books"
	"github.com/mrlokans/locallibrary/internal/database/instances"
	"github.com/mrlokans/locallibrary/internal/database/taxonomy"
	"github.com/mrlokans/locallibrary/internal/database/users"
	http_controllers "github.com/mrlokans/locallibrary/internal/http"
	"github.com/mrlokans/locallibrary/internal/scheduler"
	"github.com/mrlokans/locallibrary/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the catalog services built from configuration. The server and
// the maintenance commands share it.
type App struct {
	DB        *database.Database
	Audit     *audit.Service
	Auth      *auth.Service
	Authors   *authors.Repository
	Books     *books.Repository
	Instances *instances.Repository
	Taxonomy  *taxonomy.Repository
	Queries   *catalog.Queries
	Lifecycle *catalog.Lifecycle
	Renewals  *catalog.RenewalService
}

// NewApp opens the database and builds the catalog services on top of it.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	auditService := audit.NewService(dbaudit.NewRepository(db.DB))
	if cfg.Audit.ArchiveDir != "" {
		auditService.WithArchiver(audit.NewArchiver(cfg.Audit.ArchiveDir))
	}

	userRepo := users.NewRepository(db.DB)
	app := &App{
		DB:        db,
		Audit:     auditService,
		Auth:      auth.NewService(userRepo, cfg.Auth),
		Authors:   authors.NewRepository(db.DB),
		Books:     books.NewRepository(db.DB),
		Instances: instances.NewRepository(db.DB),
		Taxonomy:  taxonomy.NewRepository(db.DB),
	}

	opts := catalog.OptionsFromConfig(cfg.Catalog)
	app.Queries = catalog.NewQueries(app.Authors, app.Books, app.Instances, app.Taxonomy, opts)
	app.Lifecycle = catalog.NewLifecycle(app.Instances, auditService, opts).WithBorrowers(userRepo)
	app.Renewals = catalog.NewRenewalService(app.Instances, auditService, opts)

	return app, nil
}

// Close releases the database connection.
func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// sessionDB returns the SQL handle for the session store. Sessions are kept
// in SQLite alongside the catalog; a Postgres catalog falls back to
// in-memory sessions.
func (a *App) sessionDB() (*sql.DB, error) {
	if a.DB.Driver != config.DriverSQLite {
		log.Printf("Sessions are kept in memory for the %s driver", a.DB.Driver)
		return nil, nil
	}
	return a.DB.DB.DB()
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT. SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Local Library v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	// Task queue and overdue scheduler
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var overdueScheduler *scheduler.OverdueScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewOverdueSweepQueue(app.Queries, app.Audit),
			tasks.NewCleanupAuditEventsQueue(app.Audit),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Overdue.SweepEnabled {
			overdueScheduler = scheduler.NewOverdueScheduler(taskClient, cfg.Overdue.SweepSchedule, cfg.Audit.RetentionDays)
			if err := overdueScheduler.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start overdue scheduler: %v", err)
			}
		}
	} else if cfg.Overdue.SweepEnabled {
		log.Printf("WARNING: overdue sweep is enabled but the task queue is not. Set TASKS_ENABLED=true to run it.")
	}

	// Authentication
	var sessionManager *auth.SessionManager
	var authMiddleware *auth.Middleware
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		sqlDB, err := app.sessionDB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(app.Auth, sessionManager, cfg.Auth)

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		if hasUsers, _ := app.Auth.HasUsers(context.Background()); !hasUsers {
			log.Printf("No users found. Visit /setup to create the first librarian account.")
		}
	} else {
		log.Printf("Authentication mode: none (every request acts as the local librarian)")
	}

	routerCfg := http_controllers.RouterConfig{
		Queries:        app.Queries,
		Lifecycle:      app.Lifecycle,
		Renewals:       app.Renewals,
		Authors:        app.Authors,
		AuthorAuditor:  app.Audit,
		AuditReader:    app.Audit,
		RetentionDays:  cfg.Audit.RetentionDays,
		Database:       app.DB,
		Version:        version,
		AuthService:    app.Auth,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		AuthConfig:     cfg.Auth,
		AuthEvents:     app.Audit,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if overdueScheduler != nil {
		routerCfg.Schedule = overdueScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if overdueScheduler != nil {
			overdueScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
