package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/assets"
	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/database"
	auditRepo "github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/exporters"
	http_controllers "github.com/mrlokans/bookworm/internal/http"
	"github.com/mrlokans/bookworm/internal/scheduler"
	"github.com/mrlokans/bookworm/internal/tasks"
	"github.com/mrlokans/bookworm/internal/web"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	// Cancelling the base context ends open event streams, which would
	// otherwise hold Shutdown until the timeout.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after the last request is done
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes SESSION_SECRET (hex or raw). An empty secret yields a
// random one, which only lasts for the life of the process.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set SESSION_SECRET to persist)")
	return secret, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookworm v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store := books.NewStore(db.DB)

	// Every committed change lands in the activity log
	auditor := audit.NewService(auditRepo.NewRepository(db.DB))
	unwatch := auditor.Watch(store)

	exporter := exporters.NewJournalExporter(store, cfg.Export.Dir)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
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

		// Register task queues
		taskClient.Register(
			tasks.NewExportJournalQueue(exporter, auditor),
			tasks.NewCleanupActivityQueue(auditor),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Audit.RetentionDays > 0 {
			if _, err := taskClient.Enqueue(taskCtx, tasks.CleanupActivityTask{RetentionDays: cfg.Audit.RetentionDays}); err != nil {
				log.Printf("WARNING: Failed to enqueue activity cleanup: %v", err)
			}
		}
	}

	// Scheduled markdown export; runs inline when the queue is disabled
	var queue scheduler.Enqueuer
	if taskClient != nil {
		queue = taskClient
	}
	exportScheduler := scheduler.NewExportScheduler(cfg.Export, queue, exporter, auditor)
	if err := exportScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: Export scheduler not started: %v", err)
	}

	// Sessions carry flash messages between the form post and the list
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := web.NewSessionManager(sqlDB, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	secret, err := csrfSecret(cfg.Session.Secret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	if cfg.HTTP.ReadOnly {
		log.Printf("Read-only mode enabled - write operations will be blocked")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Store:           store,
		Database:        db,
		Auditor:         auditor,
		Catalog:         assets.NewCatalog(),
		SessionManager:  sessionManager,
		CSRFSecret:      secret,
		SecureCookies:   cfg.Session.SecureCookies,
		ReadOnly:        web.NewReadOnly(cfg.HTTP.ReadOnly),
		TaskClient:      taskClient,
		ExportScheduler: exportScheduler,
		Version:         version,
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		exportScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		unwatch()
		auditor.Wait()
	}

	Serve(router, cfg, onShutdown)
}
