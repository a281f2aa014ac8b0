package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/web"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(web.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(web.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(web.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	router.Use(cfg.ReadOnly.Handler())

	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	health := NewHealthController(cfg.Database, cfg.Store, cfg.Version)
	booksController := NewBooksController(cfg.Store)
	streamController := NewStreamController(cfg.Store)
	uiController := NewUIController(cfg.Store, cfg.Catalog, cfg.SessionManager)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.DELETE("/api/books", booksController.DeleteBooks)
	router.GET("/api/books/stream", streamController.Stream)
	router.GET("/api/books/:id", booksController.GetBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.GET("/api/books/:id/markdown", booksController.DownloadMarkdown)
	router.GET("/api/export", booksController.ExportAll)

	// Activity log
	if cfg.Auditor != nil {
		auditController := NewAuditController(cfg.Auditor, cfg.SessionManager)
		router.GET("/api/audit", auditController.GetAuditEvents)
		router.GET("/activity", auditController.ActivityPage)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.ExportScheduler)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	if cfg.ExportScheduler != nil {
		router.POST("/api/export/run", RunExport(cfg.ExportScheduler))
	}

	// UI routes
	router.GET("/", uiController.BooksPage)
	router.GET("/books/new", uiController.NewBookPage)
	router.POST("/books/new", uiController.NewBookPage)
	router.POST("/books", uiController.CreateBook)
	router.POST("/books/delete", uiController.DeleteAtOffsets)
	router.GET("/books/:id", uiController.BookPage)
	router.GET("/books/:id/delete", uiController.ConfirmDeletePage)
	router.POST("/books/:id/delete", uiController.DeleteBook)
	router.GET("/static/genres/:file", uiController.GenreIllustration)

	return router, nil
}
