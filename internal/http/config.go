package http

import (
	"github.com/mrlokans/bookworm/internal/assets"
	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/database"
	"github.com/mrlokans/bookworm/internal/scheduler"
	"github.com/mrlokans/bookworm/internal/tasks"
	"github.com/mrlokans/bookworm/internal/web"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Store    BookStore
	Database *database.Database
	Auditor  *audit.Service
	Catalog  *assets.Catalog

	// Browser sessions and form protection (optional)
	SessionManager *web.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	ReadOnly *web.ReadOnly

	// Background work (optional)
	TaskClient      *tasks.Client
	ExportScheduler *scheduler.ExportScheduler

	// Application info
	Version string
}
