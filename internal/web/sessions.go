package web

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/bookworm/internal/config"
)

const (
	sessionKeyFlash     = "flash"
	sessionKeyFlashKind = "flash_kind"
)

// Flash kinds understood by the layout template.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Message string
	Kind    string
}

// SessionManager wraps scs.SessionManager with the journal's flash helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager stores sessions in the journal database.
func NewSessionManager(sqlDB *sql.DB, cfg config.Session) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	if cfg.Lifetime > 0 {
		sm.Lifetime = cfg.Lifetime
	}

	sm.Cookie.Name = "bookworm_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // flash must survive the POST/redirect hop
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// PutFlash queues a message for the next page view.
func (sm *SessionManager) PutFlash(ctx context.Context, kind, message string) {
	sm.Put(ctx, sessionKeyFlash, message)
	sm.Put(ctx, sessionKeyFlashKind, kind)
}

// PopFlash returns and clears the pending message, if any.
func (sm *SessionManager) PopFlash(ctx context.Context) *Flash {
	message := sm.PopString(ctx, sessionKeyFlash)
	kind := sm.PopString(ctx, sessionKeyFlashKind)
	if message == "" {
		return nil
	}
	if kind == "" {
		kind = FlashSuccess
	}
	return &Flash{Message: message, Kind: kind}
}
