package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db") + "?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo)

	return svc, db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCreate,
		Action:      "book_create",
		Description: "Added book: Dune",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "book_create", saved.Action)
}

func TestService_LogCreate(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogCreate(entities.Book{ID: "abc", Title: "Dune", Author: "Frank Herbert", Genre: entities.GenreScienceFiction, Rating: 5})
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", "book_create").First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, "abc", event.EntityID)
	assert.Equal(t, "Added book: Dune", event.Description)
	assert.Contains(t, event.Metadata, "Frank Herbert")
	assert.Contains(t, event.Metadata, "ScienceFiction")
}

func TestService_LogDeleteUsesDisplayTitle(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDelete(entities.Book{ID: "xyz"})
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", "book_delete").First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, "Deleted book: Unknown Title", event.Description)
}

func TestService_LogExport(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful export", func(t *testing.T) {
		svc.LogExport("Exported 3 books", nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("description = ?", "Exported 3 books").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
	})

	t.Run("failed export", func(t *testing.T) {
		svc.LogExport("Export failed", errors.New(strings.Repeat("x", 600)))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("description = ?", "Export failed").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Len(t, event.ErrorMsg, 500)
	})
}

func TestService_Watch(t *testing.T) {
	svc, db := setupTestService(t)
	store := books.NewStore(db)
	ctx := context.Background()

	stop := svc.Watch(store)

	book, err := store.Create(ctx, entities.NewBook{Title: "Watched"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, book.ID))
	svc.Wait()

	events, total, err := svc.GetEvents(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, e := range events {
		assert.Equal(t, book.ID, e.EntityID)
	}

	stop()
	_, err = store.Create(ctx, entities.NewBook{Title: "Unwatched"})
	require.NoError(t, err)
	svc.Wait()

	_, total, err = svc.GetEvents(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{Action: "old", CreatedAt: time.Now().Add(-72 * time.Hour)}))
	require.NoError(t, svc.Log(&entities.AuditEvent{Action: "new"}))

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, _, err := svc.GetEventsByType("", 10, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	// "é" is two bytes; a plain byte cut at 7 would split the fourth one.
	got := truncate(strings.Repeat("é", 10), 10)
	assert.True(t, utf8.ValidString(got), "truncated to invalid UTF-8: %q", got)
	assert.Equal(t, "ééé...", got)
	assert.LessOrEqual(t, len(got), 10)
}
