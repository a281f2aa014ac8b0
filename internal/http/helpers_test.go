package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookworm/internal/database"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestStore(t *testing.T) (*database.Database, *books.Store) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "bookworm.db"), database.WithLogLevel(logger.Silent))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, books.NewStore(db.DB)
}

func seedBooks(t *testing.T, store *books.Store, titles ...string) []*entities.Book {
	t.Helper()
	created := make([]*entities.Book, 0, len(titles))
	for _, title := range titles {
		b, err := store.Create(context.Background(), entities.NewBook{
			Title:  title,
			Author: "Author of " + title,
			Genre:  entities.GenreMystery,
			Rating: 4,
		})
		require.NoError(t, err)
		created = append(created, b)
	}
	return created
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   map[int]string
		ok     bool
	}{
		{name: "single", values: []string{"0:abc"}, want: map[int]string{0: "abc"}, ok: true},
		{name: "several", values: []string{"2:c", "0:a"}, want: map[int]string{0: "a", 2: "c"}, ok: true},
		{name: "repeated row", values: []string{"1:b", "1:b"}, want: map[int]string{1: "b"}, ok: true},
		{name: "empty", values: nil, ok: false},
		{name: "missing id", values: []string{"1"}, ok: false},
		{name: "blank id", values: []string{"1:"}, ok: false},
		{name: "not a number", values: []string{"x:abc"}, ok: false},
		{name: "one offset two ids", values: []string{"0:a", "0:b"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRows(tt.values)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{query: "", wantPage: 1, wantLimit: 25},
		{query: "?page=3&limit=10", wantPage: 3, wantLimit: 10},
		{query: "?page=-1&limit=1000", wantPage: 1, wantLimit: 25},
		{query: "?page=abc", wantPage: 1, wantLimit: 25},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

			page, limit := parsePage(c, 25, 100)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestRespondStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "not found", err: books.ErrBookNotFound, wantCode: http.StatusNotFound, wantBody: "book_not_found"},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", books.ErrBookNotFound), wantCode: http.StatusNotFound, wantBody: "book_not_found"},
		{name: "invalid offset", err: books.ErrInvalidOffset, wantCode: http.StatusBadRequest, wantBody: "invalid_offset"},
		{name: "list changed", err: fmt.Errorf("%w: row 0", books.ErrListChanged), wantCode: http.StatusConflict, wantBody: "list_changed"},
		{name: "commit failed", err: fmt.Errorf("%w: disk full", books.ErrCommitFailed), wantCode: http.StatusInternalServerError, wantBody: "commit_failed"},
		{name: "anything else", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantBody: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondStoreError(c, tt.err, "test")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotContains(t, w.Body.String(), "disk full")
		})
	}
}

func TestWantsJSON(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("Accept", "application/json")
	assert.True(t, wantsJSON(c))

	c.Request.Header.Set("Accept", "text/html")
	assert.False(t, wantsJSON(c))
}
