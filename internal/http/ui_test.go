package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/database"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/web"
)

type uiHarness struct {
	db     *database.Database
	store  *books.Store
	router *gin.Engine
}

func newUIHarness(t *testing.T, readOnly bool) *uiHarness {
	t.Helper()
	db, store := setupTestStore(t)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessions, err := web.NewSessionManager(sqlDB, config.Session{Lifetime: time.Hour})
	require.NoError(t, err)

	router, err := NewRouter(RouterConfig{
		Store:          store,
		Database:       db,
		SessionManager: sessions,
		ReadOnly:       web.NewReadOnly(readOnly),
		Version:        "test",
	})
	require.NoError(t, err)

	return &uiHarness{db: db, store: store, router: router}
}

func (h *uiHarness) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *uiHarness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestUIController_BooksPage(t *testing.T) {
	h := newUIHarness(t, false)
	seedBooks(t, h.store, "Ben", "Anna")

	poor := seedBooks(t, h.store, "Cats")[0]
	poor.Rating = 1
	require.NoError(t, h.db.DB.Save(poor).Error)

	w := h.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Less(t, strings.Index(body, "Anna"), strings.Index(body, "Ben"), "rows should be sorted by title")
	assert.Contains(t, body, `<div class="poor">Cats</div>`)
	assert.Contains(t, body, "😴")
	assert.Contains(t, body, "😊")
	assert.Contains(t, body, `name="row" value="2:`+poor.ID+`"`)
	assert.Contains(t, body, `form="bulk-delete"`)
	assert.Contains(t, body, `href="/books/new"`)
	assert.Contains(t, body, "3 books")
}

func TestUIController_EmptyList(t *testing.T) {
	h := newUIHarness(t, false)

	w := h.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No books yet")
}

func TestUIController_NewBookPage(t *testing.T) {
	h := newUIHarness(t, false)

	t.Run("defaults", func(t *testing.T) {
		w := h.get("/books/new")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<option value="Poetry" selected>`)
		assert.Contains(t, body, `name="rating" value="3"`)
		assert.Equal(t, 3, strings.Count(body, "color: gold"))
	})

	t.Run("stars post back to the add screen", func(t *testing.T) {
		body := h.get("/books/new").Body.String()
		assert.Contains(t, body, `formaction="/books/new"`)
		assert.NotContains(t, body, "formmethod")
	})

	t.Run("tapping a star keeps the other fields", func(t *testing.T) {
		w := h.post("/books/new", url.Values{
			"title":  {"Dune"},
			"genre":  {"Horror"},
			"rating": {"3"},
			"tap":    {"5"},
		})
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `name="title" value="Dune"`)
		assert.Contains(t, body, `<option value="Horror" selected>`)
		assert.Contains(t, body, `name="rating" value="5"`)
		assert.Equal(t, 5, strings.Count(body, "color: gold"))
	})

	t.Run("out of range tap is ignored", func(t *testing.T) {
		w := h.post("/books/new", url.Values{"rating": {"2"}, "tap": {"9"}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="rating" value="2"`)
	})

	t.Run("query string prefills the form", func(t *testing.T) {
		w := h.get("/books/new?title=Emma&rating=4")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="title" value="Emma"`)
		assert.Contains(t, w.Body.String(), `name="rating" value="4"`)
	})
}

func TestUIController_CreateBook(t *testing.T) {
	h := newUIHarness(t, false)

	w := h.post("/books", url.Values{
		"title":  {"Dune"},
		"author": {"Frank Herbert"},
		"genre":  {"ScienceFiction"},
		"rating": {"5"},
		"review": {"Great"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	list, err := h.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dune", list[0].Title)
	assert.Equal(t, "ScienceFiction", string(list[0].Genre))
	assert.Equal(t, 5, list[0].Rating)

	// The flash survives the redirect.
	page := h.get("/", w.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "Added Dune")
}

func TestUIController_CreateBookDefaults(t *testing.T) {
	h := newUIHarness(t, false)

	w := h.post("/books", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)

	list, err := h.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Poetry", string(list[0].Genre))
	assert.Equal(t, 3, list[0].Rating)
	assert.Equal(t, "Unknown Title", list[0].DisplayTitle())
}

func TestUIController_DeleteAtOffsets(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		h := newUIHarness(t, false)
		only := seedBooks(t, h.store, "Only")[0]

		w := h.post("/books/delete", url.Values{"row": {"0:" + only.ID}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		count, err := h.store.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)

		page := h.get("/", w.Result().Cookies()...)
		assert.Contains(t, page.Body.String(), "Deleted Only")
	})

	t.Run("multiple rows", func(t *testing.T) {
		h := newUIHarness(t, false)
		seeded := seedBooks(t, h.store, "Charlie", "Alpha", "Bravo")
		charlie, alpha := seeded[0], seeded[1]

		w := h.post("/books/delete", url.Values{"row": {"0:" + alpha.ID, "2:" + charlie.ID}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		list, err := h.store.List(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Bravo", list[0].Title)
	})

	t.Run("stale offset deletes nothing", func(t *testing.T) {
		h := newUIHarness(t, false)
		alpha := seedBooks(t, h.store, "Alpha")[0]

		w := h.post("/books/delete", url.Values{"row": {"4:" + alpha.ID}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		count, err := h.store.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		page := h.get("/", w.Result().Cookies()...)
		assert.Contains(t, page.Body.String(), "nothing was deleted")
	})

	t.Run("row taken by a newer book deletes nothing", func(t *testing.T) {
		h := newUIHarness(t, false)
		ben := seedBooks(t, h.store, "Ben")[0]

		page := h.get("/")
		require.Contains(t, page.Body.String(), `value="0:`+ben.ID+`"`)

		// Another client adds a book that sorts ahead of the rendered row.
		seedBooks(t, h.store, "Anna")

		w := h.post("/books/delete", url.Values{"row": {"0:" + ben.ID}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		list, err := h.store.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Anna", "Ben"}, []string{list[0].Title, list[1].Title})

		page = h.get("/", w.Result().Cookies()...)
		assert.Contains(t, page.Body.String(), "The list changed, nothing was deleted")
	})

	t.Run("rows without ids are rejected", func(t *testing.T) {
		h := newUIHarness(t, false)
		seedBooks(t, h.store, "Alpha")

		w := h.post("/books/delete", url.Values{"row": {"0"}})
		require.Equal(t, http.StatusSeeOther, w.Code)

		count, err := h.store.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestUIController_BookPage(t *testing.T) {
	h := newUIHarness(t, false)
	book := seedBooks(t, h.store, "Emma")[0]

	t.Run("renders the detail screen", func(t *testing.T) {
		w := h.get("/books/" + book.ID)
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "/static/genres/Mystery.svg")
		assert.Contains(t, body, "MYSTERY")
		assert.Contains(t, body, "Author of Emma")
		assert.Contains(t, body, "No review")
		assert.Contains(t, body, "Book added: "+book.AddedOn())
		assert.Contains(t, body, "/books/"+book.ID+"/delete")
	})

	t.Run("missing book", func(t *testing.T) {
		w := h.get("/books/does-not-exist")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Book not found")
	})
}

func TestUIController_DeleteFlow(t *testing.T) {
	h := newUIHarness(t, false)
	book := seedBooks(t, h.store, "Emma")[0]

	w := h.get("/books/" + book.ID + "/delete")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Delete book")
	assert.Contains(t, w.Body.String(), "Are you sure?")

	w = h.post("/books/"+book.ID+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)

	_, err := h.store.Get(context.Background(), book.ID)
	assert.ErrorIs(t, err, books.ErrBookNotFound)

	// Deleting again only reports that the book is gone.
	w = h.post("/books/"+book.ID+"/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	page := h.get("/", w.Result().Cookies()...)
	assert.Contains(t, page.Body.String(), "no longer exists")
}

func TestUIController_GenreIllustration(t *testing.T) {
	h := newUIHarness(t, false)

	w := h.get("/static/genres/Horror.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "Horror", w.Header().Get("X-Illustration"))

	w = h.get("/static/genres/Western.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fantasy", w.Header().Get("X-Illustration"))
}

func TestUIController_ReadOnly(t *testing.T) {
	h := newUIHarness(t, true)
	seedBooks(t, h.store, "Alpha")

	w := h.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Read-only mode")
	assert.NotContains(t, w.Body.String(), `action="/books/delete"`)

	w = h.post("/books/delete", url.Values{"row": {"0:any"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	count, err := h.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
