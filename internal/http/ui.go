package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/assets"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/rating"
	"github.com/mrlokans/bookworm/internal/web"
)

// UIController renders the list, add and detail screens.
type UIController struct {
	store    BookStore
	catalog  *assets.Catalog
	sessions *web.SessionManager
	stars    rating.Widget
}

func NewUIController(store BookStore, catalog *assets.Catalog, sessions *web.SessionManager) *UIController {
	if catalog == nil {
		catalog = assets.NewCatalog()
	}
	return &UIController{
		store:    store,
		catalog:  catalog,
		sessions: sessions,
		stars:    rating.New(),
	}
}

// bookRow is one line of the list screen. Offset is the row's position in
// the title-sorted list; the delete forms submit it together with the id.
type bookRow struct {
	Offset int
	Book   entities.Book
	Emoji  string
}

// BooksPage handles GET /
func (controller *UIController) BooksPage(c *gin.Context) {
	list, err := controller.store.List(c.Request.Context())
	if err != nil {
		log.Printf("Error loading books: %v", err)
		controller.renderError(c, http.StatusInternalServerError, "Could not load your books")
		return
	}

	rows := make([]bookRow, 0, len(list))
	for i, b := range list {
		rows = append(rows, bookRow{Offset: i, Book: b, Emoji: rating.Emoji(b.Rating)})
	}

	c.HTML(http.StatusOK, "books", controller.pageData(c, gin.H{
		"Title":      "Bookworm",
		"Rows":       rows,
		"TotalBooks": len(rows),
	}))
}

// addForm is the state of the add screen. It round-trips through a form post
// whenever a star is tapped, so the screen itself holds nothing.
type addForm struct {
	Title  string
	Author string
	Genre  entities.Genre
	Rating int
	Review string
}

// NewBookPage handles GET and POST /books/new
// A "tap" value selects a star and re-renders the form. Taps are posted so
// the CSRF token and the draft never end up in a URL; GET reads the same
// fields from the query string for prefilled links.
func (controller *UIController) NewBookPage(c *gin.Context) {
	field := c.Query
	if c.Request.Method == http.MethodPost {
		field = c.PostForm
	}

	form := addForm{
		Title:  field("title"),
		Author: field("author"),
		Genre:  entities.DefaultGenre,
		Rating: rating.DefaultValue,
		Review: field("review"),
	}
	if g := field("genre"); g != "" {
		form.Genre = entities.Genre(g)
	}
	if v := field("rating"); v != "" {
		form.Rating = rating.Parse(v, controller.stars.Max)
	}
	if tap := field("tap"); tap != "" {
		i, err := strconv.Atoi(tap)
		if err == nil {
			err = controller.stars.Tap(rating.Bind(&form.Rating), i)
		}
		if err != nil {
			log.Printf("Ignoring star tap %q: %v", tap, err)
		}
	}

	c.HTML(http.StatusOK, "book_new", controller.pageData(c, gin.H{
		"Title":  "Add Book",
		"Form":   form,
		"Genres": entities.Genres,
		"Stars":  controller.stars.Glyphs(form.Rating),
	}))
}

// CreateBook handles POST /books
// The screen is dismissed even when saving fails; the failure is logged
// and reported through the flash message.
func (controller *UIController) CreateBook(c *gin.Context) {
	nb := entities.NewBook{
		Title:  c.PostForm("title"),
		Author: c.PostForm("author"),
		Genre:  entities.Genre(c.DefaultPostForm("genre", string(entities.DefaultGenre))),
		Rating: rating.Parse(c.PostForm("rating"), controller.stars.Max),
		Review: c.PostForm("review"),
	}

	book, err := controller.store.Create(c.Request.Context(), nb)
	if err != nil {
		log.Printf("Failed to save book %q: %v", nb.Title, err)
		controller.flash(c, web.FlashError, "The book could not be saved")
	} else {
		controller.flash(c, web.FlashSuccess, "Added "+book.DisplayTitle())
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// DeleteAtOffsets handles POST /books/delete
// Each row carries the offset and the id it was rendered with. If the list
// moved since then, nothing is deleted.
func (controller *UIController) DeleteAtOffsets(c *gin.Context) {
	rows, ok := parseRows(c.PostFormArray("row"))
	if !ok {
		controller.flash(c, web.FlashError, "Select at least one book to delete")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	removed, err := controller.store.DeleteListed(c.Request.Context(), rows)
	switch {
	case errors.Is(err, books.ErrInvalidOffset), errors.Is(err, books.ErrListChanged):
		controller.flash(c, web.FlashError, "The list changed, nothing was deleted")
	case err != nil:
		log.Printf("Failed to delete listed books %v: %v", rows, err)
		controller.flash(c, web.FlashError, "The books could not be deleted")
	case len(removed) == 1:
		controller.flash(c, web.FlashSuccess, "Deleted "+removed[0].DisplayTitle())
	default:
		controller.flash(c, web.FlashSuccess, "Deleted "+strconv.Itoa(len(removed))+" books")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// BookPage handles GET /books/:id
func (controller *UIController) BookPage(c *gin.Context) {
	book, ok := controller.loadBook(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "book", controller.pageData(c, gin.H{
		"Title": book.NavigationTitle(),
		"Book":  book,
		"Stars": controller.stars.Glyphs(book.Rating),
	}))
}

// ConfirmDeletePage handles GET /books/:id/delete
func (controller *UIController) ConfirmDeletePage(c *gin.Context) {
	book, ok := controller.loadBook(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "book_delete", controller.pageData(c, gin.H{
		"Title": "Delete book",
		"Book":  book,
	}))
}

// DeleteBook handles POST /books/:id/delete
func (controller *UIController) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	book, err := controller.store.Get(c.Request.Context(), id)
	if err == nil {
		err = controller.store.Delete(c.Request.Context(), id)
	}

	switch {
	case errors.Is(err, books.ErrBookNotFound):
		controller.flash(c, web.FlashError, "That book no longer exists")
	case err != nil:
		log.Printf("Failed to delete book %s: %v", id, err)
		controller.flash(c, web.FlashError, "The book could not be deleted")
	default:
		controller.flash(c, web.FlashSuccess, "Deleted "+book.DisplayTitle())
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GenreIllustration handles GET /static/genres/:file
func (controller *UIController) GenreIllustration(c *gin.Context) {
	data, key, err := controller.catalog.Lookup(c.Param("file"))
	if err != nil {
		log.Printf("Illustration lookup failed: %v", err)
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Illustration", key)
	c.Data(http.StatusOK, assets.ContentType, data)
}

func (controller *UIController) loadBook(c *gin.Context) (*entities.Book, bool) {
	book, err := controller.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, books.ErrBookNotFound) {
		controller.renderError(c, http.StatusNotFound, "Book not found")
		return nil, false
	}
	if err != nil {
		log.Printf("Error loading book %s: %v", c.Param("id"), err)
		controller.renderError(c, http.StatusInternalServerError, "Could not load the book")
		return nil, false
	}
	return book, true
}

func (controller *UIController) renderError(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, ErrorResponse{Error: message})
		return
	}
	c.HTML(status, "error", controller.pageData(c, gin.H{
		"Title": "Error",
		"Error": message,
	}))
}

func (controller *UIController) flash(c *gin.Context, kind, message string) {
	if controller.sessions == nil {
		return
	}
	controller.sessions.PutFlash(c.Request.Context(), kind, message)
}

// pageData adds what the shared layout needs to a page's own data.
func (controller *UIController) pageData(c *gin.Context, data gin.H) gin.H {
	data["CSRFField"] = web.CSRFTokenField(c)
	data["ReadOnly"] = web.IsReadOnly(c)
	if controller.sessions != nil {
		data["Flash"] = controller.sessions.PopFlash(c.Request.Context())
	}
	return data
}
