package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/exporters"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{
		store: store,
	}
}

// CreateBookRequest is the body accepted by POST /api/books.
type CreateBookRequest struct {
	Title  string         `json:"title"`
	Author string         `json:"author"`
	Genre  entities.Genre `json:"genre"`
	Rating int            `json:"rating"`
	Review string         `json:"review"`
}

// DeleteBooksRequest selects books either by identity or by list position.
type DeleteBooksRequest struct {
	IDs     []string `json:"ids"`
	Offsets []int    `json:"offsets"`
}

// GetAllBooks handles GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.store.List(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "get book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// CreateBook handles POST /api/books
// Fields are stored as given; the API performs no validation.
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := controller.store.Create(c.Request.Context(), entities.NewBook{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		respondStoreError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// DeleteBook handles DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}

// DeleteBooks handles DELETE /api/books
// Exactly one of ids or offsets must be given.
func (controller *BooksController) DeleteBooks(c *gin.Context) {
	var req DeleteBooksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	switch {
	case len(req.IDs) > 0 && len(req.Offsets) > 0:
		respondBadRequest(c, "specify either ids or offsets, not both")
	case len(req.IDs) > 0:
		ids := distinct(req.IDs)
		if err := controller.store.Delete(ctx, ids...); err != nil {
			respondStoreError(c, err, "delete books")
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": ids, "count": len(ids)})
	case len(req.Offsets) > 0:
		removed, err := controller.store.DeleteAtOffsets(ctx, req.Offsets...)
		if err != nil {
			respondStoreError(c, err, "delete books at offsets")
			return
		}
		ids := make([]string, 0, len(removed))
		for _, b := range removed {
			ids = append(ids, b.ID)
		}
		c.JSON(http.StatusOK, gin.H{"deleted": ids, "count": len(ids)})
	default:
		respondBadRequest(c, "ids or offsets are required")
	}
}

// DownloadMarkdown handles GET /api/books/:id/markdown
func (controller *BooksController) DownloadMarkdown(c *gin.Context) {
	book, err := controller.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "get book for markdown")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exporters.Filename(book)))
	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.String(http.StatusOK, exporters.GenerateMarkdown(book))
}

// ExportAll handles GET /api/export
// Streams a zip archive with one markdown file per book.
func (controller *BooksController) ExportAll(c *gin.Context) {
	books, err := controller.store.List(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "list books for export")
		return
	}

	zipFilename := fmt.Sprintf("bookworm-%s.zip", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", zipFilename))
	c.Header("Content-Type", "application/zip")
	c.Status(http.StatusOK)

	if _, err := exporters.WriteZip(c.Writer, books); err != nil {
		// Headers are already sent; the truncated archive is all we can do.
		c.Error(err)
	}
}

// distinct drops repeated ids, keeping the first occurrence.
func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
