package exporters

import (
	"context"

	"github.com/mrlokans/bookworm/internal/entities"
)

// BookReader is the read side of the book store used by exports.
type BookReader interface {
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id string) (*entities.Book, error)
}

type BookExporter interface {
	Export(books []entities.Book) (ExportResult, error)
}

type ExportResult struct {
	BooksProcessed int      `json:"books_processed"`
	BooksFailed    int      `json:"books_failed"`
	Files          []string `json:"files,omitempty"`
	FilesRemoved   int      `json:"files_removed,omitempty"`
}
