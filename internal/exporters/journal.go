package exporters

import (
	"context"
	"fmt"
	"io"
	"log"
)

// JournalExporter exports the whole journal straight from the store.
type JournalExporter struct {
	reader   BookReader
	markdown *MarkdownExporter
}

func NewJournalExporter(reader BookReader, exportDir string) *JournalExporter {
	return &JournalExporter{
		reader:   reader,
		markdown: NewMarkdownExporter(exportDir),
	}
}

// Dir is the directory ExportAll writes to.
func (e *JournalExporter) Dir() string {
	return e.markdown.ExportDir
}

// ExportAll writes every book in the journal to the export directory.
func (e *JournalExporter) ExportAll(ctx context.Context) (ExportResult, error) {
	books, err := e.reader.List(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to load books: %w", err)
	}

	result, err := e.markdown.Export(books)
	if err != nil {
		return result, err
	}

	log.Printf("Export completed: %d books written to %s, %d failed",
		result.BooksProcessed, e.markdown.ExportDir, result.BooksFailed)
	return result, nil
}

// WriteZip streams the whole journal as a zip archive.
func (e *JournalExporter) WriteZip(ctx context.Context, w io.Writer) (ExportResult, error) {
	books, err := e.reader.List(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to load books: %w", err)
	}
	return WriteZip(w, books)
}
