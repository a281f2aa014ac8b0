package exporters

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/rating"
	"github.com/mrlokans/bookworm/internal/utils"
)

// FrontMatter is the YAML header written at the top of every exported book.
type FrontMatter struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Genre       string   `yaml:"genre"`
	Rating      int      `yaml:"rating"`
	Added       string   `yaml:"added"`
	ContentType string   `yaml:"content_type"`
	Tags        []string `yaml:"tags"`
}

func newFrontMatter(book *entities.Book) FrontMatter {
	tags := []string{"books"}
	if book.Genre != "" {
		tags = append(tags, strings.ToLower(string(book.Genre)))
	}
	return FrontMatter{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Genre:       string(book.Genre),
		Rating:      book.Rating,
		Added:       book.Date.Format(time.RFC3339),
		ContentType: "book_review",
		Tags:        tags,
	}
}

var stars = rating.Widget{
	Max:      rating.DefaultMax,
	OnGlyph:  rating.DefaultOnGlyph,
	OffGlyph: "☆",
}

// GenerateMarkdown renders a single journal entry.
func GenerateMarkdown(book *entities.Book) string {
	var builder strings.Builder

	header, err := yaml.Marshal(newFrontMatter(book))
	if err != nil {
		// Only plain strings and ints go in, so this is unreachable in practice.
		log.Printf("Failed to encode front matter for book %s: %v", book.ID, err)
	}

	builder.WriteString("---\n")
	builder.Write(header)
	builder.WriteString("---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", book.DisplayTitle())
	fmt.Fprintf(&builder, "**Author:** %s\n\n", book.DisplayAuthor())
	fmt.Fprintf(&builder, "**Genre:** %s\n\n", book.Genre.Badge())
	fmt.Fprintf(&builder, "**Rating:** %s %s\n\n", stars.Render(book.Rating), rating.Emoji(book.Rating))
	fmt.Fprintf(&builder, "_Book added: %s_\n\n", book.AddedOn())
	builder.WriteString("## Review\n\n")
	fmt.Fprintf(&builder, "%s\n", book.DisplayReview())

	return builder.String()
}

// Filename is the base file name used for a book in exports.
func Filename(book *entities.Book) string {
	return utils.SanitizeFilename(book.DisplayTitle()) + ".md"
}

// WriteZip writes every book as books/<title>.md into a zip archive.
// Titles that collide get a numeric suffix.
func WriteZip(w io.Writer, books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	zipWriter := zip.NewWriter(w)
	taken := make(map[string]bool, len(books))

	for i := range books {
		book := &books[i]
		name := utils.UniqueFilename(utils.SanitizeFilename(book.DisplayTitle()), ".md", taken)
		entry, err := zipWriter.CreateHeader(&zip.FileHeader{
			Name:     "books/" + name,
			Method:   zip.Deflate,
			Modified: book.Date,
		})
		if err != nil {
			result.BooksFailed++
			continue
		}
		if _, err := io.WriteString(entry, GenerateMarkdown(book)); err != nil {
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
		result.Files = append(result.Files, name)
	}

	if err := zipWriter.Close(); err != nil {
		return result, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return result, nil
}

// MarkdownExporter writes one markdown file per book into ExportDir.
type MarkdownExporter struct {
	ExportDir string
}

func NewMarkdownExporter(exportDir string) *MarkdownExporter {
	return &MarkdownExporter{ExportDir: exportDir}
}

func (exporter *MarkdownExporter) ensureDir() error {
	if exporter.ExportDir == "" {
		return fmt.Errorf("export directory not configured")
	}
	if err := os.MkdirAll(exporter.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	return nil
}

// Export makes the export directory mirror the given books: one file per
// book is written and markdown files of books no longer in the journal are
// removed. Other files in the directory are left alone.
func (exporter *MarkdownExporter) Export(books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	if err := exporter.ensureDir(); err != nil {
		return result, err
	}

	taken := make(map[string]bool, len(books))
	for i := range books {
		book := &books[i]
		// A failed write still claims its name so the previous copy survives.
		name := utils.UniqueFilename(utils.SanitizeFilename(book.DisplayTitle()), ".md", taken)
		outputPath := filepath.Join(exporter.ExportDir, name)

		if err := os.WriteFile(outputPath, []byte(GenerateMarkdown(book)), 0644); err != nil {
			log.Printf("Failed to export book '%s' to %s: %v", book.DisplayTitle(), outputPath, err)
			result.BooksFailed++
			continue
		}
		result.BooksProcessed++
		result.Files = append(result.Files, name)
	}

	if result.BooksFailed > 0 && result.BooksProcessed == 0 {
		return result, fmt.Errorf("failed to export %d books", result.BooksFailed)
	}

	removed, err := exporter.prune(taken)
	result.FilesRemoved = removed
	if err != nil {
		return result, err
	}
	return result, nil
}

// prune deletes markdown files in the export directory whose lower-cased
// name is not in keep.
func (exporter *MarkdownExporter) prune(keep map[string]bool) (int, error) {
	entries, err := os.ReadDir(exporter.ExportDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read export directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || filepath.Ext(name) != ".md" || keep[strings.ToLower(name)] {
			continue
		}
		if err := os.Remove(filepath.Join(exporter.ExportDir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove stale export %s: %w", name, err)
		}
		log.Printf("Removed stale export %s", name)
		removed++
	}
	return removed, nil
}

var _ BookExporter = (*MarkdownExporter)(nil)
