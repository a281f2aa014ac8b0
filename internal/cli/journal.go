package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/database"
	auditRepo "github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/rating"
)

// Terminals have no color for off stars, so they get their own glyph.
var terminalStars = rating.Widget{
	Max:      rating.DefaultMax,
	OnGlyph:  rating.DefaultOnGlyph,
	OffGlyph: "☆",
}

// journal is an open database with the activity log attached, so changes
// made from the command line show up on the activity page too.
type journal struct {
	db      *database.Database
	store   *books.Store
	auditor *audit.Service
	unwatch func()
}

func openJournal(dbPath string) (*journal, error) {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := books.NewStore(db.DB)
	auditor := audit.NewService(auditRepo.NewRepository(db.DB))

	return &journal{
		db:      db,
		store:   store,
		auditor: auditor,
		unwatch: auditor.Watch(store),
	}, nil
}

// Close flushes pending activity entries before closing the database.
func (j *journal) Close() error {
	j.unwatch()
	j.auditor.Wait()
	return j.db.Close()
}

// parseOffsets reads a comma-separated list of list positions.
func parseOffsets(s string) ([]int, error) {
	var offsets []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", part)
		}
		offsets = append(offsets, n)
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("no offsets given")
	}
	return offsets, nil
}

// splitIDs reads a comma-separated list of book ids.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
