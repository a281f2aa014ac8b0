package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookworm/internal/entities"
)

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "bookworm.db")
}

func addBook(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewAddCommand()
	require.NoError(t, cmd.ParseFlags(append([]string{"-db", dbPath}, args...)))
	cmd.Out = &out
	require.NoError(t, cmd.Run())
	return out.String()
}

func listBooks(t *testing.T, dbPath string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewListCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath}))
	cmd.Out = &out
	require.NoError(t, cmd.Run())
	return out.String()
}

func storedBooks(t *testing.T, dbPath string) []entities.Book {
	t.Helper()
	j, err := openJournal(dbPath)
	require.NoError(t, err)
	defer j.Close()

	list, err := j.store.List(context.Background())
	require.NoError(t, err)
	return list
}

func TestAddCommand(t *testing.T) {
	dbPath := tempDB(t)

	out := addBook(t, dbPath, "-title", "Dune", "-author", "Frank Herbert", "-genre", "ScienceFiction", "-rating", "5", "-review", "Great")
	assert.Contains(t, out, `Added "Dune" by Frank Herbert`)

	list := storedBooks(t, dbPath)
	require.Len(t, list, 1)
	assert.Equal(t, "Dune", list[0].Title)
	assert.Equal(t, entities.GenreScienceFiction, list[0].Genre)
	assert.Equal(t, 5, list[0].Rating)
	assert.Equal(t, "Great", list[0].Review)
	assert.False(t, list[0].Date.IsZero())
}

func TestAddCommand_Defaults(t *testing.T) {
	dbPath := tempDB(t)
	addBook(t, dbPath)

	list := storedBooks(t, dbPath)
	require.Len(t, list, 1)
	assert.Equal(t, entities.GenrePoetry, list[0].Genre)
	assert.Equal(t, 3, list[0].Rating)
}

func TestAddCommand_ClampsRating(t *testing.T) {
	dbPath := tempDB(t)
	addBook(t, dbPath, "-title", "High", "-rating", "9")
	addBook(t, dbPath, "-title", "Low", "-rating", "0")

	list := storedBooks(t, dbPath)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].Rating)
	assert.Equal(t, 1, list[1].Rating)
}

func TestListCommand(t *testing.T) {
	dbPath := tempDB(t)

	assert.Contains(t, listBooks(t, dbPath), "No books yet")

	addBook(t, dbPath, "-title", "Ben", "-rating", "1")
	addBook(t, dbPath, "-title", "Anna", "-rating", "4")

	out := listBooks(t, dbPath)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "0"))
	assert.Contains(t, lines[0], "Anna")
	assert.Contains(t, lines[0], "★★★★☆")
	assert.Contains(t, lines[1], "Ben (!)")
	assert.Contains(t, lines[1], "😴")
	assert.Contains(t, out, "2 books")
}

func TestShowCommand(t *testing.T) {
	dbPath := tempDB(t)
	addBook(t, dbPath, "-title", "Emma", "-author", "Jane Austen", "-genre", "Romance")

	t.Run("by offset", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewShowCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-offset", "0"}))
		cmd.Out = &out
		require.NoError(t, cmd.Run())

		assert.Contains(t, out.String(), "Emma")
		assert.Contains(t, out.String(), "ROMANCE")
		assert.Contains(t, out.String(), "No review")
		assert.Contains(t, out.String(), "Book added: ")
	})

	t.Run("out of range", func(t *testing.T) {
		cmd := NewShowCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-offset", "3"}))
		cmd.Out = &bytes.Buffer{}
		assert.Error(t, cmd.Run())
	})

	t.Run("requires a selector", func(t *testing.T) {
		assert.Error(t, NewShowCommand().ParseFlags([]string{"-db", dbPath}))
	})
}

func TestDeleteCommand(t *testing.T) {
	t.Run("asks before deleting", func(t *testing.T) {
		dbPath := tempDB(t)
		addBook(t, dbPath, "-title", "Keep")

		var out bytes.Buffer
		cmd := NewDeleteCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-offset", "0"}))
		cmd.In = strings.NewReader("n\n")
		cmd.Out = &out
		require.NoError(t, cmd.Run())

		assert.Contains(t, out.String(), "Delete book")
		assert.Contains(t, out.String(), "Are you sure?")
		assert.Contains(t, out.String(), "Nothing deleted")
		assert.Len(t, storedBooks(t, dbPath), 1)
	})

	t.Run("confirmed delete by offset", func(t *testing.T) {
		dbPath := tempDB(t)
		addBook(t, dbPath, "-title", "Only")

		var out bytes.Buffer
		cmd := NewDeleteCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-offset", "0"}))
		cmd.In = strings.NewReader("y\n")
		cmd.Out = &out
		require.NoError(t, cmd.Run())

		assert.Contains(t, out.String(), "Deleted Only")
		assert.Empty(t, storedBooks(t, dbPath))
	})

	t.Run("several offsets without prompt", func(t *testing.T) {
		dbPath := tempDB(t)
		for _, title := range []string{"Charlie", "Alpha", "Bravo"} {
			addBook(t, dbPath, "-title", title)
		}

		cmd := NewDeleteCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-offset", "0,2", "-yes"}))
		cmd.Out = &bytes.Buffer{}
		require.NoError(t, cmd.Run())

		list := storedBooks(t, dbPath)
		require.Len(t, list, 1)
		assert.Equal(t, "Bravo", list[0].Title)
	})

	t.Run("by id", func(t *testing.T) {
		dbPath := tempDB(t)
		addBook(t, dbPath, "-title", "Gone")
		id := storedBooks(t, dbPath)[0].ID

		cmd := NewDeleteCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-id", id, "-yes"}))
		cmd.Out = &bytes.Buffer{}
		require.NoError(t, cmd.Run())
		assert.Empty(t, storedBooks(t, dbPath))
	})

	t.Run("invalid offset deletes nothing", func(t *testing.T) {
		dbPath := tempDB(t)
		addBook(t, dbPath, "-title", "Safe")

		cmd := NewDeleteCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-offset", "0,5", "-yes"}))
		cmd.Out = &bytes.Buffer{}
		assert.Error(t, cmd.Run())
		assert.Len(t, storedBooks(t, dbPath), 1)
	})

	t.Run("flag validation", func(t *testing.T) {
		assert.Error(t, NewDeleteCommand().ParseFlags([]string{}))
		assert.Error(t, NewDeleteCommand().ParseFlags([]string{"-id", "a", "-offset", "0"}))
		assert.Error(t, NewDeleteCommand().ParseFlags([]string{"-offset", "x"}))
	})
}

func TestExportCommand(t *testing.T) {
	dbPath := tempDB(t)
	addBook(t, dbPath, "-title", "Dune")
	addBook(t, dbPath, "-title", "Emma")

	t.Run("to a directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "export")
		var out bytes.Buffer
		cmd := NewExportCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-output", dir}))
		cmd.Out = &out
		require.NoError(t, cmd.Run())

		assert.Contains(t, out.String(), "Exported 2 books")
		assert.FileExists(t, filepath.Join(dir, "Dune.md"))
		assert.FileExists(t, filepath.Join(dir, "Emma.md"))
	})

	t.Run("to a zip", func(t *testing.T) {
		zipPath := filepath.Join(t.TempDir(), "journal.zip")
		cmd := NewExportCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-db", dbPath, "-zip", zipPath}))
		cmd.Out = &bytes.Buffer{}
		require.NoError(t, cmd.Run())

		data, err := os.ReadFile(zipPath)
		require.NoError(t, err)
		archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Len(t, archive.File, 2)
	})

	t.Run("records the export in the activity log", func(t *testing.T) {
		j, err := openJournal(dbPath)
		require.NoError(t, err)
		defer j.Close()

		events, total, err := j.auditor.GetEventsByType(entities.AuditEventExport, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Contains(t, events[0].Description, "Exported 2 books")
	})
}

func TestParseOffsets(t *testing.T) {
	got, err := parseOffsets(" 2, 0 ,")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, got)

	_, err = parseOffsets("")
	assert.Error(t, err)

	_, err = parseOffsets("1,b")
	assert.Error(t, err)
}
