package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entities"
)

// DeleteCommand removes books by id or by list offset. Without -yes it
// lists what would go and asks first; the confirmed books are then deleted
// by id so a concurrent change cannot shift the selection.
type DeleteCommand struct {
	DatabasePath string
	IDs          string
	Offsets      string
	Yes          bool

	In  io.Reader
	Out io.Writer
}

func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{}
}

func (cmd *DeleteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the journal database")
	fs.StringVar(&cmd.IDs, "id", "", "Comma-separated book ids")
	fs.StringVar(&cmd.Offsets, "offset", "", "Comma-separated positions in the title-sorted list (see 'list')")
	fs.BoolVar(&cmd.Yes, "yes", false, "Do not ask for confirmation")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s delete (-id <ids> | -offset <n,...>) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete books from the journal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s delete -offset 0\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s delete -offset 0,2 -yes\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if (cmd.IDs == "") == (cmd.Offsets == "") {
		return fmt.Errorf("exactly one of -id or -offset is required")
	}
	if cmd.Offsets != "" {
		if _, err := parseOffsets(cmd.Offsets); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *DeleteCommand) Run() error {
	out := stdout(cmd.Out)
	ctx := context.Background()

	j, err := openJournal(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer j.Close()

	if cmd.Yes && cmd.Offsets != "" {
		offsets, _ := parseOffsets(cmd.Offsets)
		removed, err := j.store.DeleteAtOffsets(ctx, offsets...)
		if err != nil {
			return fmt.Errorf("failed to delete books: %w", err)
		}
		printDeleted(out, removed)
		return nil
	}

	selected, err := cmd.selectBooks(ctx, j)
	if err != nil {
		return err
	}

	if !cmd.Yes {
		fmt.Fprintln(out, "Delete book")
		for _, b := range selected {
			fmt.Fprintf(out, "  %s by %s\n", b.DisplayTitle(), b.DisplayAuthor())
		}
		if !confirm(cmd.In, out, "Are you sure? [y/N] ") {
			fmt.Fprintln(out, "Nothing deleted")
			return nil
		}
	}

	ids := make([]string, 0, len(selected))
	for _, b := range selected {
		ids = append(ids, b.ID)
	}
	if err := j.store.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("failed to delete books: %w", err)
	}
	printDeleted(out, selected)
	return nil
}

func (cmd *DeleteCommand) selectBooks(ctx context.Context, j *journal) ([]entities.Book, error) {
	if cmd.IDs != "" {
		var selected []entities.Book
		for _, id := range splitIDs(cmd.IDs) {
			book, err := j.store.Get(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to load book %s: %w", id, err)
			}
			selected = append(selected, *book)
		}
		return selected, nil
	}

	offsets, err := parseOffsets(cmd.Offsets)
	if err != nil {
		return nil, err
	}
	list, err := j.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	seen := make(map[int]bool, len(offsets))
	var selected []entities.Book
	for _, o := range offsets {
		if o < 0 || o >= len(list) {
			return nil, fmt.Errorf("offset %d out of range: the journal has %d books", o, len(list))
		}
		if seen[o] {
			continue
		}
		seen[o] = true
		selected = append(selected, list[o])
	}
	return selected, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printDeleted(out io.Writer, removed []entities.Book) {
	for _, b := range removed {
		fmt.Fprintf(out, "Deleted %s\n", b.DisplayTitle())
	}
}
