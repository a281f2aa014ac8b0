package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entities"
)

// ShowCommand prints one book, picked by id or by list offset.
type ShowCommand struct {
	DatabasePath string
	ID           string
	Offset       int

	Out io.Writer
}

func NewShowCommand() *ShowCommand {
	return &ShowCommand{Offset: -1}
}

func (cmd *ShowCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the journal database")
	fs.StringVar(&cmd.ID, "id", "", "Book id")
	fs.IntVar(&cmd.Offset, "offset", -1, "Position in the title-sorted list (see 'list')")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s show (-id <id> | -offset <n>) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show a single book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if (cmd.ID == "") == (cmd.Offset < 0) {
		return fmt.Errorf("exactly one of -id or -offset is required")
	}
	return nil
}

func (cmd *ShowCommand) Run() error {
	out := stdout(cmd.Out)

	j, err := openJournal(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer j.Close()

	book, err := cmd.find(context.Background(), j)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, book.NavigationTitle())
	fmt.Fprintf(out, "%s\n\n", book.Genre.Badge())
	fmt.Fprintln(out, book.DisplayAuthor())
	fmt.Fprintln(out, book.DisplayReview())
	fmt.Fprintln(out, terminalStars.Render(book.Rating))
	fmt.Fprintf(out, "\nBook added: %s\n", book.AddedOn())
	fmt.Fprintf(out, "ID: %s\n", book.ID)
	return nil
}

func (cmd *ShowCommand) find(ctx context.Context, j *journal) (*entities.Book, error) {
	if cmd.ID != "" {
		book, err := j.store.Get(ctx, cmd.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load book %s: %w", cmd.ID, err)
		}
		return book, nil
	}

	list, err := j.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if cmd.Offset >= len(list) {
		return nil, fmt.Errorf("offset %d out of range: the journal has %d books", cmd.Offset, len(list))
	}
	return &list[cmd.Offset], nil
}
