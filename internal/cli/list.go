package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/rating"
)

// ListCommand prints the journal sorted by title. The first column is the
// offset accepted by "delete -offset".
type ListCommand struct {
	DatabasePath string
	ShowIDs      bool

	Out io.Writer
}

func NewListCommand() *ListCommand {
	return &ListCommand{}
}

func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the journal database")
	fs.BoolVar(&cmd.ShowIDs, "ids", false, "Include book ids in the output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List all books sorted by title.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ListCommand) Run() error {
	out := stdout(cmd.Out)

	j, err := openJournal(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer j.Close()

	list, err := j.store.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No books yet")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, b := range list {
		title := b.DisplayTitle()
		if b.IsPoorlyRated() {
			title += " (!)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s", i, rating.Emoji(b.Rating), title, b.DisplayAuthor(), terminalStars.Render(b.Rating))
		if cmd.ShowIDs {
			fmt.Fprintf(tw, "\t%s", b.ID)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d books\n", len(list))
	return nil
}
