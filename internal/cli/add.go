package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/rating"
)

// AddCommand adds a book to the journal.
type AddCommand struct {
	DatabasePath string
	Title        string
	Author       string
	Genre        string
	Rating       string
	Review       string

	Out io.Writer
}

func NewAddCommand() *AddCommand {
	return &AddCommand{}
}

func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the journal database")
	fs.StringVar(&cmd.Title, "title", "", "Name of the book")
	fs.StringVar(&cmd.Author, "author", "", "Author's name")
	fs.StringVar(&cmd.Genre, "genre", string(entities.DefaultGenre), "Genre of the book")
	fs.StringVar(&cmd.Rating, "rating", strconv.Itoa(rating.DefaultValue), "Star rating from 1 to 5")
	fs.StringVar(&cmd.Review, "review", "", "Your review")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add -title <title> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Add a book to the journal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nGenres:")
		for _, g := range entities.Genres {
			fmt.Fprintf(os.Stderr, " %s", g)
		}
		fmt.Fprintf(os.Stderr, "\n\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s add -title Dune -author \"Frank Herbert\" -genre ScienceFiction -rating 5\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *AddCommand) Run() error {
	out := stdout(cmd.Out)

	j, err := openJournal(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer j.Close()

	book, err := j.store.Create(context.Background(), entities.NewBook{
		Title:  cmd.Title,
		Author: cmd.Author,
		Genre:  entities.Genre(cmd.Genre),
		Rating: rating.Parse(cmd.Rating, rating.DefaultMax),
		Review: cmd.Review,
	})
	if err != nil {
		return fmt.Errorf("failed to add book: %w", err)
	}

	fmt.Fprintf(out, "Added %q by %s (%s)\n", book.DisplayTitle(), book.DisplayAuthor(), book.ID)
	return nil
}
