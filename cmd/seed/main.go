// Command seed creates a journal populated with public domain books.
// Usage: go run ./cmd/seed [-db path/to/bookworm.db] [-keep]
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/database"
	auditRepo "github.com/mrlokans/bookworm/internal/database/audit"
	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

const defaultSeedDatabasePath = "./demo/bookworm.db"

func main() {
	dbPath := flag.String("db", defaultSeedDatabasePath, "path to the journal database file")
	keep := flag.Bool("keep", false, "add to an existing journal instead of starting fresh")
	flag.Parse()

	log.Printf("Seeding journal at %s...", *dbPath)

	if !*keep {
		if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove existing journal: %v", err)
		}
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	store := books.NewStore(db.DB)
	auditor := audit.NewService(auditRepo.NewRepository(db.DB))
	defer auditor.Wait()
	unwatch := auditor.Watch(store)
	defer unwatch()

	ctx := context.Background()
	for _, nb := range seedBooks() {
		book, err := store.Create(ctx, nb)
		if err != nil {
			log.Printf("Failed to save book %s: %v", nb.Title, err)
			continue
		}
		log.Printf("Saved: %s by %s (%d stars)", book.DisplayTitle(), book.DisplayAuthor(), book.Rating)
	}

	log.Println("Journal seeded successfully!")
}

// seedBooks covers every genre and rating, plus one entry with no title or
// author to show the fallbacks.
func seedBooks() []entities.NewBook {
	return []entities.NewBook{
		{
			Title:  "The Hobbit",
			Author: "J. R. R. Tolkien",
			Genre:  entities.GenreFantasy,
			Rating: 5,
			Review: "A comfortable adventure that never gets old.",
		},
		{
			Title:  "Frankenstein",
			Author: "Mary Shelley",
			Genre:  entities.GenreHorror,
			Rating: 4,
			Review: "More sorrowful than scary.",
		},
		{
			Title:  "Alice's Adventures in Wonderland",
			Author: "Lewis Carroll",
			Genre:  entities.GenreKids,
			Rating: 4,
			Review: "Curiouser and curiouser.",
		},
		{
			Title:  "The Hound of the Baskervilles",
			Author: "Arthur Conan Doyle",
			Genre:  entities.GenreMystery,
			Rating: 5,
		},
		{
			Title:  "Leaves of Grass",
			Author: "Walt Whitman",
			Genre:  entities.GenrePoetry,
			Rating: 3,
			Review: "Best read aloud, a few pages at a time.",
		},
		{
			Title:  "Pride and Prejudice",
			Author: "Jane Austen",
			Genre:  entities.GenreRomance,
			Rating: 5,
			Review: "Sharper and funnier than I remembered.",
		},
		{
			Title:  "The Thirty-Nine Steps",
			Author: "John Buchan",
			Genre:  entities.GenreThriller,
			Rating: 2,
			Review: "Breathless, though the coincidences pile up.",
		},
		{
			Title:  "The Time Machine",
			Author: "H. G. Wells",
			Genre:  entities.GenreScienceFiction,
			Rating: 4,
		},
		{
			Title:  "Ulysses",
			Author: "James Joyce",
			Genre:  entities.GenreFantasy,
			Rating: 1,
			Review: "Did not finish.",
		},
		{
			Genre:  entities.GenrePoetry,
			Rating: 3,
		},
	}
}
