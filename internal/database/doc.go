// Package database provides the data access layer for the journal.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Book store: create, sorted list, delete, change events
//	└── audit/           # Activity log persistence
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookworm.db")
//
//	store := books.NewStore(db.DB)
//	book, err := store.Create(ctx, entities.NewBook{Title: "Dune"})
//	all, err := store.List(ctx)
//
// Every mutating store call runs in its own transaction, so a call either
// commits all of its changes or none of them.
package database
