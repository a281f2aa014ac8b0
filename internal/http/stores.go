package http

import (
	"context"

	"github.com/mrlokans/bookworm/internal/database/books"
	"github.com/mrlokans/bookworm/internal/entities"
)

// BookStore is everything the controllers need from the book store.
// *books.Store satisfies it.
type BookStore interface {
	Create(ctx context.Context, nb entities.NewBook) (*entities.Book, error)
	List(ctx context.Context) ([]entities.Book, error)
	Get(ctx context.Context, id string) (*entities.Book, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, ids ...string) error
	DeleteAtOffsets(ctx context.Context, offsets ...int) ([]entities.Book, error)
	DeleteListed(ctx context.Context, rows map[int]string) ([]entities.Book, error)
	Subscribe(fn func(books.Event)) func()
}

var _ BookStore = (*books.Store)(nil)
