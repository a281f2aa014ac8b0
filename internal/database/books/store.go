// Package books provides the persistent book store.
//
// The store is the only owner of book records. Screens and commands read
// through List/Get and mutate through Create/Delete; each mutating call is a
// single transaction, so it commits once.
//
// # Usage
//
//	store := books.NewStore(db)
//	unsubscribe := store.Subscribe(func(e books.Event) { ... })
//	defer unsubscribe()
//
//	book, err := store.Create(ctx, entities.NewBook{Title: "Dune"})
//	removed, err := store.DeleteAtOffsets(ctx, 0)
package books

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookworm/internal/entities"
)

var (
	// ErrBookNotFound is returned when an identity does not match a record.
	ErrBookNotFound = errors.New("book not found")
	// ErrInvalidOffset is returned when a list offset is outside the list.
	ErrInvalidOffset = errors.New("offset out of range")
	// ErrListChanged is returned when a listed row no longer holds the book
	// it was rendered with.
	ErrListChanged = errors.New("list changed")
	// ErrCommitFailed wraps any failure to make a change durable.
	ErrCommitFailed = errors.New("commit failed")
)

// Store handles all book database operations.
type Store struct {
	db  *gorm.DB
	now func() time.Time

	events *broadcaster
}

// NewStore creates a book store on top of an opened connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		now:    time.Now,
		events: newBroadcaster(),
	}
}

// Create stamps the creation date, assigns identity and commits the record.
// Fields are stored as given.
func (s *Store) Create(ctx context.Context, nb entities.NewBook) (*entities.Book, error) {
	book := &entities.Book{
		Title:  nb.Title,
		Author: nb.Author,
		Genre:  nb.Genre,
		Rating: nb.Rating,
		Review: nb.Review,
		Date:   s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(book).Error
	})
	if err != nil {
		return nil, commitError("create book", err)
	}

	s.events.publish(Event{Kind: EventCreated, Books: []entities.Book{*book}, At: s.now()})
	return book, nil
}

// List returns every book ordered by title ascending.
func (s *Store) List(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	if err := orderedByTitle(s.db.WithContext(ctx)).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Get retrieves a single book by identity.
func (s *Store) Get(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return &book, nil
}

// Count returns the number of stored books.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error
	return total, err
}

// Delete removes the given books in one commit. If any identity is unknown
// nothing is removed and ErrBookNotFound is returned.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	var removed []entities.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := orderedByTitle(tx).Where("id IN ?", ids).Find(&removed).Error; err != nil {
			return err
		}
		if len(removed) != len(ids) {
			return ErrBookNotFound
		}
		return tx.Where("id IN ?", ids).Delete(&entities.Book{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return err
		}
		return commitError("delete books", err)
	}

	s.events.publish(Event{Kind: EventDeleted, Books: removed, At: s.now()})
	return nil
}

// DeleteAtOffsets removes the books at the given positions of the
// title-ordered list. Offsets are resolved inside the same transaction as the
// delete, so they always refer to the list as it is at commit time.
func (s *Store) DeleteAtOffsets(ctx context.Context, offsets ...int) ([]entities.Book, error) {
	return s.deleteAtOffsets(ctx, offsets, nil)
}

// DeleteListed removes rows of a list the caller rendered earlier. Each key is
// a row offset and its value the id that row showed. If any row now holds a
// different book, nothing is removed and ErrListChanged is returned.
func (s *Store) DeleteListed(ctx context.Context, rows map[int]string) ([]entities.Book, error) {
	offsets := make([]int, 0, len(rows))
	for offset := range rows {
		offsets = append(offsets, offset)
	}
	return s.deleteAtOffsets(ctx, offsets, rows)
}

func (s *Store) deleteAtOffsets(ctx context.Context, offsets []int, expected map[int]string) ([]entities.Book, error) {
	offsets = uniqueOffsets(offsets)
	if len(offsets) == 0 {
		return nil, nil
	}

	var removed []entities.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []entities.Book
		if err := orderedByTitle(tx).Find(&current).Error; err != nil {
			return err
		}

		ids := make([]string, 0, len(offsets))
		for _, offset := range offsets {
			if offset < 0 || offset >= len(current) {
				return fmt.Errorf("%w: %d (list has %d books)", ErrInvalidOffset, offset, len(current))
			}
			book := current[offset]
			if want, ok := expected[offset]; ok && want != book.ID {
				return fmt.Errorf("%w: row %d now holds %s", ErrListChanged, offset, book.ID)
			}
			removed = append(removed, book)
			ids = append(ids, book.ID)
		}

		return tx.Where("id IN ?", ids).Delete(&entities.Book{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOffset) || errors.Is(err, ErrListChanged) {
			return nil, err
		}
		return nil, commitError("delete books at offsets", err)
	}

	s.events.publish(Event{Kind: EventDeleted, Books: removed, At: s.now()})
	return removed, nil
}

// Subscribe registers fn to receive an Event after every committed change.
// Callbacks run synchronously on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.events.subscribe(fn)
}

func orderedByTitle(db *gorm.DB) *gorm.DB {
	return db.Order("title ASC").Order("date ASC").Order("id ASC")
}

func commitError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCommitFailed, err)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func uniqueOffsets(offsets []int) []int {
	seen := make(map[int]struct{}, len(offsets))
	result := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		result = append(result, o)
	}
	sort.Ints(result)
	return result
}
