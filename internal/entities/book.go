package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Display fallbacks for records saved with empty fields.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
	UnknownBook   = "Unknown book"
	NoReview      = "No review"
)

// MaxRating is the highest rating the UI can assign.
const MaxRating = 5

type Genre string

const (
	GenreFantasy        Genre = "Fantasy"
	GenreHorror         Genre = "Horror"
	GenreKids           Genre = "Kids"
	GenreMystery        Genre = "Mystery"
	GenrePoetry         Genre = "Poetry"
	GenreRomance        Genre = "Romance"
	GenreThriller       Genre = "Thriller"
	GenreScienceFiction Genre = "ScienceFiction"

	// DefaultGenre is preselected in the add form.
	DefaultGenre = GenrePoetry
	// FallbackGenre names the illustration shown for unknown genres.
	FallbackGenre = GenreFantasy
)

// Genres lists the known genres in picker order.
var Genres = []Genre{
	GenreFantasy,
	GenreHorror,
	GenreKids,
	GenreMystery,
	GenrePoetry,
	GenreRomance,
	GenreThriller,
	GenreScienceFiction,
}

// IsKnown reports whether g is one of Genres.
func (g Genre) IsKnown() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Illustration returns the asset key used to draw the genre.
func (g Genre) Illustration() string {
	if g.IsKnown() {
		return string(g)
	}
	return string(FallbackGenre)
}

// Badge is the caption drawn over the illustration.
func (g Genre) Badge() string {
	if g == "" {
		return strings.ToUpper(string(FallbackGenre))
	}
	return strings.ToUpper(string(g))
}

type Book struct {
	ID     string    `gorm:"primaryKey;size:36" json:"id"`
	Title  string    `gorm:"index;size:512" json:"title"`
	Author string    `gorm:"size:256" json:"author"`
	Genre  Genre     `gorm:"size:50" json:"genre"`
	Rating int       `gorm:"default:0" json:"rating"`
	Review string    `gorm:"type:text" json:"review"`
	Date   time.Time `gorm:"index" json:"date"`
}

func (Book) TableName() string {
	return "books"
}

// BeforeCreate assigns the identity. IDs are random so a deleted
// record's identity is never handed out again.
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Date.IsZero() {
		b.Date = time.Now()
	}
	return nil
}

// BeforeSave keeps the rating non-negative.
func (b *Book) BeforeSave(tx *gorm.DB) error {
	if b.Rating < 0 {
		b.Rating = 0
	}
	return nil
}

func (b Book) DisplayTitle() string {
	if b.Title == "" {
		return UnknownTitle
	}
	return b.Title
}

// NavigationTitle is the detail screen heading.
func (b Book) NavigationTitle() string {
	if b.Title == "" {
		return UnknownBook
	}
	return b.Title
}

func (b Book) DisplayAuthor() string {
	if b.Author == "" {
		return UnknownAuthor
	}
	return b.Author
}

func (b Book) DisplayReview() string {
	if b.Review == "" {
		return NoReview
	}
	return b.Review
}

// IsPoorlyRated marks one-star books, which the list highlights.
func (b Book) IsPoorlyRated() bool {
	return b.Rating == 1
}

// AddedOn formats the creation date in long style.
func (b Book) AddedOn() string {
	return b.Date.Format("January 2, 2006")
}

// NewBook holds the user-supplied fields of a book about to be created.
type NewBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  Genre  `json:"genre"`
	Rating int    `json:"rating"`
	Review string `json:"review"`
}
