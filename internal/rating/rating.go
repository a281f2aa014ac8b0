// Package rating implements the star rating control shared by the add and
// detail screens and the CLI. The widget owns no state: the value lives in
// whatever Binding the caller passes in.
package rating

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultMax      = 5
	DefaultOnGlyph  = "★"
	DefaultOnColor  = "gold"
	DefaultOffColor = "gray"

	// DefaultValue is the rating preselected on the add screen.
	DefaultValue = 3
)

var ErrGlyphOutOfRange = errors.New("glyph index out of range")

// Binding is a read/write view of a rating owned by someone else.
type Binding interface {
	Get() int
	Set(int)
}

type pointerBinding struct {
	v *int
}

func (b pointerBinding) Get() int  { return *b.v }
func (b pointerBinding) Set(v int) { *b.v = v }

// Bind exposes a parent-owned integer to the widget.
func Bind(v *int) Binding {
	return pointerBinding{v: v}
}

type constantBinding int

func (c constantBinding) Get() int { return int(c) }
func (constantBinding) Set(int)    {}

// Constant returns a read-only binding; Set is ignored.
func Constant(v int) Binding {
	return constantBinding(v)
}

// Glyph is one rendered position of the widget.
type Glyph struct {
	Index    int
	Symbol   string
	Color    string
	On       bool
	Selected bool
	Label    string
}

type Widget struct {
	Label    string
	Max      int
	OnGlyph  string
	OffGlyph string // empty means reuse OnGlyph
	OnColor  string
	OffColor string
}

func New() Widget {
	return Widget{
		Max:      DefaultMax,
		OnGlyph:  DefaultOnGlyph,
		OnColor:  DefaultOnColor,
		OffColor: DefaultOffColor,
	}
}

func (w Widget) max() int {
	if w.Max <= 0 {
		return DefaultMax
	}
	return w.Max
}

func (w Widget) onGlyph() string {
	if w.OnGlyph == "" {
		return DefaultOnGlyph
	}
	return w.OnGlyph
}

// Glyph returns the symbol for position i given the current value.
func (w Widget) Glyph(i, value int) string {
	if i > value && w.OffGlyph != "" {
		return w.OffGlyph
	}
	return w.onGlyph()
}

// Glyphs lays out positions 1..Max for the given value. Position i is on
// iff i <= value.
func (w Widget) Glyphs(value int) []Glyph {
	n := w.max()
	glyphs := make([]Glyph, 0, n)
	for i := 1; i <= n; i++ {
		on := i <= value
		color := w.OffColor
		if on {
			color = w.OnColor
		}
		glyphs = append(glyphs, Glyph{
			Index:    i,
			Symbol:   w.Glyph(i, value),
			Color:    color,
			On:       on,
			Selected: on,
			Label:    AccessibilityLabel(i),
		})
	}
	return glyphs
}

// Tap sets the bound value to exactly i.
func (w Widget) Tap(b Binding, i int) error {
	if i < 1 || i > w.max() {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrGlyphOutOfRange, i, w.max())
	}
	b.Set(i)
	return nil
}

// Render draws the widget as a single line of text.
func (w Widget) Render(value int) string {
	var sb strings.Builder
	if w.Label != "" {
		sb.WriteString(w.Label)
		sb.WriteString(" ")
	}
	for _, g := range w.Glyphs(value) {
		sb.WriteString(g.Symbol)
	}
	return sb.String()
}

func AccessibilityLabel(i int) string {
	if i == 1 {
		return "1 star"
	}
	return fmt.Sprintf("%d stars", i)
}

// Emoji is the compact rating shown in list rows.
func Emoji(r int) string {
	switch r {
	case 1:
		return "😴"
	case 2:
		return "😔"
	case 3:
		return "☹️"
	case 4:
		return "😊"
	default:
		return "😁"
	}
}

// Parse reads a submitted rating and clamps it to [1, max]. Unparseable
// input yields the default of 3.
func Parse(s string, max int) int {
	if max <= 0 {
		max = DefaultMax
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		v = DefaultValue
	}
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
