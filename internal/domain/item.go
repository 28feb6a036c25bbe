package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed classification of a collection item.
type Category string

const (
	CategoryBook  Category = "book"
	CategoryMovie Category = "movie"
	CategoryOther Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryBook, CategoryMovie, CategoryOther}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBook, CategoryMovie, CategoryOther:
		return true
	}
	return false
}

// Rated reports whether ratings carry meaning for this category.
func (c Category) Rated() bool {
	return c == CategoryBook || c == CategoryMovie
}

// Title returns the singular label shown to users.
func (c Category) Title() string {
	switch c {
	case CategoryBook:
		return "Book"
	case CategoryMovie:
		return "Movie"
	case CategoryOther:
		return "Other Item"
	}
	return string(c)
}

// ParseCategory normalizes s and returns the matching category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
	}
	return c, nil
}

const (
	// MinRating and MaxRating bound the rating axis.
	MinRating = 0
	MaxRating = 10
)

// Item is the single persisted entity of the collection.
type Item struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store on first save and never reused.
	ID uint64 `json:"id"`

	// CreatedAt is stamped once by the store on creation.
	CreatedAt time.Time `json:"createdAt"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`

	// Images are opaque references (data URIs or paths).
	// Order is display order; the first one is the cover.
	Images []string `json:"images,omitempty"`

	// Rating is optional and only meaningful for rated categories.
	Rating *int `json:"rating,omitempty"`
}

// Cover returns the first image reference, or "" when there is none.
func (it *Item) Cover() string {
	if len(it.Images) == 0 {
		return ""
	}
	return it.Images[0]
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	cp := *it
	if it.Images != nil {
		cp.Images = append([]string(nil), it.Images...)
	}
	if it.Rating != nil {
		r := *it.Rating
		cp.Rating = &r
	}
	return &cp
}

// Draft is an item that has not been saved yet.
type Draft struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Images      []string `json:"images,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
}

// ToItem builds the record persisted for this draft.
func (d Draft) ToItem(id uint64, createdAt time.Time) *Item {
	it := &Item{
		ID:          id,
		CreatedAt:   createdAt,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
	}
	if d.Images != nil {
		it.Images = append([]string(nil), d.Images...)
	}
	if d.Rating != nil {
		r := *d.Rating
		it.Rating = &r
	}
	return it
}

// IntPtr is a small helper for optional ratings.
func IntPtr(v int) *int { return &v }
