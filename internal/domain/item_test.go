package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name      string
		draft     Draft
		wantField string
	}{
		{"valid book", Draft{Name: "Dune", Category: CategoryBook, Rating: IntPtr(8)}, ""},
		{"valid other without rating", Draft{Name: "Lamp", Category: CategoryOther}, ""},
		{"empty name", Draft{Name: "  ", Category: CategoryBook}, "name"},
		{"unknown category", Draft{Name: "x", Category: "vinyl"}, "category"},
		{"rating too high", Draft{Name: "x", Category: CategoryMovie, Rating: IntPtr(11)}, "rating"},
		{"rating negative", Draft{Name: "x", Category: CategoryMovie, Rating: IntPtr(-1)}, "rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.draft)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateDraft() = %v, want nil", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidateDraft() = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestApplyCategoryPolicy(t *testing.T) {
	d := Draft{Name: "Lamp", Category: CategoryOther, Rating: IntPtr(9)}
	ApplyCategoryPolicy(&d)
	if d.Rating == nil || *d.Rating != 0 {
		t.Errorf("rating for other = %v, want 0", d.Rating)
	}

	d = Draft{Name: "Lamp", Category: CategoryOther}
	ApplyCategoryPolicy(&d)
	if d.Rating != nil {
		t.Errorf("absent rating for other = %v, want nil", *d.Rating)
	}

	d = Draft{Name: "Dune", Category: CategoryBook, Rating: IntPtr(9)}
	ApplyCategoryPolicy(&d)
	if *d.Rating != 9 {
		t.Errorf("rating for book = %d, want 9", *d.Rating)
	}
}

func TestApplyPatchPolicy(t *testing.T) {
	book := &Item{Name: "Dune", Category: CategoryBook, Rating: IntPtr(8)}
	note := &Item{Name: "Lamp", Category: CategoryOther}

	tests := []struct {
		name      string
		current   *Item
		patch     *Patch
		wantNil   bool
		wantValue int
	}{
		{"rating on unrated item", note, NewPatch().WithRating(7), false, 0},
		{"move rated item to other", book, NewPatch().WithCategory(CategoryOther), false, 0},
		{"move to other with rating", book, NewPatch().WithCategory(CategoryOther).WithRating(5), false, 0},
		{"move unrated item without rating", &Item{Name: "Dune", Category: CategoryBook}, NewPatch().WithCategory(CategoryOther), true, 0},
		{"rating on rated item", book, NewPatch().WithRating(3), false, 3},
		{"move other to movie with rating", note, NewPatch().WithCategory(CategoryMovie).WithRating(6), false, 6},
		{"name only on unrated item", note, NewPatch().WithName("Desk"), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ApplyPatchPolicy(tt.patch, tt.current)
			if tt.wantNil {
				if tt.patch.Rating != nil {
					t.Errorf("rating = %d, want unset", *tt.patch.Rating)
				}
				return
			}
			if tt.patch.Rating == nil || *tt.patch.Rating != tt.wantValue {
				t.Errorf("rating = %v, want %d", tt.patch.Rating, tt.wantValue)
			}
		})
	}

	p := NewPatch().WithCategory(CategoryOther).WithoutRating()
	ApplyPatchPolicy(p, book)
	if !p.ClearRating || p.Rating != nil {
		t.Errorf("clearing patch = %+v, want rating cleared", p)
	}
}

func TestPatch_Apply(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	it := &Item{
		ID:          7,
		CreatedAt:   created,
		Name:        "Old",
		Description: "keep me",
		Category:    CategoryBook,
		Images:      []string{"a.png", "b.png"},
		Rating:      IntPtr(4),
	}

	NewPatch().WithName("New").WithRating(9).Apply(it)

	if it.Name != "New" || *it.Rating != 9 {
		t.Errorf("patched fields = %q/%d, want New/9", it.Name, *it.Rating)
	}
	if it.Description != "keep me" || it.Category != CategoryBook || len(it.Images) != 2 {
		t.Errorf("untouched fields changed: %+v", it)
	}
	if it.ID != 7 || !it.CreatedAt.Equal(created) {
		t.Errorf("identity changed: id=%d createdAt=%v", it.ID, it.CreatedAt)
	}

	NewPatch().WithoutRating().WithImages([]string{"c.png"}).Apply(it)
	if it.Rating != nil {
		t.Errorf("rating = %d, want cleared", *it.Rating)
	}
	if len(it.Images) != 1 || it.Images[0] != "c.png" {
		t.Errorf("images = %v, want [c.png]", it.Images)
	}
}

func TestPatch_Validate(t *testing.T) {
	if err := NewPatch().WithName("").Validate(); !IsValidation(err) {
		t.Errorf("empty name patch = %v, want ValidationError", err)
	}
	if err := NewPatch().WithCategory("vinyl").Validate(); !IsValidation(err) {
		t.Errorf("bad category patch = %v, want ValidationError", err)
	}
	if err := NewPatch().WithRating(42).Validate(); !IsValidation(err) {
		t.Errorf("bad rating patch = %v, want ValidationError", err)
	}
	if err := NewPatch().WithRating(42).WithoutRating().Validate(); err != nil {
		t.Errorf("cleared rating patch = %v, want nil", err)
	}
	if !NewPatch().Empty() {
		t.Error("NewPatch() should be empty")
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Movie ")
	if err != nil || c != CategoryMovie {
		t.Errorf("ParseCategory(Movie) = %q, %v", c, err)
	}
	if _, err := ParseCategory("vinyl"); !IsValidation(err) {
		t.Errorf("ParseCategory(vinyl) error = %v, want ValidationError", err)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name               string
		total, page, size  int
		wantPages          int
		wantNext, wantPrev bool
	}{
		{"middle page", 3, 2, 1, 3, true, true},
		{"first page", 10, 1, 4, 3, true, false},
		{"last page", 10, 3, 4, 3, false, true},
		{"past the end", 3, 9, 2, 2, false, true},
		{"empty", 0, 1, 10, 0, false, false},
		{"huge page size", 3, 1, math.MaxInt, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(nil, tt.total, tt.page, tt.size)
			if p.TotalPages != tt.wantPages || p.HasNext != tt.wantNext || p.HasPrev != tt.wantPrev {
				t.Errorf("NewPage() = pages %d next %v prev %v, want %d %v %v",
					p.TotalPages, p.HasNext, p.HasPrev, tt.wantPages, tt.wantNext, tt.wantPrev)
			}
			if p.Items == nil {
				t.Error("Items should never be nil")
			}
		})
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       int
	}{
		{"first page", 1, 20, 0},
		{"third page", 3, 20, 40},
		{"saturates instead of wrapping", math.MaxInt/2 + 2, 2, math.MaxInt},
		{"max page", math.MaxInt, math.MaxInt, math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Offset(tt.page, tt.size); got != tt.want {
				t.Errorf("Offset(%d, %d) = %d, want %d", tt.page, tt.size, got, tt.want)
			}
		})
	}
}
