package domain

import (
	"fmt"
	"strings"
)

// ValidateDraft enforces the required fields before an item reaches the store.
func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !d.Category.Valid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", d.Category)}
	}
	if d.Rating != nil {
		return validateRating(*d.Rating)
	}
	return nil
}

func validateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return &ValidationError{
			Field:  "rating",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinRating, MaxRating, r),
		}
	}
	return nil
}

// ApplyCategoryPolicy zeroes the rating of unrated categories.
// The store accepts any rating; this is applied by callers at the boundary.
func ApplyCategoryPolicy(d *Draft) {
	if !d.Category.Rated() && d.Rating != nil {
		d.Rating = IntPtr(0)
	}
}

// ApplyPatchPolicy applies the same rule to a patch of current, judged by
// the category the item will have once the patch lands. A rating set on an
// unrated item becomes 0, and moving a rated item into an unrated category
// resets its rating to 0.
func ApplyPatchPolicy(p *Patch, current *Item) {
	cat := current.Category
	if p.Category != nil {
		cat = *p.Category
	}
	if cat.Rated() || p.ClearRating {
		return
	}
	switch {
	case p.Rating != nil:
		p.WithRating(0)
	case p.Category != nil && current.Rating != nil:
		p.WithRating(0)
	}
}
