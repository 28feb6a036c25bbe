package domain

import "strings"

// Patch is a partial update of an item. Only fields that are set are applied;
// ID and CreatedAt cannot be expressed and are never touched.
type Patch struct {
	Name        *string
	Description *string
	Category    *Category
	Images      *[]string
	Rating      *int

	// ClearRating removes the rating. It wins over Rating.
	ClearRating bool
}

// NewPatch starts an empty patch.
func NewPatch() *Patch { return &Patch{} }

func (p *Patch) WithName(v string) *Patch {
	p.Name = &v
	return p
}

func (p *Patch) WithDescription(v string) *Patch {
	p.Description = &v
	return p
}

func (p *Patch) WithCategory(v Category) *Patch {
	p.Category = &v
	return p
}

func (p *Patch) WithImages(v []string) *Patch {
	cp := append([]string{}, v...)
	p.Images = &cp
	return p
}

func (p *Patch) WithRating(v int) *Patch {
	p.Rating = &v
	p.ClearRating = false
	return p
}

func (p *Patch) WithoutRating() *Patch {
	p.Rating = nil
	p.ClearRating = true
	return p
}

// Empty reports whether applying the patch would change nothing.
func (p *Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.Images == nil && p.Rating == nil && !p.ClearRating
}

// Validate checks the fields that are set.
func (p *Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Category != nil && !p.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "unknown category " + string(*p.Category)}
	}
	if p.Rating != nil && !p.ClearRating {
		if err := validateRating(*p.Rating); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into it in place.
func (p *Patch) Apply(it *Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Images != nil {
		it.Images = append([]string(nil), (*p.Images)...)
	}
	switch {
	case p.ClearRating:
		it.Rating = nil
	case p.Rating != nil:
		r := *p.Rating
		it.Rating = &r
	}
}
