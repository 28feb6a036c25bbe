package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

// EntryError reports why one seed entry was rejected.
type EntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%q): %v", e.Index, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Mapper converts between seed entries and domain drafts.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapDrafts validates every entry and returns the drafts in file order.
// All invalid entries are reported together; no draft is returned then.
func (m *Mapper) MapDrafts(f File) ([]domain.Draft, error) {
	drafts := make([]domain.Draft, 0, len(f.Items))
	var errs []error

	for i, e := range f.Items {
		d, err := m.mapEntry(e)
		if err != nil {
			errs = append(errs, &EntryError{Index: i, Name: e.Name, Err: err})
			continue
		}
		drafts = append(drafts, d)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return drafts, nil
}

func (m *Mapper) mapEntry(e Entry) (domain.Draft, error) {
	cat, err := domain.ParseCategory(e.Category)
	if err != nil {
		return domain.Draft{}, err
	}

	d := domain.Draft{
		Name:        strings.TrimSpace(e.Name),
		Description: strings.TrimSpace(e.Description),
		Category:    cat,
		Images:      e.Images,
		Rating:      e.Rating,
	}
	if err := domain.ValidateDraft(d); err != nil {
		return domain.Draft{}, err
	}
	domain.ApplyCategoryPolicy(&d)
	return d, nil
}

// MapFile converts stored items back to the seed schema.
func (m *Mapper) MapFile(items []*domain.Item) File {
	f := File{Items: make([]Entry, 0, len(items))}
	for _, it := range items {
		e := Entry{
			Name:        it.Name,
			Description: it.Description,
			Category:    string(it.Category),
			Images:      it.Images,
		}
		if it.Rating != nil {
			r := *it.Rating
			e.Rating = &r
		}
		f.Items = append(f.Items, e)
	}
	return f
}
