package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring weights, accumulated per (field, term) pair
	ScoreExactName    = 2.0 // whole name equals the term
	ScoreWordBoundary = 1.5 // term starts the field or follows a space
	ScoreSubstring    = 1.0 // term appears anywhere else

	DefaultMinScore = 0.3
	DefaultLimit    = 50
)

// SearchField names an item field that text search looks at.
type SearchField string

const (
	FieldName        SearchField = "name"
	FieldDescription SearchField = "description"
	FieldCategory    SearchField = "category"
)

// DefaultSearchFields are scanned when no fields are configured.
var DefaultSearchFields = []SearchField{FieldName, FieldDescription}

// SearchOptions tunes the ranking. Zero values fall back to the defaults.
type SearchOptions struct {
	Fields   []SearchField
	MinScore float64
	Limit    int
}

func (o SearchOptions) normalized() SearchOptions {
	if len(o.Fields) == 0 {
		o.Fields = DefaultSearchFields
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// SearchQuery is everything the user typed or picked.
type SearchQuery struct {
	Text     string
	Rating   *RatingFilter
	Category *Category
}

// Active reports whether the query carries any text.
func (q SearchQuery) Active() bool {
	return strings.TrimSpace(q.Text) != ""
}

// Filtering reports whether any filter is applied.
func (q SearchQuery) Filtering() bool {
	return q.Rating != nil || q.Category != nil
}

// SearchResult is the view computed for display ("Found: N of M").
type SearchResult struct {
	Items        []*Item `json:"items"`
	IsSearching  bool    `json:"isSearching"`
	IsFiltering  bool    `json:"isFiltering"`
	ResultsCount int     `json:"resultsCount"`
	TotalCount   int     `json:"totalCount"`
}

// ScoredItem pairs an item with its normalized relevance.
type ScoredItem struct {
	Item  *Item
	Score float64
}

// Search filters, scores, ranks and truncates items. It never mutates its
// input and never fails: empty input gives an empty result.
func Search(items []*Item, q SearchQuery, opts SearchOptions) SearchResult {
	opts = opts.normalized()

	filtered := Filter(items, q.Rating, q.Category)

	result := SearchResult{
		IsSearching: q.Active(),
		IsFiltering: q.Filtering(),
		TotalCount:  len(items),
	}

	if !q.Active() {
		result.Items = filtered
		result.ResultsCount = len(filtered)
		return result
	}

	ranked := Rank(filtered, q.Text, opts)
	out := make([]*Item, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.Item)
	}
	result.Items = out
	result.ResultsCount = len(out)
	return result
}

// Filter keeps the items that pass both the rating and the category filter,
// preserving input order.
func Filter(items []*Item, rating *RatingFilter, category *Category) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if category != nil && it.Category != *category {
			continue
		}
		if !rating.Match(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Rank scores items against text, drops those under the threshold, sorts by
// score (stable for ties) and truncates to the limit.
func Rank(items []*Item, text string, opts SearchOptions) []ScoredItem {
	opts = opts.normalized()

	terms := SplitTerms(text)
	if len(terms) == 0 {
		return nil
	}

	scored := make([]ScoredItem, 0, len(items))
	for _, it := range items {
		s := ScoreItem(it, terms, opts.Fields)
		if s < opts.MinScore {
			continue
		}
		scored = append(scored, ScoredItem{Item: it, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored
}

// SplitTerms lowercases and trims the query, then splits it on whitespace.
func SplitTerms(text string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(text)))
}

// ScoreItem returns the normalized relevance of it for terms, in [0, 2].
func ScoreItem(it *Item, terms []string, fields []SearchField) float64 {
	if it == nil || len(terms) == 0 || len(fields) == 0 {
		return 0.0
	}

	var total float64
	for _, field := range fields {
		value := strings.ToLower(fieldValue(it, field))
		for _, term := range terms {
			total += scoreTerm(field, value, term)
		}
	}

	return total / float64(len(fields)*len(terms))
}

// scoreTerm scores one term against one lowercased field value.
func scoreTerm(field SearchField, value, term string) float64 {
	switch {
	case field == FieldName && value == term:
		return ScoreExactName
	case strings.HasPrefix(value, term) || strings.Contains(value, " "+term):
		return ScoreWordBoundary
	case strings.Contains(value, term):
		return ScoreSubstring
	default:
		return 0.0
	}
}

func fieldValue(it *Item, field SearchField) string {
	switch field {
	case FieldName:
		return it.Name
	case FieldDescription:
		return it.Description
	case FieldCategory:
		return string(it.Category)
	}
	return ""
}
