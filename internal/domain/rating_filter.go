package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RatingFilterKind selects the predicate applied on the rating axis.
type RatingFilterKind string

const (
	RatingMin    RatingFilterKind = "min"
	RatingMax    RatingFilterKind = "max"
	RatingExact  RatingFilterKind = "exact"
	RatingRange  RatingFilterKind = "range"
	RatingPreset RatingFilterKind = "preset"
)

// RatingPresetName names one of the predefined rating bands.
type RatingPresetName string

const (
	PresetHigh   RatingPresetName = "high"
	PresetMedium RatingPresetName = "medium"
	PresetLow    RatingPresetName = "low"
)

// presetBands maps each preset to its inclusive [min, max] band.
var presetBands = map[RatingPresetName][2]int{
	PresetHigh:   {7, 10},
	PresetMedium: {4, 6},
	PresetLow:    {1, 3},
}

// RatingFilter is a predicate over the [0,10] rating axis.
// Only the fields relevant to Kind are read.
type RatingFilter struct {
	Kind   RatingFilterKind `json:"type"`
	Min    int              `json:"minValue,omitempty"`
	Max    int              `json:"maxValue,omitempty"`
	Exact  int              `json:"exactValue,omitempty"`
	Preset RatingPresetName `json:"presetName,omitempty"`
}

func MinRatingFilter(v int) *RatingFilter   { return &RatingFilter{Kind: RatingMin, Min: v} }
func MaxRatingFilter(v int) *RatingFilter   { return &RatingFilter{Kind: RatingMax, Max: v} }
func ExactRatingFilter(v int) *RatingFilter { return &RatingFilter{Kind: RatingExact, Exact: v} }

func RangeRatingFilter(lo, hi int) *RatingFilter {
	return &RatingFilter{Kind: RatingRange, Min: lo, Max: hi}
}

func PresetRatingFilter(name RatingPresetName) *RatingFilter {
	return &RatingFilter{Kind: RatingPreset, Preset: name}
}

// Match reports whether it passes the filter.
//
// Items in unrated categories always pass. Items in rated categories
// without a rating never pass. Unknown kinds or presets pass everything.
func (f *RatingFilter) Match(it *Item) bool {
	if f == nil {
		return true
	}
	if !it.Category.Rated() {
		return true
	}
	if it.Rating == nil {
		return false
	}
	r := *it.Rating

	switch f.Kind {
	case RatingMin:
		return r >= f.Min
	case RatingMax:
		return r <= f.Max
	case RatingExact:
		return r == f.Exact
	case RatingRange:
		return r >= f.Min && r <= f.Max
	case RatingPreset:
		band, ok := presetBands[f.Preset]
		if !ok {
			return true
		}
		return r >= band[0] && r <= band[1]
	default:
		return true
	}
}

// String renders the filter in the form accepted by ParseRatingFilter.
func (f *RatingFilter) String() string {
	if f == nil {
		return ""
	}
	switch f.Kind {
	case RatingMin:
		return fmt.Sprintf("min:%d", f.Min)
	case RatingMax:
		return fmt.Sprintf("max:%d", f.Max)
	case RatingExact:
		return fmt.Sprintf("exact:%d", f.Exact)
	case RatingRange:
		return fmt.Sprintf("range:%d-%d", f.Min, f.Max)
	case RatingPreset:
		return "preset:" + string(f.Preset)
	}
	return string(f.Kind)
}

// ParseRatingFilter reads "min:9", "max:3", "exact:5", "range:2-8" or
// "preset:high". A bare preset name ("high") is accepted too.
// Anything malformed yields nil, i.e. no filter.
func ParseRatingFilter(s string) *RatingFilter {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}

	kind, arg, found := strings.Cut(s, ":")
	if !found {
		if _, ok := presetBands[RatingPresetName(s)]; ok {
			return PresetRatingFilter(RatingPresetName(s))
		}
		return nil
	}

	switch RatingFilterKind(kind) {
	case RatingMin:
		if v, ok := parseRatingValue(arg); ok {
			return MinRatingFilter(v)
		}
	case RatingMax:
		if v, ok := parseRatingValue(arg); ok {
			return MaxRatingFilter(v)
		}
	case RatingExact:
		if v, ok := parseRatingValue(arg); ok {
			return ExactRatingFilter(v)
		}
	case RatingRange:
		lo, hi, ok := strings.Cut(arg, "-")
		if !ok {
			return nil
		}
		l, okL := parseRatingValue(lo)
		h, okH := parseRatingValue(hi)
		if okL && okH && l <= h {
			return RangeRatingFilter(l, h)
		}
	case RatingPreset:
		if _, ok := presetBands[RatingPresetName(arg)]; ok {
			return PresetRatingFilter(RatingPresetName(arg))
		}
	}
	return nil
}

func parseRatingValue(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < MinRating || v > MaxRating {
		return 0, false
	}
	return v, true
}
