package processor

import (
	"strings"

	"github.com/sells-group/directory-cli/internal/model"
)

// ApplyFilter returns the records satisfying every supplied criterion.
//
// Rating and review-count criteria exclude a record only when the value is
// present and out of range: a record with no rating is never excluded by a
// rating bound. Cuisine, price-level, and feature criteria are stricter:
// a record lacking the field fails the criterion outright. This asymmetry
// is load-bearing for downstream consumers and pinned by tests.
func ApplyFilter(records []*model.Business, f *model.SearchFilter) []*model.Business {
	kept := make([]*model.Business, 0, len(records))
	for _, b := range records {
		if passesFilter(b, f) {
			kept = append(kept, b)
		}
	}
	return kept
}

func passesFilter(b *model.Business, f *model.SearchFilter) bool {
	// Exclude only on positive mismatch.
	if f.MinRating != nil && b.Rating != nil && *b.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && b.Rating != nil && *b.Rating > *f.MaxRating {
		return false
	}
	if f.MinReviews != nil && b.ReviewCount < *f.MinReviews {
		return false
	}
	if f.City != "" && b.City != "" && !strings.EqualFold(b.City, f.City) {
		return false
	}

	// Exclude when the criterion is supplied and the record lacks a match.
	if f.CuisineType != "" {
		if b.CuisineType == "" {
			return false
		}
		if !strings.Contains(strings.ToLower(b.CuisineType), strings.ToLower(f.CuisineType)) {
			return false
		}
	}

	if f.Keywords != "" {
		searchable := strings.ToLower(b.Name + " " + b.Category + " " + b.CuisineType)
		if !strings.Contains(searchable, strings.ToLower(f.Keywords)) {
			return false
		}
	}

	if len(f.PriceLevels) > 0 && !containsString(f.PriceLevels, b.PriceLevel) {
		return false
	}

	if len(f.Features) > 0 {
		for _, required := range f.Features {
			if !containsFold(b.Features, required) {
				return false
			}
		}
	}

	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
