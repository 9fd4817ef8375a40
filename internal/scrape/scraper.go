// Package scrape collects raw business listings from the directory
// platforms. Each platform implements Scraper; the Manager fans searches
// out across the enabled sources and hands the combined raw records to
// the processing pipeline.
package scrape

import (
	"context"

	"github.com/sells-group/directory-cli/internal/model"
)

// Scraper defines the interface each listing platform must implement.
type Scraper interface {
	// Name returns the unique source identifier (e.g., "yelp", "google_maps").
	Name() string

	// Search returns the raw listings matching the filter's search
	// parameters (city, radius, keywords). Records come back uncleaned;
	// the processing pipeline owns normalization.
	Search(ctx context.Context, filter *model.SearchFilter) ([]*model.Business, error)

	// FetchDetail retrieves the full detail page for a listing previously
	// returned by Search. The result carries only the fields the detail
	// page exposes; callers fold it into the base record.
	FetchDetail(ctx context.Context, detailURL string) (*model.Business, error)

	// FetchReviews retrieves up to max reviews from a listing's detail page.
	FetchReviews(ctx context.Context, detailURL string, max int) ([]model.Review, error)
}
