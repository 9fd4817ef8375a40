package model

import (
	"strings"
	"time"
)

// Source identifiers for the scraping platforms that contribute records.
const (
	SourceYelp       = "yelp"
	SourceGoogleMaps = "google_maps"
)

// PriceLevel tiers as displayed by the listing platforms.
const (
	PriceCheap     = "$"
	PriceModerate  = "$$"
	PriceExpensive = "$$$"
	PriceLuxury    = "$$$$"
)

// SourceRef holds the platform-specific identifier and URL for a business
// on a single source.
type SourceRef struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url,omitempty"`
}

// Review is a single scraped review for a business. Reviews are unique by
// ID within a business.
type Review struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Rating         float64   `json:"rating"`
	Text           string    `json:"text"`
	Date           time.Time `json:"date"`
	Source         string    `json:"source"`
	HelpfulVotes   int       `json:"helpful_votes"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	SentimentLabel string    `json:"sentiment_label,omitempty"`
}

// Hours holds per-weekday free-text operating hours.
type Hours struct {
	Monday    string `json:"monday,omitempty"`
	Tuesday   string `json:"tuesday,omitempty"`
	Wednesday string `json:"wednesday,omitempty"`
	Thursday  string `json:"thursday,omitempty"`
	Friday    string `json:"friday,omitempty"`
	Saturday  string `json:"saturday,omitempty"`
	Sunday    string `json:"sunday,omitempty"`
}

// Business is the canonical directory listing for a physical establishment.
// Records are created by scraping sources, mutated in place by the cleaning
// stage, and may absorb other records during deduplication.
type Business struct {
	// Identity
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`

	// Contact
	Phone          string `json:"phone,omitempty"`
	Website        string `json:"website,omitempty"`
	Email          string `json:"email,omitempty"`
	EmailValidated bool   `json:"email_validated"`

	// Classification
	Category    string `json:"category,omitempty"`
	CuisineType string `json:"cuisine_type,omitempty"`
	PriceLevel  string `json:"price_level,omitempty"`

	// Geo
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Popularity. Rating is nil when no source supplied one; when present it
	// must be within [0,5]. ReviewCount is the platform's displayed count and
	// may exceed len(Reviews); it is never negative.
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`
	Reviews     []Review `json:"reviews,omitempty"`

	Hours *Hours `json:"hours,omitempty"`

	// Provenance. DataSources is a set: no source appears twice even when a
	// record is merged more than once. SourceRefs holds one slot per source.
	DataSources []string             `json:"data_sources"`
	SourceRefs  map[string]SourceRef `json:"source_refs,omitempty"`

	Features []string `json:"features,omitempty"`
	Photos   []string `json:"photos,omitempty"`

	ScrapedAt   time.Time `json:"scraped_at"`
	LastUpdated time.Time `json:"last_updated"`

	// IsDuplicate is set on records absorbed into a survivor. Absorbed
	// records are excluded from output but their data may already have been
	// folded into the survivor.
	IsDuplicate bool `json:"is_duplicate"`
}

// FullAddress joins the populated address components.
func (b *Business) FullAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{b.Address, b.City, b.State, b.ZipCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// AddSource records a contributing source, preserving set semantics.
func (b *Business) AddSource(source string) {
	for _, s := range b.DataSources {
		if s == source {
			return
		}
	}
	b.DataSources = append(b.DataSources, source)
}

// HasSource reports whether the given source contributed to this record.
func (b *Business) HasSource(source string) bool {
	for _, s := range b.DataSources {
		if s == source {
			return true
		}
	}
	return false
}

// Ref returns the source-specific identifier slot for a source, if set.
func (b *Business) Ref(source string) (SourceRef, bool) {
	ref, ok := b.SourceRefs[source]
	return ref, ok
}

// SetRef stores a source-specific identifier slot, allocating the map lazily.
func (b *Business) SetRef(source string, ref SourceRef) {
	if b.SourceRefs == nil {
		b.SourceRefs = make(map[string]SourceRef, 2)
	}
	b.SourceRefs[source] = ref
}

// AddReview appends a review if its ID is not already present.
func (b *Business) AddReview(r Review) {
	for _, existing := range b.Reviews {
		if existing.ID == r.ID {
			return
		}
	}
	b.Reviews = append(b.Reviews, r)
}

// AverageSentiment returns the mean sentiment score across scored reviews,
// or nil when no review carries a score.
func (b *Business) AverageSentiment() *float64 {
	var sum float64
	var n int
	for _, r := range b.Reviews {
		if r.SentimentScore != nil {
			sum += *r.SentimentScore
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// SentimentDistribution counts reviews per sentiment label.
func (b *Business) SentimentDistribution() map[string]int {
	dist := map[string]int{"positive": 0, "negative": 0, "neutral": 0}
	for _, r := range b.Reviews {
		if _, ok := dist[r.SentimentLabel]; ok {
			dist[r.SentimentLabel]++
		}
	}
	return dist
}

// SearchFilter holds the user-supplied query criteria. Nil pointer fields
// and empty slices mean the criterion is not applied. City and Radius are
// consumed by scrapers as search parameters; the remaining criteria drive
// the post-scrape filter stage.
type SearchFilter struct {
	City        string   `json:"city,omitempty" yaml:"city"`
	Radius      float64  `json:"radius,omitempty" yaml:"radius"`
	CuisineType string   `json:"cuisine_type,omitempty" yaml:"cuisine_type"`
	MinRating   *float64 `json:"min_rating,omitempty" yaml:"min_rating"`
	MaxRating   *float64 `json:"max_rating,omitempty" yaml:"max_rating"`
	MinReviews  *int     `json:"min_reviews,omitempty" yaml:"min_reviews"`
	Keywords    string   `json:"keywords,omitempty" yaml:"keywords"`
	PriceLevels []string `json:"price_levels,omitempty" yaml:"price_levels"`
	Features    []string `json:"features,omitempty" yaml:"features"`
}
