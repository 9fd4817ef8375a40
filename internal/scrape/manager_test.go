package scrape

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
)

// fakeScraper returns canned results and records call counts.
type fakeScraper struct {
	name      string
	results   []*model.Business
	searchErr error

	detail    *model.Business
	reviews   []model.Review
	detailErr error
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Search(context.Context, *model.SearchFilter) ([]*model.Business, error) {
	return f.results, f.searchErr
}

func (f *fakeScraper) FetchDetail(context.Context, string) (*model.Business, error) {
	return f.detail, f.detailErr
}

func (f *fakeScraper) FetchReviews(_ context.Context, _ string, max int) ([]model.Review, error) {
	if max > 0 && len(f.reviews) > max {
		return f.reviews[:max], nil
	}
	return f.reviews, nil
}

func fastScrapeConfig() config.ScrapeConfig {
	return config.ScrapeConfig{
		ConcurrentRequests: 2,
		RequestsPerSecond:  1000,
		TimeoutSecs:        5,
	}
}

func TestManagerSearchCombinesSources(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeScraper{name: "yelp", results: []*model.Business{
		{Name: "Joe's Pizza", City: "Springfield"},
	}})
	reg.Register(&fakeScraper{name: "google_maps", results: []*model.Business{
		{Name: "Ace Diner", City: "Springfield"},
	}})

	m := NewManager(fastScrapeConfig(), reg)

	got, err := m.Search(context.Background(), &model.SearchFilter{City: "Springfield"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	bySources := map[string][]string{}
	for _, b := range got {
		bySources[b.Name] = b.DataSources
		assert.False(t, b.ScrapedAt.IsZero(), "scrape timestamp stamped on the way out")
	}
	assert.Equal(t, []string{"yelp"}, bySources["Joe's Pizza"])
	assert.Equal(t, []string{"google_maps"}, bySources["Ace Diner"])
}

func TestManagerSearchIsolatesFailingSource(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeScraper{name: "yelp", searchErr: eris.New("blocked")})
	reg.Register(&fakeScraper{name: "google_maps", results: []*model.Business{
		{Name: "Ace Diner", City: "Springfield"},
	}})

	m := NewManager(fastScrapeConfig(), reg)

	got, err := m.Search(context.Background(), &model.SearchFilter{}, nil)
	require.NoError(t, err, "one healthy source is enough")
	require.Len(t, got, 1)
	assert.Equal(t, "Ace Diner", got[0].Name)
}

func TestManagerSearchFailsWhenAllSourcesFail(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeScraper{name: "yelp", searchErr: eris.New("blocked")})
	reg.Register(&fakeScraper{name: "google_maps", searchErr: eris.New("blocked")})

	m := NewManager(fastScrapeConfig(), reg)

	_, err := m.Search(context.Background(), &model.SearchFilter{}, nil)
	assert.Error(t, err)
}

func TestManagerSearchSourceSubset(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeScraper{name: "yelp", results: []*model.Business{{Name: "A"}}})
	reg.Register(&fakeScraper{name: "google_maps", results: []*model.Business{{Name: "B"}}})

	m := NewManager(fastScrapeConfig(), reg)

	got, err := m.Search(context.Background(), &model.SearchFilter{}, []string{"yelp"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)
}

func TestManagerDetailEnrichment(t *testing.T) {
	listing := &model.Business{Name: "Joe's", City: "Springfield"}
	listing.SetRef("yelp", model.SourceRef{ID: "joes", URL: "https://example.test/biz/joes"})

	reg := NewRegistry()
	reg.Register(&fakeScraper{
		name:    "yelp",
		results: []*model.Business{listing},
		detail: &model.Business{
			Name:    "Joe's Pizza & Pasta",
			Phone:   "(217) 555-0134",
			Website: "https://joespizza.example.com",
		},
		reviews: []model.Review{
			{ID: "r1", Author: "alice", Rating: 5},
			{ID: "r2", Author: "bob", Rating: 4},
			{ID: "r3", Author: "carol", Rating: 3},
		},
	})

	cfg := fastScrapeConfig()
	cfg.FetchDetails = true
	cfg.MaxReviews = 2

	m := NewManager(cfg, reg)

	got, err := m.Search(context.Background(), &model.SearchFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Joe's Pizza & Pasta", got[0].Name, "detail page name is fuller")
	assert.Equal(t, "(217) 555-0134", got[0].Phone)
	assert.Len(t, got[0].Reviews, 2, "review fetch respects the cap")
}

func TestManagerDetailFailureDegradesToListing(t *testing.T) {
	listing := &model.Business{Name: "Joe's", City: "Springfield"}
	listing.SetRef("yelp", model.SourceRef{URL: "https://example.test/biz/joes"})

	reg := NewRegistry()
	reg.Register(&fakeScraper{
		name:      "yelp",
		results:   []*model.Business{listing},
		detailErr: eris.New("blocked"),
	})

	cfg := fastScrapeConfig()
	cfg.FetchDetails = true

	m := NewManager(cfg, reg)

	got, err := m.Search(context.Background(), &model.SearchFilter{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Joe's", got[0].Name, "listing fields survive a failed detail fetch")
}
