package scrape

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
)

// GoogleMaps scrapes the Maps place-search result page. Maps renders most
// content client-side; this targets the server-rendered fallback markup,
// which carries less detail than Yelp's pages but includes coordinates.
type GoogleMaps struct {
	client  *http.Client
	baseURL string
}

// NewGoogleMaps builds a Maps scraper with an injectable client and base URL.
func NewGoogleMaps(cfg config.PlatformConfig, client *http.Client) *GoogleMaps {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleMaps{client: client, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

func (g *GoogleMaps) Name() string { return model.SourceGoogleMaps }

func (g *GoogleMaps) Search(ctx context.Context, filter *model.SearchFilter) ([]*model.Business, error) {
	doc, err := fetchDocument(ctx, g.client, g.searchURL(filter))
	if err != nil {
		return nil, err
	}

	var records []*model.Business
	doc.Find(`div[role="article"]`).Each(func(_ int, card *goquery.Selection) {
		name := cleanText(card.AttrOr("aria-label", ""))
		if name == "" {
			name = cleanText(card.Find(".place-name").First().Text())
		}
		if name == "" {
			return
		}

		b := &model.Business{
			Name:        name,
			Address:     cleanText(card.Find(".place-address").First().Text()),
			City:        filter.City,
			Category:    cleanText(card.Find(".place-category").First().Text()),
			PriceLevel:  cleanText(card.Find(".place-price").First().Text()),
			Rating:      parseRating(card.Find(`span[role="img"]`).First().AttrOr("aria-label", "")),
			ReviewCount: parseCount(card.Find(".place-reviews").First().Text()),
		}

		if lat, ok := parseCoord(card.AttrOr("data-lat", "")); ok {
			b.Latitude = lat
		}
		if lng, ok := parseCoord(card.AttrOr("data-lng", "")); ok {
			b.Longitude = lng
		}

		if href, ok := card.Find("a").First().Attr("href"); ok {
			b.SetRef(model.SourceGoogleMaps, model.SourceRef{
				ID:  card.AttrOr("data-place-id", ""),
				URL: g.resolve(href),
			})
		}

		records = append(records, b)
	})

	return records, nil
}

func (g *GoogleMaps) FetchDetail(ctx context.Context, detailURL string) (*model.Business, error) {
	doc, err := fetchDocument(ctx, g.client, detailURL)
	if err != nil {
		return nil, err
	}

	b := &model.Business{
		Name:        cleanText(doc.Find("h1").First().Text()),
		Address:     cleanText(doc.Find(".place-address").First().Text()),
		Phone:       cleanText(doc.Find(".place-phone").First().Text()),
		Website:     cleanText(doc.Find(`a[data-tooltip="Open website"]`).First().AttrOr("href", "")),
		Rating:      parseRating(doc.Find(`span[role="img"]`).First().AttrOr("aria-label", "")),
		ReviewCount: parseCount(doc.Find(".place-reviews").First().Text()),
		LastUpdated: time.Now().UTC(),
	}

	if b.Name == "" {
		return nil, eris.Errorf("googlemaps: detail page %s has no place name", detailURL)
	}
	return b, nil
}

func (g *GoogleMaps) FetchReviews(ctx context.Context, detailURL string, max int) ([]model.Review, error) {
	doc, err := fetchDocument(ctx, g.client, detailURL)
	if err != nil {
		return nil, err
	}

	var reviews []model.Review
	doc.Find(`div[data-review-id]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if max > 0 && len(reviews) >= max {
			return false
		}
		r := model.Review{
			ID:     s.AttrOr("data-review-id", detailURL+"#"+strconv.Itoa(i)),
			Author: cleanText(s.Find(".review-author").First().Text()),
			Text:   cleanText(s.Find(".review-text").First().Text()),
			Source: model.SourceGoogleMaps,
		}
		if rating := parseRating(s.Find(`span[role="img"]`).First().AttrOr("aria-label", "")); rating != nil {
			r.Rating = *rating
		}
		reviews = append(reviews, r)
		return true
	})

	return reviews, nil
}

func (g *GoogleMaps) searchURL(filter *model.SearchFilter) string {
	terms := make([]string, 0, 3)
	if filter.Keywords != "" {
		terms = append(terms, filter.Keywords)
	}
	if filter.CuisineType != "" {
		terms = append(terms, filter.CuisineType)
	}
	if len(terms) == 0 {
		terms = append(terms, "restaurants")
	}
	if filter.City != "" {
		terms = append(terms, "in "+filter.City)
	}
	return g.baseURL + "/search/" + url.PathEscape(strings.Join(terms, " "))
}

func (g *GoogleMaps) resolve(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return g.baseURL + href
}

func parseCoord(s string) (*float64, bool) {
	if s == "" {
		return nil, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}
