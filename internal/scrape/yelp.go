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

// Yelp scrapes the Yelp search and business detail pages.
//
// Selectors target the data-testid attributes of the current desktop
// markup; they break when Yelp ships a redesign, which is the expected
// failure mode for HTML scraping.
type Yelp struct {
	client  *http.Client
	baseURL string
}

// NewYelp builds a Yelp scraper. The client and base URL are injectable
// so tests can point the scraper at a local fixture server.
func NewYelp(cfg config.PlatformConfig, client *http.Client) *Yelp {
	if client == nil {
		client = http.DefaultClient
	}
	return &Yelp{client: client, baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

func (y *Yelp) Name() string { return model.SourceYelp }

func (y *Yelp) Search(ctx context.Context, filter *model.SearchFilter) ([]*model.Business, error) {
	doc, err := fetchDocument(ctx, y.client, y.searchURL(filter))
	if err != nil {
		return nil, err
	}

	var records []*model.Business
	doc.Find(`div[data-testid="serp-ia-card"]`).Each(func(_ int, card *goquery.Selection) {
		link := card.Find(`a[data-testid="business-link"]`).First()
		name := cleanText(link.Text())
		if name == "" {
			return
		}

		b := &model.Business{
			Name:        name,
			Address:     cleanText(card.Find("address").First().Text()),
			City:        filter.City,
			Category:    cleanText(card.Find(`span[data-testid="category"]`).First().Text()),
			CuisineType: cleanText(card.Find(`span[data-testid="category"]`).First().Text()),
			PriceLevel:  cleanText(card.Find(`span[data-testid="price-range"]`).First().Text()),
			Rating:      parseRating(card.Find(`div[role="img"]`).First().AttrOr("aria-label", "")),
			ReviewCount: parseCount(card.Find(`span[data-testid="review-count"]`).First().Text()),
		}

		if href, ok := link.Attr("href"); ok {
			detail := y.resolve(href)
			b.SetRef(model.SourceYelp, model.SourceRef{
				ID:  strings.TrimPrefix(strings.TrimPrefix(href, "/biz/"), y.baseURL+"/biz/"),
				URL: detail,
			})
		}

		records = append(records, b)
	})

	return records, nil
}

func (y *Yelp) FetchDetail(ctx context.Context, detailURL string) (*model.Business, error) {
	doc, err := fetchDocument(ctx, y.client, detailURL)
	if err != nil {
		return nil, err
	}

	b := &model.Business{
		Name:        cleanText(doc.Find("h1").First().Text()),
		Address:     cleanText(doc.Find("address").First().Text()),
		Phone:       cleanText(doc.Find(`p[data-testid="phone"]`).First().Text()),
		Website:     cleanText(doc.Find(`a[data-testid="website"]`).First().Text()),
		Rating:      parseRating(doc.Find(`div[role="img"]`).First().AttrOr("aria-label", "")),
		ReviewCount: parseCount(doc.Find(`span[data-testid="review-count"]`).First().Text()),
		LastUpdated: time.Now().UTC(),
	}

	doc.Find(`span[data-testid="amenity"]`).Each(func(_ int, s *goquery.Selection) {
		if f := cleanText(s.Text()); f != "" {
			b.Features = append(b.Features, f)
		}
	})

	b.Hours = parseHoursTable(doc.Find(`table[data-testid="hours"] tr`))

	if b.Name == "" {
		return nil, eris.Errorf("yelp: detail page %s has no business name", detailURL)
	}
	return b, nil
}

func (y *Yelp) FetchReviews(ctx context.Context, detailURL string, max int) ([]model.Review, error) {
	doc, err := fetchDocument(ctx, y.client, detailURL)
	if err != nil {
		return nil, err
	}

	var reviews []model.Review
	doc.Find(`li[data-testid="review"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if max > 0 && len(reviews) >= max {
			return false
		}
		r := model.Review{
			ID:     s.AttrOr("data-review-id", ""),
			Author: cleanText(s.Find(`span[data-testid="author"]`).First().Text()),
			Text:   cleanText(s.Find("p").First().Text()),
			Source: model.SourceYelp,
		}
		if rating := parseRating(s.Find(`div[role="img"]`).First().AttrOr("aria-label", "")); rating != nil {
			r.Rating = *rating
		}
		if dt, ok := s.Find("time").First().Attr("datetime"); ok {
			if parsed, err := time.Parse("2006-01-02", dt); err == nil {
				r.Date = parsed
			}
		}
		if r.ID == "" {
			// Fall back to position so AddReview's uniqueness check still works.
			r.ID = detailURL + "#" + strconv.Itoa(i)
		}
		reviews = append(reviews, r)
		return true
	})

	return reviews, nil
}

func (y *Yelp) searchURL(filter *model.SearchFilter) string {
	q := url.Values{}
	desc := filter.Keywords
	if desc == "" {
		desc = filter.CuisineType
	}
	if desc != "" {
		q.Set("find_desc", desc)
	}
	if filter.City != "" {
		q.Set("find_loc", filter.City)
	}
	if filter.Radius > 0 {
		// Yelp takes the radius in meters.
		q.Set("radius", formatMeters(filter.Radius))
	}
	return y.baseURL + "/search?" + q.Encode()
}

func (y *Yelp) resolve(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return y.baseURL + href
}

// parseHoursTable reads rows of the form <tr><th>Mon</th><td>9am-5pm</td></tr>.
func parseHoursTable(rows *goquery.Selection) *model.Hours {
	if rows.Length() == 0 {
		return nil
	}
	h := &model.Hours{}
	rows.Each(func(_ int, row *goquery.Selection) {
		day := strings.ToLower(cleanText(row.Find("th").First().Text()))
		val := cleanText(row.Find("td").First().Text())
		switch {
		case strings.HasPrefix(day, "mon"):
			h.Monday = val
		case strings.HasPrefix(day, "tue"):
			h.Tuesday = val
		case strings.HasPrefix(day, "wed"):
			h.Wednesday = val
		case strings.HasPrefix(day, "thu"):
			h.Thursday = val
		case strings.HasPrefix(day, "fri"):
			h.Friday = val
		case strings.HasPrefix(day, "sat"):
			h.Saturday = val
		case strings.HasPrefix(day, "sun"):
			h.Sunday = val
		}
	})
	return h
}
