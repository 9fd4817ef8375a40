package scrape

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Listing platforms serve a degraded page to obvious bot agents; a plain
// browser UA keeps the markup consistent with what the selectors expect.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var (
	ratingRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	countRe  = regexp.MustCompile(`(\d[\d,]*)`)
)

// fetchDocument GETs the URL and parses the response body as HTML.
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: build request %s", url)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scrape: fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse %s", url)
	}
	return doc, nil
}

// parseRating extracts the leading decimal from strings like
// "4.5 star rating" or "Rated 4.5 out of 5". Returns nil when absent.
func parseRating(s string) *float64 {
	m := ratingRe.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || f < 0 || f > 5 {
		return nil
	}
	return &f
}

// parseCount extracts the first integer from strings like "(1,204 reviews)".
func parseCount(s string) int {
	m := countRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatMeters converts a search radius in miles to whole meters, the unit
// the platforms take in their query strings.
func formatMeters(miles float64) string {
	return strconv.Itoa(int(miles * 1609.34))
}
