// Package export writes consolidated business records to CSV, XLSX, or
// JSON files, flattening the nested record into one spreadsheet row per
// business.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/directory-cli/internal/model"
)

// Row is the flattened per-business export shape. Multi-value fields are
// joined with "; " so the row stays spreadsheet-friendly.
type Row struct {
	Name           string `csv:"name" json:"name"`
	Address        string `csv:"address" json:"address"`
	City           string `csv:"city" json:"city"`
	State          string `csv:"state" json:"state"`
	ZipCode        string `csv:"zip_code" json:"zip_code"`
	Phone          string `csv:"phone" json:"phone"`
	Website        string `csv:"website" json:"website"`
	Email          string `csv:"email" json:"email"`
	EmailValidated bool   `csv:"email_validated" json:"email_validated"`
	Category       string `csv:"category" json:"category"`
	CuisineType    string `csv:"cuisine_type" json:"cuisine_type"`
	PriceLevel     string `csv:"price_level" json:"price_level"`
	Rating         string `csv:"rating" json:"rating"`
	ReviewCount    int    `csv:"review_count" json:"review_count"`
	Latitude       string `csv:"latitude" json:"latitude"`
	Longitude      string `csv:"longitude" json:"longitude"`
	DataSources    string `csv:"data_sources" json:"data_sources"`
	Features       string `csv:"features" json:"features"`
	AvgSentiment   string `csv:"avg_sentiment" json:"avg_sentiment"`
	ScrapedAt      string `csv:"scraped_at" json:"scraped_at"`
	LastUpdated    string `csv:"last_updated" json:"last_updated"`
}

// Flatten converts a business into its export row.
func Flatten(b *model.Business) Row {
	return Row{
		Name:           b.Name,
		Address:        b.Address,
		City:           b.City,
		State:          b.State,
		ZipCode:        b.ZipCode,
		Phone:          b.Phone,
		Website:        b.Website,
		Email:          b.Email,
		EmailValidated: b.EmailValidated,
		Category:       b.Category,
		CuisineType:    b.CuisineType,
		PriceLevel:     b.PriceLevel,
		Rating:         formatFloat(b.Rating, 1),
		ReviewCount:    b.ReviewCount,
		Latitude:       formatFloat(b.Latitude, 6),
		Longitude:      formatFloat(b.Longitude, 6),
		DataSources:    strings.Join(b.DataSources, "; "),
		Features:       strings.Join(b.Features, "; "),
		AvgSentiment:   formatFloat(b.AverageSentiment(), 3),
		ScrapedAt:      formatTime(b.ScrapedAt),
		LastUpdated:    formatTime(b.LastUpdated),
	}
}

// Rows flattens every record, preserving order.
func Rows(records []*model.Business) []Row {
	rows := make([]Row, 0, len(records))
	for _, b := range records {
		rows = append(rows, Flatten(b))
	}
	return rows
}

// formatFloat renders an optional float, empty when absent so spreadsheet
// columns distinguish "no rating" from 0.
func formatFloat(f *float64, prec int) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', prec, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
