package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
)

func sampleRecords() []*model.Business {
	rating := 4.5
	sentiment := 0.8
	return []*model.Business{
		{
			Name:           "Joe's Pizza",
			Address:        "10 Main St",
			City:           "Springfield",
			State:          "IL",
			ZipCode:        "62704",
			Phone:          "(217) 555-0134",
			Email:          "info@joespizza.example.com",
			EmailValidated: true,
			CuisineType:    "Pizza",
			PriceLevel:     model.PriceModerate,
			Rating:         &rating,
			ReviewCount:    128,
			DataSources:    []string{model.SourceYelp, model.SourceGoogleMaps},
			Features:       []string{"delivery", "takeout"},
			Reviews: []model.Review{
				{ID: "r1", SentimentScore: &sentiment, SentimentLabel: "positive"},
			},
			ScrapedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		},
		{
			Name: "Ace Diner", City: "Springfield",
			DataSources: []string{model.SourceYelp},
		},
	}
}

func TestFlatten(t *testing.T) {
	row := Flatten(sampleRecords()[0])

	assert.Equal(t, "Joe's Pizza", row.Name)
	assert.Equal(t, "4.5", row.Rating)
	assert.Equal(t, "yelp; google_maps", row.DataSources)
	assert.Equal(t, "delivery; takeout", row.Features)
	assert.Equal(t, "0.800", row.AvgSentiment)
	assert.Equal(t, "2026-08-20T12:00:00Z", row.ScrapedAt)
	assert.Empty(t, row.LastUpdated, "zero time renders empty")
}

func TestFlattenMissingOptionals(t *testing.T) {
	row := Flatten(sampleRecords()[1])

	assert.Empty(t, row.Rating, "absent rating is blank, not zero")
	assert.Empty(t, row.Latitude)
	assert.Empty(t, row.AvgSentiment)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(sampleRecords(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []Row
	require.NoError(t, csvutil.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Joe's Pizza", rows[0].Name)
	assert.Equal(t, 128, rows[0].ReviewCount)
	assert.True(t, rows[0].EmailValidated)
	assert.Equal(t, "Ace Diner", rows[1].Name)
}

func TestWriteJSONKeepsNestedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Write(sampleRecords(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []*model.Business
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	require.Len(t, got[0].Reviews, 1, "json export keeps reviews")
	assert.Equal(t, "r1", got[0].Reviews[0].ID)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(sampleRecords(), path))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Businesses", sheet.Name)
	require.Len(t, sheet.Rows, 3, "header plus two records")
	assert.Equal(t, "Name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Joe's Pizza", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "4.5", sheet.Rows[1].Cells[12].String())
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := Write(sampleRecords(), filepath.Join(t.TempDir(), "out.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	got := DefaultPath(config.ExportConfig{Format: "xlsx", OutputDir: "exports"}, now)
	assert.Equal(t, filepath.Join("exports", "businesses_20260823_093000.xlsx"), got)

	got = DefaultPath(config.ExportConfig{OutputDir: "exports"}, now)
	assert.Equal(t, filepath.Join("exports", "businesses_20260823_093000.csv"), got)
}
