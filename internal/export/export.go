package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
)

// Write exports the records to path, picking the format from the file
// extension (.csv, .xlsx, .json).
func Write(records []*model.Business, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create output dir for %s", path)
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = writeCSV(records, path)
	case ".xlsx":
		err = writeXLSX(records, path)
	case ".json":
		err = writeJSON(records, path)
	default:
		return eris.Errorf("export: unsupported format %q (valid: csv, xlsx, json)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	zap.L().Info("export written",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

// DefaultPath builds a timestamped output path from the export config.
func DefaultPath(cfg config.ExportConfig, now time.Time) string {
	format := cfg.Format
	if format == "" {
		format = "csv"
	}
	name := "businesses_" + now.UTC().Format("20060102_150405") + "." + format
	return filepath.Join(cfg.OutputDir, name)
}

func writeCSV(records []*model.Business, path string) error {
	data, err := csvutil.Marshal(Rows(records))
	if err != nil {
		return eris.Wrap(err, "export: marshal csv")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}

func writeJSON(records []*model.Business, path string) error {
	// JSON keeps the full nested records; the flattened row is a
	// spreadsheet concession.
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal json")
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "export: write %s", path)
}

// xlsxColumns is the ordered header row for the spreadsheet export.
var xlsxColumns = []string{
	"Name", "Address", "City", "State", "Zip Code",
	"Phone", "Website", "Email", "Email Validated",
	"Category", "Cuisine", "Price Level",
	"Rating", "Review Count", "Latitude", "Longitude",
	"Data Sources", "Features", "Avg Sentiment",
	"Scraped At", "Last Updated",
}

func writeXLSX(records []*model.Business, path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Businesses")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range xlsxColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range Rows(records) {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Address)
		row.AddCell().SetString(r.City)
		row.AddCell().SetString(r.State)
		row.AddCell().SetString(r.ZipCode)
		row.AddCell().SetString(r.Phone)
		row.AddCell().SetString(r.Website)
		row.AddCell().SetString(r.Email)
		row.AddCell().SetBool(r.EmailValidated)
		row.AddCell().SetString(r.Category)
		row.AddCell().SetString(r.CuisineType)
		row.AddCell().SetString(r.PriceLevel)
		row.AddCell().SetString(r.Rating)
		row.AddCell().SetInt(r.ReviewCount)
		row.AddCell().SetString(r.Latitude)
		row.AddCell().SetString(r.Longitude)
		row.AddCell().SetString(r.DataSources)
		row.AddCell().SetString(r.Features)
		row.AddCell().SetString(r.AvgSentiment)
		row.AddCell().SetString(r.ScrapedAt)
		row.AddCell().SetString(r.LastUpdated)
	}

	return eris.Wrapf(file.Save(path), "export: write %s", path)
}
