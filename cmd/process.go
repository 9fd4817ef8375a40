package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/export"
	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/processor"
	"github.com/sells-group/directory-cli/internal/sentiment"
)

var processFlags struct {
	input      string
	output     string
	filterFile string
}

// processCmd is the offline path: reconcile an existing JSON dump of raw
// records without touching the scrapers or the store.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile an existing JSON file of raw records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := loadRecords(processFlags.input)
		if err != nil {
			return err
		}

		var filter *model.SearchFilter
		if processFlags.filterFile != "" {
			filter, err = config.LoadSearchFilter(processFlags.filterFile)
			if err != nil {
				return err
			}
		}

		proc := processor.New(cfg.Processing)
		records, err := proc.Process(raw, filter)
		if err != nil {
			return err
		}
		if cfg.Processing.Sentiment {
			sentiment.AnnotateBusinesses(records)
		}

		outputPath := processFlags.output
		if outputPath == "" {
			outputPath = export.DefaultPath(cfg.Export, time.Now())
		}
		if err := export.Write(records, outputPath); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Processed %d records, kept %d.\n", len(raw), len(records))
		fmt.Fprintf(os.Stdout, "Export written to %s\n", outputPath)
		return nil
	},
}

func loadRecords(path string) ([]*model.Business, error) {
	if path == "" {
		return nil, eris.New("process: --input is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "process: read %s", path)
	}

	var records []*model.Business
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "process: parse %s", path)
	}
	return records, nil
}

func init() {
	processCmd.Flags().StringVar(&processFlags.input, "input", "", "JSON file of raw business records")
	processCmd.Flags().StringVar(&processFlags.output, "output", "", "export file path (extension picks the format)")
	processCmd.Flags().StringVar(&processFlags.filterFile, "filter-file", "", "YAML file with filter criteria")

	rootCmd.AddCommand(processCmd)
}
