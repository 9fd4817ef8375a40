package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
)

var searchFlags struct {
	filterFile string
	city       string
	cuisine    string
	keywords   string
	radius     float64
	minRating  float64
	maxRating  float64
	minReviews int
	prices     []string
	features   []string
	sources    []string
	output     string
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Scrape the directory platforms and reconcile the results",
	Long:  "Searches the enabled platforms for matching businesses, runs the reconciliation pipeline, persists the run, and exports the consolidated records.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		filter, err := buildSearchFilter(cmd)
		if err != nil {
			return err
		}
		if err := requireFilter(filter); err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := executeRun(ctx, env, filter, searchFlags.sources, searchFlags.output)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Scraped %d records, kept %d after reconciliation.\n",
			result.TotalScraped, result.TotalKept)
		fmt.Fprintf(os.Stdout, "Export written to %s\n", result.ExportPath)
		return nil
	},
}

// buildSearchFilter merges the filter file (when given) with the flag
// overrides; an explicit flag always wins over the file value.
func buildSearchFilter(cmd *cobra.Command) (*model.SearchFilter, error) {
	filter := &model.SearchFilter{}

	if searchFlags.filterFile != "" {
		loaded, err := config.LoadSearchFilter(searchFlags.filterFile)
		if err != nil {
			return nil, err
		}
		filter = loaded
	}

	if cmd.Flags().Changed("city") {
		filter.City = searchFlags.city
	}
	if cmd.Flags().Changed("cuisine") {
		filter.CuisineType = searchFlags.cuisine
	}
	if cmd.Flags().Changed("keywords") {
		filter.Keywords = searchFlags.keywords
	}
	if cmd.Flags().Changed("radius") {
		filter.Radius = searchFlags.radius
	}
	if cmd.Flags().Changed("min-rating") {
		v := searchFlags.minRating
		filter.MinRating = &v
	}
	if cmd.Flags().Changed("max-rating") {
		v := searchFlags.maxRating
		filter.MaxRating = &v
	}
	if cmd.Flags().Changed("min-reviews") {
		v := searchFlags.minReviews
		filter.MinReviews = &v
	}
	if cmd.Flags().Changed("price") {
		filter.PriceLevels = searchFlags.prices
	}
	if cmd.Flags().Changed("feature") {
		filter.Features = searchFlags.features
	}

	return filter, nil
}

func init() {
	searchCmd.Flags().StringVar(&searchFlags.filterFile, "filter-file", "", "YAML file with search filter criteria")
	searchCmd.Flags().StringVar(&searchFlags.city, "city", "", "city to search in")
	searchCmd.Flags().StringVar(&searchFlags.cuisine, "cuisine", "", "cuisine type to match")
	searchCmd.Flags().StringVar(&searchFlags.keywords, "keywords", "", "keywords to match against name and category")
	searchCmd.Flags().Float64Var(&searchFlags.radius, "radius", 0, "search radius in miles")
	searchCmd.Flags().Float64Var(&searchFlags.minRating, "min-rating", 0, "minimum rating (records without a rating are kept)")
	searchCmd.Flags().Float64Var(&searchFlags.maxRating, "max-rating", 0, "maximum rating (records without a rating are kept)")
	searchCmd.Flags().IntVar(&searchFlags.minReviews, "min-reviews", 0, "minimum review count")
	searchCmd.Flags().StringSliceVar(&searchFlags.prices, "price", nil, "acceptable price levels ($, $$, $$$, $$$$)")
	searchCmd.Flags().StringSliceVar(&searchFlags.features, "feature", nil, "required features (e.g. delivery, takeout)")
	searchCmd.Flags().StringSliceVar(&searchFlags.sources, "sources", nil, "restrict to specific sources (yelp, google_maps)")
	searchCmd.Flags().StringVar(&searchFlags.output, "output", "", "export file path (extension picks the format)")

	rootCmd.AddCommand(searchCmd)
}
