package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/export"
	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/processor"
	"github.com/sells-group/directory-cli/internal/scrape"
	"github.com/sells-group/directory-cli/internal/sentiment"
	"github.com/sells-group/directory-cli/internal/store"
)

// appEnv bundles the wired subsystems a command needs.
type appEnv struct {
	store   store.Store
	manager *scrape.Manager
}

func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	return &appEnv{
		store:   st,
		manager: scrape.NewManager(cfg.Scrape, buildRegistry(cfg.Platforms)),
	}, nil
}

func (e *appEnv) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildRegistry registers a scraper for each enabled platform.
func buildRegistry(platforms config.PlatformsConfig) *scrape.Registry {
	reg := scrape.NewRegistry()
	if platforms.Yelp.Enabled {
		reg.Register(scrape.NewYelp(platforms.Yelp, http.DefaultClient))
	}
	if platforms.GoogleMaps.Enabled {
		reg.Register(scrape.NewGoogleMaps(platforms.GoogleMaps, http.DefaultClient))
	}
	return reg
}

// executeRun drives one scrape-and-reconcile run end to end: scrape the
// selected sources, run the processing pipeline, persist, export. The run
// row tracks progress so interrupted runs are visible in `runs list`.
func executeRun(ctx context.Context, env *appEnv, filter *model.SearchFilter, sources []string, outputPath string) (*model.RunResult, error) {
	run, err := env.store.CreateRun(ctx, filter)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("run_id", run.ID))

	fail := func(err error) (*model.RunResult, error) {
		if fErr := env.store.FailRun(ctx, run.ID, err.Error()); fErr != nil {
			log.Error("failed to record run failure", zap.Error(fErr))
		}
		return nil, err
	}

	// Scrape
	if err := env.store.UpdateRunStatus(ctx, run.ID, model.RunStatusScraping); err != nil {
		return fail(err)
	}
	raw, err := env.manager.Search(ctx, filter, sources)
	if err != nil {
		return fail(err)
	}
	log.Info("scrape complete", zap.Int("raw_records", len(raw)))

	// Reconcile
	if err := env.store.UpdateRunStatus(ctx, run.ID, model.RunStatusProcessing); err != nil {
		return fail(err)
	}

	var stages []model.StageCount
	proc := processor.New(cfg.Processing, processor.WithStageReporter(func(stage string, count int) {
		stages = append(stages, model.StageCount{Stage: stage, Count: count})
	}))
	records, err := proc.Process(raw, filter)
	if err != nil {
		return fail(err)
	}
	if cfg.Processing.Sentiment {
		sentiment.AnnotateBusinesses(records)
	}

	if err := env.store.SaveBusinesses(ctx, run.ID, records); err != nil {
		return fail(err)
	}

	// Export
	if err := env.store.UpdateRunStatus(ctx, run.ID, model.RunStatusExporting); err != nil {
		return fail(err)
	}
	if outputPath == "" {
		outputPath = export.DefaultPath(cfg.Export, time.Now())
	}
	if err := export.Write(records, outputPath); err != nil {
		return fail(err)
	}

	result := &model.RunResult{
		TotalScraped: len(raw),
		TotalKept:    len(records),
		Stages:       stages,
		Platforms:    platformNames(sources),
		ExportPath:   outputPath,
	}
	if err := env.store.CompleteRun(ctx, run.ID, result); err != nil {
		return fail(err)
	}

	log.Info("run complete",
		zap.Int("scraped", result.TotalScraped),
		zap.Int("kept", result.TotalKept),
		zap.String("export", outputPath),
	)
	return result, nil
}

// platformNames resolves the effective source list for the run record.
func platformNames(sources []string) []string {
	if len(sources) > 0 {
		return sources
	}
	var names []string
	if cfg.Platforms.Yelp.Enabled {
		names = append(names, model.SourceYelp)
	}
	if cfg.Platforms.GoogleMaps.Enabled {
		names = append(names, model.SourceGoogleMaps)
	}
	return names
}

// requireFilter validates that the run has at least a location or keyword
// to search for.
func requireFilter(filter *model.SearchFilter) error {
	if filter == nil || (filter.City == "" && filter.Keywords == "" && filter.CuisineType == "") {
		return eris.New("search: a city, cuisine, or keywords is required")
	}
	return nil
}
