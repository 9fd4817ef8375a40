package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/scrape"
	"github.com/sells-group/directory-cli/internal/store"
)

// fakeSource feeds canned listings into the run pipeline.
type fakeSource struct {
	name    string
	results []*model.Business
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Search(context.Context, *model.SearchFilter) ([]*model.Business, error) {
	return f.results, nil
}
func (f *fakeSource) FetchDetail(context.Context, string) (*model.Business, error) {
	return nil, nil
}
func (f *fakeSource) FetchReviews(context.Context, string, int) ([]model.Review, error) {
	return nil, nil
}

func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Scrape:     config.ScrapeConfig{ConcurrentRequests: 2, RequestsPerSecond: 1000, TimeoutSecs: 5},
		Processing: config.ProcessingConfig{EmailValidation: true},
		Export:     config.ExportConfig{Format: "json", OutputDir: t.TempDir()},
	}
	t.Cleanup(func() { cfg = prev })
}

func newTestEnv(t *testing.T, sources ...scrape.Scraper) *appEnv {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "env.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	reg := scrape.NewRegistry()
	for _, s := range sources {
		reg.Register(s)
	}
	return &appEnv{store: st, manager: scrape.NewManager(cfg.Scrape, reg)}
}

func TestExecuteRunEndToEnd(t *testing.T) {
	setTestConfig(t)

	env := newTestEnv(t,
		&fakeSource{name: model.SourceYelp, results: []*model.Business{
			{Name: "Joe's Pizza", Address: "10 Main St", City: "Springfield"},
			{Name: "Ace Diner", Address: "22 Oak Rd", City: "Springfield"},
		}},
		&fakeSource{name: model.SourceGoogleMaps, results: []*model.Business{
			{Name: "Joes Pizza", Address: "10 Main Street", City: "Springfield"},
		}},
	)

	output := filepath.Join(t.TempDir(), "out.json")
	result, err := executeRun(context.Background(), env, &model.SearchFilter{City: "Springfield"}, nil, output)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalScraped)
	assert.Equal(t, 2, result.TotalKept, "the two Joe's Pizza records collapse")
	assert.Equal(t, output, result.ExportPath)
	assert.NotEmpty(t, result.Stages)

	_, err = os.Stat(output)
	require.NoError(t, err, "export file exists")

	// Run history reflects completion, and the consolidated records were saved.
	runs, err := env.store.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)

	saved, err := env.store.ListBusinesses(context.Background(), store.BusinessFilter{RunID: runs[0].ID})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestExecuteRunMarksFailure(t *testing.T) {
	setTestConfig(t)

	// Empty registry: the manager returns no records, and the processor
	// rejects the nil list, so the run must land in failed status.
	env := newTestEnv(t)

	_, err := executeRun(context.Background(), env, &model.SearchFilter{City: "Springfield"}, nil, "")
	require.Error(t, err)

	runs, err := env.store.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].Result)
	assert.NotEmpty(t, runs[0].Result.Error)
}

func TestRequireFilter(t *testing.T) {
	assert.Error(t, requireFilter(nil))
	assert.Error(t, requireFilter(&model.SearchFilter{}))
	assert.NoError(t, requireFilter(&model.SearchFilter{City: "Springfield"}))
	assert.NoError(t, requireFilter(&model.SearchFilter{Keywords: "pizza"}))
	assert.NoError(t, requireFilter(&model.SearchFilter{CuisineType: "pizza"}))
}

func TestPlatformNames(t *testing.T) {
	setTestConfig(t)
	cfg.Platforms.Yelp.Enabled = true
	cfg.Platforms.GoogleMaps.Enabled = false

	assert.Equal(t, []string{model.SourceYelp}, platformNames(nil))
	assert.Equal(t, []string{"custom"}, platformNames([]string{"custom"}), "explicit sources win")
}

func TestBuildRegistry(t *testing.T) {
	reg := buildRegistry(config.PlatformsConfig{
		Yelp:       config.PlatformConfig{Enabled: true, BaseURL: "https://yelp.example"},
		GoogleMaps: config.PlatformConfig{Enabled: false},
	})

	assert.Equal(t, []string{model.SourceYelp}, reg.AllNames())
}
