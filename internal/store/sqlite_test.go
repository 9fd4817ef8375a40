package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	filter := &model.SearchFilter{City: "Springfield", CuisineType: "pizza"}
	run, err := s.CreateRun(ctx, filter)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusScraping))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusScraping, got.Status)
	require.NotNil(t, got.Filter)
	assert.Equal(t, "Springfield", got.Filter.City)
	assert.Equal(t, "pizza", got.Filter.CuisineType)

	result := &model.RunResult{
		TotalScraped: 10,
		TotalKept:    7,
		Stages:       []model.StageCount{{Stage: "dedupe", Count: 7}},
		Platforms:    []string{model.SourceYelp},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 7, got.Result.TotalKept)
	assert.Equal(t, []model.StageCount{{Stage: "dedupe", Count: 7}}, got.Result.Stages)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, "all sources failed"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "all sources failed", got.Result.Error)
	assert.Nil(t, got.Filter, "nil filter round-trips as nil")
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "missing")
	assert.Error(t, err)

	assert.Error(t, s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed))
	assert.Error(t, s.CompleteRun(ctx, "missing", &model.RunResult{}))
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)
	b, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, b.ID, "boom"))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, b.ID, failed[0].ID)

	queued, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusQueued})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, a.ID, queued[0].ID)
}

func TestSQLiteSaveAndListBusinesses(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)

	rating := 4.5
	records := []*model.Business{
		{
			Name: "Joe's Pizza", Address: "10 Main St", City: "Springfield",
			Rating:      &rating,
			DataSources: []string{model.SourceYelp, model.SourceGoogleMaps},
			Features:    []string{"delivery"},
		},
		{
			Name: "Ace Diner", Address: "22 Oak Rd", City: "Shelbyville",
			DataSources: []string{model.SourceYelp},
		},
	}
	require.NoError(t, s.SaveBusinesses(ctx, run.ID, records))

	got, err := s.ListBusinesses(ctx, BusinessFilter{RunID: run.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)

	byCity, err := s.ListBusinesses(ctx, BusinessFilter{City: "springfield"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "Joe's Pizza", byCity[0].Name)
	require.NotNil(t, byCity[0].Rating)
	assert.Equal(t, 4.5, *byCity[0].Rating)
	assert.ElementsMatch(t, []string{model.SourceYelp, model.SourceGoogleMaps}, byCity[0].DataSources)

	bySource, err := s.ListBusinesses(ctx, BusinessFilter{Source: model.SourceGoogleMaps})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "Joe's Pizza", bySource[0].Name)
}

func TestSQLiteSaveBusinessesEmpty(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, s.SaveBusinesses(ctx, run.ID, nil))

	got, err := s.ListBusinesses(ctx, BusinessFilter{RunID: run.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}
