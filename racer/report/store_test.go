package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/lidar-racer/racer"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(StoreConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testReport(runID uuid.UUID, generation int) *racer.GenerationReport {
	return &racer.GenerationReport{
		RunID:      runID,
		Generation: generation,
		Driver:     racer.DriverNoHidden,
		Ticks:      300,
		Wins:       generation,
		Crashes:    1,
		Ranking: []racer.RankedDriver{
			{Index: 4, Score: 150.5},
			{Index: 1, Score: 0.25},
		},
		Best:    150.5,
		Mean:    75.375,
		Median:  75.375,
		Stdev:   106.2,
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestStoreHistory(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	runID := uuid.New()

	// stored out of order on purpose
	require.NoError(t, s.ReportGeneration(ctx, testReport(runID, 2)))
	require.NoError(t, s.ReportGeneration(ctx, testReport(runID, 1)))

	history, err := s.History(ctx, runID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Generation)
	assert.Equal(t, 2, history[1].Generation)
	assert.Equal(t, 2, history[1].Wins)
	assert.Equal(t, int64(1500), history[0].ElapsedMs)
	assert.Equal(t, 150.5, history[0].Best)

	ranking, err := history[0].DecodeRanking()
	require.NoError(t, err)
	assert.Equal(t, testReport(runID, 1).Ranking, ranking)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID.String(), runs[0].ID)
	assert.Equal(t, racer.DriverNoHidden, runs[0].Driver)
}

func TestStoreSeparatesRuns(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, s.ReportGeneration(ctx, testReport(a, 1)))
	require.NoError(t, s.ReportGeneration(ctx, testReport(b, 1)))
	require.NoError(t, s.ReportGeneration(ctx, testReport(b, 2)))

	history, err := s.History(ctx, a.String())
	require.NoError(t, err)
	assert.Len(t, history, 1)

	history, err = s.History(ctx, b.String())
	require.NoError(t, err)
	assert.Len(t, history, 2)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreAsPopulationReporter(t *testing.T) {
	s := testStore(t)
	cfg := racer.DefaultConfig()
	cfg.Population.EpisodeTicks = 5
	level := &racer.Level{Start: racer.Pose{X: 700, Y: 400}}

	factory, err := racer.NewDriverFactory(cfg)
	require.NoError(t, err)
	p, err := racer.NewPopulation(cfg, cfg.Arena.NewArena(level), factory, racer.WithReporters(s), racer.WithRand(racer.NewRand(3)))
	require.NoError(t, err)

	_, err = p.RunEpisode(context.Background())
	require.NoError(t, err)

	history, err := s.History(context.Background(), p.RunID.String())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 5, history[0].Ticks)

	ranking, err := history[0].DecodeRanking()
	require.NoError(t, err)
	assert.Len(t, ranking, cfg.Population.Size)
}

func TestDecodeEmptyRanking(t *testing.T) {
	var rec GenerationRecord
	ranking, err := rec.DecodeRanking()
	require.NoError(t, err)
	assert.Empty(t, ranking)
}

func TestOpenUnknownType(t *testing.T) {
	_, err := Open(StoreConfig{Type: "mongo"})
	assert.Error(t, err)
}
