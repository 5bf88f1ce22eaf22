package racer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RankedDriver is one entry of a generation ranking.
type RankedDriver struct {
	Index int     `json:"index"` // position in the population
	Score float64 `json:"score"`
}

// GenerationReport summarizes one concluded generation.
type GenerationReport struct {
	RunID      uuid.UUID
	Generation int
	Driver     string
	Ticks      int
	Wins       int
	Crashes    int
	Ranking    []RankedDriver // descending score, ties in population order
	Best       float64
	Mean       float64
	Median     float64
	Stdev      float64
	Elapsed    time.Duration
}

// Reporter receives a report after every concluded generation. Errors are logged by
// the population and never stop the run.
type Reporter interface {
	ReportGeneration(ctx context.Context, r *GenerationReport) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, r *GenerationReport) error

// ReportGeneration calls f(ctx, r).
func (f ReporterFunc) ReportGeneration(ctx context.Context, r *GenerationReport) error {
	return f(ctx, r)
}

// LogReporter writes a one-line summary per generation.
type LogReporter struct {
	Logger zerolog.Logger
}

// ReportGeneration logs the report at info level.
func (l LogReporter) ReportGeneration(_ context.Context, r *GenerationReport) error {
	ev := l.Logger.Info().
		Str("run", r.RunID.String()).
		Int("generation", r.Generation).
		Int("ticks", r.Ticks).
		Int("wins", r.Wins).
		Int("crashes", r.Crashes).
		Float64("best", r.Best).
		Float64("mean", r.Mean).
		Float64("median", r.Median).
		Float64("stdev", r.Stdev).
		Dur("elapsed", r.Elapsed)
	if len(r.Ranking) > 0 {
		ev = ev.Int("leader", r.Ranking[0].Index)
	}
	ev.Msg("generation summary")
	return nil
}

func newGenerationReport(runID uuid.UUID, generation int, driver string, ticks, wins, crashes int, ranking []RankedDriver, elapsed time.Duration) *GenerationReport {
	scores := make([]float64, len(ranking))
	for i, r := range ranking {
		scores[i] = r.Score
	}
	return &GenerationReport{
		RunID:      runID,
		Generation: generation,
		Driver:     driver,
		Ticks:      ticks,
		Wins:       wins,
		Crashes:    crashes,
		Ranking:    ranking,
		Best:       MaxFloat(scores),
		Mean:       Mean(scores),
		Median:     Median(scores),
		Stdev:      Stdev(scores),
		Elapsed:    elapsed,
	}
}
