// Package report provides generation reporters backed by external sinks: a gorm
// history store (SQLite or Postgres) and an InfluxDB writer.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/baldhumanity/lidar-racer/racer"
)

// Run is one training run.
type Run struct {
	ID          string `gorm:"primaryKey;size:36"`
	Driver      string
	CreatedAt   time.Time
	Generations []GenerationRecord `gorm:"foreignKey:RunID"`
}

// GenerationRecord is the persisted form of a racer.GenerationReport.
type GenerationRecord struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;size:36"`
	Generation int    `gorm:"index"`
	Ticks      int
	Wins       int
	Crashes    int
	Best       float64
	Mean       float64
	Median     float64
	Stdev      float64
	ElapsedMs  int64
	Ranking    datatypes.JSON
	CreatedAt  time.Time
}

// DecodeRanking returns the stored ranking.
func (g *GenerationRecord) DecodeRanking() ([]racer.RankedDriver, error) {
	var ranking []racer.RankedDriver
	if len(g.Ranking) == 0 {
		return ranking, nil
	}
	if err := json.Unmarshal(g.Ranking, &ranking); err != nil {
		return nil, fmt.Errorf("decoding ranking: %w", err)
	}
	return ranking, nil
}

// StoreConfig selects and locates the history database.
type StoreConfig struct {
	Type string // "sqlite", "postgres" or "memory"
	Path string // sqlite file
	DSN  string // postgres
}

// Store persists generation reports. It implements racer.Reporter.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(cfg StoreConfig) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case "sqlite":
		db, err = OpenSQLite(cfg.Path)
	case "memory":
		db, err = OpenSQLite("file::memory:?cache=shared")
	case "postgres":
		db, err = OpenPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Type, err)
	}
	return NewStore(db)
}

// OpenSQLite opens a SQLite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// OpenPostgres opens a Postgres database from a DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// NewStore wraps an open database and migrates the schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Run{}, &GenerationRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// ReportGeneration stores the report, creating its run on first sight.
func (s *Store) ReportGeneration(ctx context.Context, r *racer.GenerationReport) error {
	ranking, err := json.Marshal(r.Ranking)
	if err != nil {
		return fmt.Errorf("encoding ranking: %w", err)
	}

	db := s.db.WithContext(ctx)
	run := Run{ID: r.RunID.String(), Driver: r.Driver}
	if err := db.Where(Run{ID: run.ID}).FirstOrCreate(&run).Error; err != nil {
		return fmt.Errorf("creating run %s: %w", run.ID, err)
	}

	rec := GenerationRecord{
		RunID:      run.ID,
		Generation: r.Generation,
		Ticks:      r.Ticks,
		Wins:       r.Wins,
		Crashes:    r.Crashes,
		Best:       r.Best,
		Mean:       r.Mean,
		Median:     r.Median,
		Stdev:      r.Stdev,
		ElapsedMs:  r.Elapsed.Milliseconds(),
		Ranking:    datatypes.JSON(ranking),
	}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("storing generation %d: %w", r.Generation, err)
	}
	return nil
}

// History returns the stored generations of a run in order.
func (s *Store) History(ctx context.Context, runID string) ([]GenerationRecord, error) {
	var records []GenerationRecord
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("generation").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("loading history of run %s: %w", runID, err)
	}
	return records, nil
}

// Runs returns every stored run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("loading runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
