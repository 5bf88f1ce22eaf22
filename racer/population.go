package racer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// Phase is the state of the generation loop.
type Phase int

const (
	// PhaseRunning accumulates ticks within a generation.
	PhaseRunning Phase = iota
	// PhasePaused means the episode ended and the population awaits Evolve.
	PhasePaused
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// generationState is reset at every generation boundary.
type generationState struct {
	tick     int
	scores   []float64
	finished []bool
	wins     int
	crashes  int
	ranking  []RankedDriver
	started  time.Time
}

// Population holds the vehicles and drivers of a training run and steps them
// through generations. It is not safe for concurrent use; hosts call Tick and
// Evolve from a single loop.
type Population struct {
	Config       *Config
	Arena        *Arena
	Vehicles     []Vehicle
	Drivers      []Driver
	Reproduction *Reproduction
	Generation   int
	RunID        uuid.UUID
	LastReport   *GenerationReport

	phase     Phase
	state     generationState
	logger    zerolog.Logger
	reporters []Reporter
	meter     metric.Meter
	metrics   *engineMetrics
	rng       *rand.Rand
}

// Option configures a Population.
type Option func(*Population)

// WithLogger sets the logger used for generation events.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Population) { p.logger = l }
}

// WithReporters adds reporters notified after each concluded generation.
func WithReporters(r ...Reporter) Option {
	return func(p *Population) { p.reporters = append(p.reporters, r...) }
}

// WithRand replaces the seeded random source.
func WithRand(rng *rand.Rand) Option {
	return func(p *Population) { p.rng = rng }
}

// WithMeter sets the OTel meter for engine counters.
func WithMeter(m metric.Meter) Option {
	return func(p *Population) { p.meter = m }
}

// NewRand returns a PCG source for the seed. Seed 0 draws a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// NewPopulation creates pop_size sensing cars at the arena start pose and binds a
// fresh driver from factory to each.
func NewPopulation(config *Config, arena *Arena, factory DriverFactory, opts ...Option) (*Population, error) {
	if n := config.SelectionCount(); n <= 1 {
		return nil, fmt.Errorf("%w: selection count %d must be greater than 1", ErrConfiguration, n)
	}
	if config.Population.EpisodeTicks <= 0 {
		return nil, fmt.Errorf("%w: episode_ticks must be positive", ErrConfiguration)
	}

	p := &Population{
		Config:     config,
		Arena:      arena,
		Generation: 1,
		RunID:      uuid.New(),
		phase:      PhaseRunning,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = NewRand(config.Population.Seed)
	}
	if p.meter == nil {
		p.meter = defaultMeter()
	}

	m, err := newEngineMetrics(p.meter, config.Population.Driver)
	if err != nil {
		return nil, err
	}
	p.metrics = m

	beams := BeamsFromConfig(config.Lidar)
	p.Vehicles = make([]Vehicle, config.Population.Size)
	for i := range p.Vehicles {
		p.Vehicles[i] = NewLidarCar(arena.Start, config.Car, beams)
	}

	p.Reproduction = NewReproduction(p.rng)
	p.Drivers, err = p.Reproduction.CreateNewPopulation(p.Vehicles, factory)
	if err != nil {
		return nil, err
	}

	p.resetState()
	p.logger.Info().
		Str("run", p.RunID.String()).
		Int("size", len(p.Drivers)).
		Int("selection", config.SelectionCount()).
		Str("driver", config.Population.Driver).
		Msg("population created")
	return p, nil
}

// Phase returns the current state of the generation loop.
func (p *Population) Phase() Phase { return p.phase }

// TickCount returns the ticks elapsed in the current generation.
func (p *Population) TickCount() int { return p.state.tick }

// Scores returns a copy of the per-driver fitness of the current generation.
func (p *Population) Scores() []float64 {
	return append([]float64(nil), p.state.scores...)
}

// Ranking returns the ranking of the last concluded generation, or nil while running.
func (p *Population) Ranking() []RankedDriver {
	if p.phase != PhasePaused {
		return nil
	}
	return append([]RankedDriver(nil), p.state.ranking...)
}

// Tick advances every unfinished pair by one simulation step. When the episode
// length is reached, or every pair has finished, the generation is concluded and
// the population pauses. Tick is a no-op while paused.
func (p *Population) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.phase != PhaseRunning {
		return nil
	}

	total := float64(p.Config.Population.EpisodeTicks)
	elapsed := float64(p.state.tick)
	hazards := p.Arena.Hazards()

	for i, d := range p.Drivers {
		if p.state.finished[i] {
			continue
		}
		v := p.Vehicles[i]
		v.ApplyCommand(d.DriveCommand())
		v.SimulateFriction()
		v.PositionFrameUpdate()

		// Goal first, so touching a goal and a hazard on the same tick is a win.
		switch {
		case collidesAny(v, p.Arena.Goals):
			p.state.finished[i] = true
			p.state.scores[i] = 100 + (total-elapsed)/total*100
			p.state.wins++
			v.ForcePosition(p.Arena.Start, 0)
		case collidesAny(v, hazards):
			p.state.finished[i] = true
			p.state.scores[i] = elapsed / total * 100
			p.state.crashes++
			v.ForcePosition(p.Arena.Start, 0)
		}

		if sensors, ok := v.(SensorArray); ok {
			for _, h := range hazards {
				sensors.RegisterBeamCollisions(h)
			}
		}
	}

	p.state.tick++
	if p.state.tick >= p.Config.Population.EpisodeTicks || p.allFinished() {
		p.conclude(ctx)
	}
	return nil
}

// RunEpisode ticks until the current generation concludes and returns its report.
func (p *Population) RunEpisode(ctx context.Context) (*GenerationReport, error) {
	for p.phase == PhaseRunning {
		if err := p.Tick(ctx); err != nil {
			return nil, err
		}
	}
	return p.LastReport, nil
}

// Evolve replaces every driver with a child of two top-ranked parents and starts
// the next generation. It only acts while paused; repeated calls after the first
// are ignored until the next generation concludes. On error the current drivers
// and state are left untouched.
func (p *Population) Evolve() error {
	if p.phase != PhasePaused {
		p.logger.Debug().Int("generation", p.Generation).Msg("evolve ignored while running")
		return nil
	}

	selection := p.Config.SelectionCount()
	if selection <= 1 {
		return fmt.Errorf("%w: selection count %d must be greater than 1", ErrConfiguration, selection)
	}

	ranked := make([]Driver, len(p.state.ranking))
	for i, r := range p.state.ranking {
		ranked[i] = p.Drivers[r.Index]
	}
	children, err := p.Reproduction.Reproduce(ranked, selection, p.Vehicles)
	if err != nil {
		return fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}

	p.Drivers = children
	for _, v := range p.Vehicles {
		v.ForcePosition(p.Arena.Start, 0)
	}
	p.Generation++
	p.resetState()
	p.phase = PhaseRunning

	p.logger.Info().Int("generation", p.Generation).Int("parents", selection).Msg("population evolved")
	return nil
}

// conclude scores the pairs that never finished by distance travelled from the
// start, ranks all pairs and notifies reporters.
func (p *Population) conclude(ctx context.Context) {
	start := p.Arena.Start.Point()
	maxDistance := p.Arena.MaxDistance()
	for i, v := range p.Vehicles {
		if p.state.finished[i] {
			continue
		}
		p.state.scores[i] = v.Position().Sub(start).Norm() / maxDistance
	}

	ranking := make([]RankedDriver, len(p.state.scores))
	for i, s := range p.state.scores {
		ranking[i] = RankedDriver{Index: i, Score: s}
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Score > ranking[b].Score
	})
	p.state.ranking = ranking
	p.phase = PhasePaused

	report := newGenerationReport(p.RunID, p.Generation, p.Config.Population.Driver,
		p.state.tick, p.state.wins, p.state.crashes,
		append([]RankedDriver(nil), ranking...), time.Since(p.state.started))
	p.LastReport = report
	p.logger.Info().
		Int("generation", p.Generation).
		Int("ticks", p.state.tick).
		Int("wins", p.state.wins).
		Int("crashes", p.state.crashes).
		Float64("best", report.Best).
		Msg("generation concluded")

	p.metrics.record(ctx, report)
	for _, r := range p.reporters {
		if err := r.ReportGeneration(ctx, report); err != nil {
			p.logger.Warn().Err(err).Int("generation", p.Generation).Msg("reporter failed")
		}
	}
}

func (p *Population) resetState() {
	n := len(p.Drivers)
	p.state = generationState{
		scores:   make([]float64, n),
		finished: make([]bool, n),
		started:  time.Now(),
	}
}

func (p *Population) allFinished() bool {
	for _, f := range p.state.finished {
		if !f {
			return false
		}
	}
	return true
}

func collidesAny(v Vehicle, regions []Region) bool {
	for _, r := range regions {
		if v.CollideRect(r) {
			return true
		}
	}
	return false
}

// VehicleState is the drawable state of one pair.
type VehicleState struct {
	Pose          Pose
	Speed         float64
	Corners       [4]r2.Point
	BeamEndpoints []r2.Point
	BeamHits      []bool
	Finished      bool
	Score         float64
}

// Snapshot is the per-tick view of a run exposed to hosts.
type Snapshot struct {
	Generation int
	Tick       int
	Wins       int
	Crashes    int
	Phase      Phase
	Vehicles   []VehicleState
	Ranking    []RankedDriver // set only while paused
}

// Snapshot copies the current state for display.
func (p *Population) Snapshot() Snapshot {
	s := Snapshot{
		Generation: p.Generation,
		Tick:       p.state.tick,
		Wins:       p.state.wins,
		Crashes:    p.state.crashes,
		Phase:      p.phase,
		Vehicles:   make([]VehicleState, len(p.Vehicles)),
		Ranking:    p.Ranking(),
	}
	for i, v := range p.Vehicles {
		pos := v.Position()
		vs := VehicleState{
			Pose:     Pose{X: pos.X, Y: pos.Y, Angle: v.Heading()},
			Speed:    v.Speed(),
			Corners:  v.Corners(),
			Finished: p.state.finished[i],
			Score:    p.state.scores[i],
		}
		if sensors, ok := v.(SensorArray); ok {
			vs.BeamEndpoints = sensors.BeamEndpoints()
			vs.BeamHits = sensors.BeamHits()
		}
		s.Vehicles[i] = vs
	}
	return s
}
