package racer

import (
	"fmt"
	"math/rand/v2"
)

// Reproduction creates drivers, either from scratch or by mating ranked parents.
type Reproduction struct {
	rng *rand.Rand
	// Ancestors maps each child slot of the latest generation to the ranked
	// positions of its two parents.
	Ancestors [][2]int
}

// NewReproduction creates a reproduction manager drawing from rng.
func NewReproduction(rng *rand.Rand) *Reproduction {
	return &Reproduction{rng: rng}
}

// CreateNewPopulation creates one fresh driver per vehicle.
func (r *Reproduction) CreateNewPopulation(vehicles []Vehicle, factory DriverFactory) ([]Driver, error) {
	drivers := make([]Driver, len(vehicles))
	for i, v := range vehicles {
		d, err := factory(v, r.rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create driver %d: %w", i, err)
		}
		drivers[i] = d
	}
	r.Ancestors = nil
	return drivers, nil
}

// PickParents draws two distinct positions from [0, selection). The second is offset
// from the first by a uniform amount in [1, selection-1], so they never coincide.
func (r *Reproduction) PickParents(selection int) (p1, p2 int) {
	p1 = r.rng.IntN(selection)
	p2 = (p1 + 1 + r.rng.IntN(selection-1)) % selection
	return p1, p2
}

// Reproduce mates parents drawn from the top selection entries of ranked, producing
// one child per vehicle. Nothing is returned unless every child was created.
func (r *Reproduction) Reproduce(ranked []Driver, selection int, vehicles []Vehicle) ([]Driver, error) {
	if selection <= 1 {
		return nil, fmt.Errorf("%w: selection count %d cannot yield two distinct parents", ErrConfiguration, selection)
	}
	if selection > len(ranked) {
		return nil, fmt.Errorf("%w: selection count %d exceeds population size %d", ErrConfiguration, selection, len(ranked))
	}

	parents := make([]Evolvable, selection)
	for i, d := range ranked[:selection] {
		e, ok := d.(Evolvable)
		if !ok {
			return nil, fmt.Errorf("%w: driver %T cannot be mated", ErrConfiguration, d)
		}
		parents[i] = e
	}

	children := make([]Driver, len(vehicles))
	ancestors := make([][2]int, len(vehicles))
	for i, v := range vehicles {
		p1, p2 := r.PickParents(selection)
		child, err := parents[p1].Mate(parents[p2], v)
		if err != nil {
			return nil, fmt.Errorf("failed to mate parents %d and %d: %w", p1, p2, err)
		}
		children[i] = child
		ancestors[i] = [2]int{p1, p2}
	}
	r.Ancestors = ancestors
	return children, nil
}
