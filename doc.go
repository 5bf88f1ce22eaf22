// Package racer trains simulated cars to reach goal regions in a 2D arena.
//
// Each car carries an array of proximity rays (lidar) and is controlled by a driver:
// a keyboard-mapped manual driver, a random or momentum-biased baseline, or a small
// feed-forward neural network. A population of cars runs fixed-length episodes; at
// the end of each episode drivers are ranked by fitness and the next generation is
// bred from the top-ranked ones by uniform crossover and single-weight mutation.
//
// The engine lives in the racer subpackage, the network layers in racer/nn, and
// reporters for generation history in racer/report.
//
// Basic usage:
//
//	// Load configuration and level
//	config, err := racer.LoadConfig("configs/racer.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//	level, err := racer.LoadLevel("configs/level.json")
//	if err != nil {
//		log.Fatalf("Error loading level: %v", err)
//	}
//
//	// Create a population of neural drivers
//	factory, err := racer.NewDriverFactory(config)
//	if err != nil {
//		log.Fatalf("Error creating drivers: %v", err)
//	}
//	pop, err := racer.NewPopulation(config, config.Arena.NewArena(level), factory)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run 100 generations
//	for i := 0; i < 100; i++ {
//		report, err := pop.RunEpisode(ctx)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		fmt.Printf("generation %d: %d wins, best %.2f\n", report.Generation, report.Wins, report.Best)
//		if err := pop.Evolve(); err != nil {
//			log.Fatalf("Error evolving: %v", err)
//		}
//	}
package racer
