// Package racer implements the simulation and evolution engine: vehicle kinematics,
// ray sensors, arena geometry, driver strategies and the generation loop.
//
// A Population is single-threaded and frame-stepped. The host calls Tick once per
// frame; when an episode ends the population pauses and waits for Evolve.
package racer
