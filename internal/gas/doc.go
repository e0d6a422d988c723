// Package gas implements a hard-sphere molecular dynamics engine in a
// cubic reflective box.
//
// The engine advances particles by free flight with specular wall
// reflection and pairwise elastic collisions, thermalized by an Andersen
// thermostat toward a target temperature fixed at construction from the
// initial velocity draw. Sampling accumulates bounded speed and energy
// distributions plus a temperature history for comparison against
// Maxwell-Boltzmann theory.
//
//   - [Params]: immutable per-run configuration
//   - [Engine]: owns all particle state; Step and CollectSamples mutate it
//   - [Stats], [ChartData]: pure snapshots for drivers and renderers
//   - [Runner]: drives one engine to completion under a context
//   - [Ensemble]: independent seeded runs on separate goroutines
//
// # Example
//
//	eng, _ := gas.New(gas.DefaultParams())
//	res, _ := gas.NewRunner(eng).Run(ctx)
//	fmt.Println(res.Final.Temperature)
//
// # Thread Safety
//
// Engine instances are NOT thread-safe: exactly one goroutine may call
// Step, CollectSamples and the query methods. Changing parameters means
// discarding the instance and constructing a new one; nothing is patched
// in place. [Ensemble] runs many engines concurrently by giving each its
// own driver goroutine.
package gas
