// Package dynamo provides core simulation primitives for the reactor model.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of the point-kinetics ODE system:
//
//   - [State]: 20-component reactor state vector with stable indices
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator], [AdaptiveIntegrator]: numerical stepping interfaces
//   - [Observer], [Metric]: per-step taps for logging and analysis
//
// # Thread Safety
//
// State values and System implementations are NOT thread-safe. The engine
// package serializes all mutation behind a single mutex.
package dynamo
