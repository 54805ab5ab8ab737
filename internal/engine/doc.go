// Package engine owns the reactor state vector and drives the simulation.
//
// [Engine.Step] performs one fixed-size time advance: the control
// subsystem pre-step, an adaptive-substep integration of the plant ODE,
// invariant enforcement, reactivity recompute, and a history push.
// [Engine.Snapshot] and [Engine.HistoryWindow] are the read-only feeds for
// plotting, file logging, and hardware mirroring; they share one mutex
// with Step, so a reader always sees either the pre- or post-step state,
// never a partial update.
//
// The engine has two effective states, running and paused; scram, power
// control, coolant control, and prompt mode are orthogonal control flags,
// not engine states. All of them are per-instance, so multiple
// independent simulations can coexist in one process.
package engine
