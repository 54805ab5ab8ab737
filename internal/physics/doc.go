// Package physics implements the point-kinetics reactor model.
//
// [Plant] is the coupled ODE right-hand side over the 20-component state
// vector defined in the dynamo package: neutron/precursor kinetics, the
// Xe-135 and Sm-149 poison chains, fuel/coolant thermal balance, and
// isotope depletion with burnup tracking. [Params.Reactivity] is the pure
// state-to-dollars reactivity model shared by the plant, the engine, and
// external displays.
//
// All constants live in [Params]; nothing numeric is hard-coded at use
// sites, so scenario files and tests can run perturbed cores.
package physics
