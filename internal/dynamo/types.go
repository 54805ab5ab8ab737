package dynamo

import "math"

// State is the reactor state vector. The indices below are a stable
// contract shared by the physics model, the history buffer, and every
// external consumer of snapshots.
type State []float64

// State vector indices.
const (
	IdxNeutrons  = 0  // neutron density [#/cm^3]
	IdxPrecursor = 1  // first of six delayed-neutron precursor groups [#/cm^3]
	IdxFuelTemp  = 7  // fuel temperature [K]
	IdxCoolTemp  = 8  // coolant temperature [K]
	IdxRodPos    = 9  // control rod withdrawal [%], 0=inserted 100=withdrawn
	IdxIodine    = 10 // I-135 [atoms/cm^3]
	IdxXenon     = 11 // Xe-135 [atoms/cm^3]
	IdxNeodymium = 12 // Nd-149 [atoms/cm^3]
	IdxPromethum = 13 // Pm-149 [atoms/cm^3]
	IdxSamarium  = 14 // Sm-149 [atoms/cm^3]
	IdxU235      = 15 // U-235 [atoms/cm^3]
	IdxU238      = 16 // U-238 [atoms/cm^3]
	IdxPu239     = 17 // Pu-239 [atoms/cm^3]
	IdxFissProd  = 18 // lumped fission products [atoms/cm^3]
	IdxBurnup    = 19 // burnup [MWd/kgU]
)

// StateLen is the length of a full reactor state vector.
const StateLen = 20

// NumGroups is the number of delayed-neutron precursor groups.
const NumGroups = 6

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// PrecursorSum returns the total delayed-neutron precursor concentration.
func (s State) PrecursorSum() float64 {
	sum := 0.0
	for i := IdxPrecursor; i < IdxPrecursor+NumGroups; i++ {
		sum += s[i]
	}
	return sum
}

// Control is the plant control input vector: [rod rate %/s, coolant flow g/s].
type Control []float64

// Control vector indices.
const (
	CtlRodRate     = 0
	CtlCoolantFlow = 1
)

// System is an ODE right-hand side: dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// AdaptiveIntegrator additionally reports an error-controlled suggested
// step size so callers can subdivide stiff intervals.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

// Observer receives each committed step. Observers must not mutate x.
type Observer interface {
	OnStep(x State, u Control, t float64)
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}
