package physics

import (
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

// Plant is the full reactor ODE right-hand side: 6-group point kinetics,
// I-135/Xe-135 and Nd-149/Pm-149/Sm-149 poison chains, fuel/coolant
// thermal balance, and (optionally) isotope depletion with burnup.
//
// Depletion unifies the depleting and non-depleting core variants: with
// it off, the fuel inventory indices are frozen and the burnup reactivity
// deltas stay zero.
//
// Prompt selects the rod worth scaling; the engine flips it under its own
// lock, never concurrently with Derive.
type Plant struct {
	Params    *Params
	Depletion bool
	Prompt    bool
}

func NewPlant(p *Params) *Plant {
	return &Plant{Params: p, Depletion: true}
}

func (pl *Plant) StateDim() int   { return dynamo.StateLen }
func (pl *Plant) ControlDim() int { return 2 }

// Reactivity evaluates the reactivity model against the plant's current
// prompt/normal mode.
func (pl *Plant) Reactivity(x dynamo.State) float64 {
	return pl.Params.Reactivity(x, pl.Prompt)
}

func (pl *Plant) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	p := pl.Params
	rodRate := 0.0
	flow := p.RefFlow
	if len(u) > dynamo.CtlRodRate {
		rodRate = u[dynamo.CtlRodRate]
	}
	if len(u) > dynamo.CtlCoolantFlow {
		flow = u[dynamo.CtlCoolantFlow]
	}

	rho := pl.Reactivity(x)

	n := x[dynamo.IdxNeutrons]
	fluxN := p.Eta * n                   // poison reaction rate basis [#/cm^3]
	phi := p.Eta * n * p.NeutronVelocity // depletion flux [n/cm^2-s]

	dx := make(dynamo.State, dynamo.StateLen)

	// Neutron balance with zero-floor clamp.
	ndot := (rho-p.Beta)/p.GenTime*n + pl.delayedSource(x)
	if n <= 0 && ndot < 0 {
		ndot = 0
	}
	dx[dynamo.IdxNeutrons] = ndot

	// Precursor balance per group, same clamp.
	for g := 0; g < dynamo.NumGroups; g++ {
		ci := dynamo.IdxPrecursor + g
		cdot := (p.BetaI[g]/p.GenTime)*n - p.LambdaI[g]*x[ci]
		if x[ci] < 0 && cdot < 0 {
			cdot = 0
		}
		dx[ci] = cdot
	}

	dx[dynamo.IdxFuelTemp] = pl.fuelTempDot(x, flow)
	dx[dynamo.IdxCoolTemp] = pl.coolTempDot(x, flow)

	// Rod motion is kinematic: position integrates the commanded rate.
	dx[dynamo.IdxRodPos] = rodRate

	// I-135 -> Xe-135 chain.
	iod := x[dynamo.IdxIodine]
	xe := x[dynamo.IdxXenon]
	dx[dynamo.IdxIodine] = p.GammaIodine*p.SigmaFission*fluxN - p.LambdaIod*iod
	dx[dynamo.IdxXenon] = p.GammaXenon*p.SigmaFission*fluxN + p.LambdaIod*iod -
		p.LambdaXe*xe - p.SigmaAXe*fluxN*xe

	// Nd-149 -> Pm-149 -> Sm-149 chain; Sm-149 is removed only by absorption.
	nd := x[dynamo.IdxNeodymium]
	pm := x[dynamo.IdxPromethum]
	sm := x[dynamo.IdxSamarium]
	dx[dynamo.IdxNeodymium] = p.GammaNd*p.SigmaFission*fluxN - p.LambdaNd*nd
	dx[dynamo.IdxPromethum] = p.LambdaNd*nd - p.LambdaPm*pm - p.SigmaAPm*fluxN*pm
	dx[dynamo.IdxSamarium] = p.LambdaPm*pm - p.SigmaASm*fluxN*sm

	if pl.Depletion {
		n235 := x[dynamo.IdxU235]
		n238 := x[dynamo.IdxU238]
		pu := x[dynamo.IdxPu239]
		dx[dynamo.IdxU235] = -p.SigmaF235 * phi * n235
		dx[dynamo.IdxU238] = -p.SigmaC238 * phi * n238
		dx[dynamo.IdxPu239] = p.SigmaC238*phi*n238 - p.SigmaF239*phi*pu
		dx[dynamo.IdxFissProd] = p.FPYield * phi * (p.SigmaF235*n235 + p.SigmaF239*pu)
		dx[dynamo.IdxBurnup] = p.ThermalPowerMW(n) / (p.HeavyMetalMass * 86400.0)
	}

	return dx
}

func (pl *Plant) delayedSource(x dynamo.State) float64 {
	p := pl.Params
	sum := 0.0
	for g := 0; g < dynamo.NumGroups; g++ {
		sum += p.LambdaI[g] * x[dynamo.IdxPrecursor+g]
	}
	return sum
}

// htc is a Dittus-Boelter-style flow-dependent heat transfer coefficient.
func (pl *Plant) htc(flow float64) float64 {
	return pl.Params.HTC0 * math.Pow(flow/pl.Params.RefFlow, 0.8)
}

func (pl *Plant) fuelTempDot(x dynamo.State, flow float64) float64 {
	p := pl.Params
	tf := x[dynamo.IdxFuelTemp]
	tc := x[dynamo.IdxCoolTemp]
	cpFuel := 0.2455 + 5.86e-5*(tf-273.15) // UO2, J/g-K
	h := pl.htc(flow)
	q := p.ThermalPower(x[dynamo.IdxNeutrons])
	return (q - p.ContactArea*h*(tf-tc)) / (p.FuelDensity * p.FuelFrac * p.Volume * cpFuel)
}

func (pl *Plant) coolTempDot(x dynamo.State, flow float64) float64 {
	p := pl.Params
	tf := x[dynamo.IdxFuelTemp]
	tc := x[dynamo.IdxCoolTemp]
	cpWater := 4.2 - 0.0005*(tc-273.15) // J/g-K
	h := pl.htc(flow)
	return (p.ContactArea*h*(tf-tc) + cpWater*(p.InletTemp-tc)*flow) /
		(p.CoolDensity * p.Volume * cpWater)
}

// DefaultState is the cold fresh-fuel startup condition: source-level
// neutron population, equilibrium precursors, rods fully inserted.
func DefaultState(p *Params) dynamo.State {
	x := make(dynamo.State, dynamo.StateLen)
	const n0 = 1.0e3
	x[dynamo.IdxNeutrons] = n0
	for g := 0; g < dynamo.NumGroups; g++ {
		x[dynamo.IdxPrecursor+g] = p.BetaI[g] * n0 / (p.LambdaI[g] * p.GenTime)
	}
	x[dynamo.IdxFuelTemp] = 450.0
	x[dynamo.IdxCoolTemp] = 450.0
	x[dynamo.IdxU235] = p.N235Init
	x[dynamo.IdxU238] = p.N238Init
	x[dynamo.IdxPu239] = p.Pu239Init
	x[dynamo.IdxFissProd] = p.FPInit
	return x
}
