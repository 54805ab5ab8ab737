package physics

import (
	"math"

	"github.com/san-kum/reactorsim/internal/dynamo"
)

// Reactivity returns total core reactivity in dollars: temperature
// feedback + rod worth (less fresh-fuel excess) + Xe-135/Sm-149
// poisoning + depletion drift. Pure in (params, state, prompt).
func (p *Params) Reactivity(x dynamo.State, prompt bool) float64 {
	rhoTemp := p.AlphaT * (x[dynamo.IdxFuelTemp] - p.InletTemp)

	// Rods must be partially withdrawn before the core goes critical.
	rhoRod := p.IntRodWorth(0, x[dynamo.IdxRodPos], prompt) - p.RhoExcess

	rhoXe := -(p.SigmaAXe * p.Eta * x[dynamo.IdxXenon]) / (p.Nu * p.SigmaFission * p.Beta)
	rhoSm := -(p.SigmaASm * p.Eta * x[dynamo.IdxSamarium]) / (p.Nu * p.SigmaFission * p.Beta)

	rhoBurnup := p.K235*(x[dynamo.IdxU235]-p.N235Init) +
		p.K239*(x[dynamo.IdxPu239]-p.Pu239Init) -
		p.KFP*x[dynamo.IdxFissProd]

	return rhoTemp + rhoRod + rhoXe + rhoSm + rhoBurnup
}

func (p *Params) worthScale(prompt bool) float64 {
	ws := p.RodWorthScaling
	if prompt {
		ws = p.PromptWorthScaling
	}
	return ws * 1.0e-5 / p.Beta
}

// DiffRodWorth is the differential rod worth at withdrawal h [%],
// a sine curve peaking at mid-stroke.
func (p *Params) DiffRodWorth(h float64, prompt bool) float64 {
	return p.worthScale(prompt) * math.Sin(math.Pi*h/100.0) * 100.0
}

// IntRodWorth integrates the differential worth curve from h1 to h2 [%]
// in closed form, returning reactivity in dollars.
func (p *Params) IntRodWorth(h1, h2 float64, prompt bool) float64 {
	scale := p.worthScale(prompt)
	antideriv := func(h float64) float64 {
		return -100.0 * scale * (100.0 / math.Pi) * math.Cos(math.Pi*h/100.0)
	}
	return antideriv(h2) - antideriv(h1)
}
