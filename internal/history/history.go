// Package history provides the fixed-capacity rolling window of state
// projections that feeds plotting, logging, and the power controller's
// integral and derivative terms.
package history

import "github.com/san-kum/reactorsim/internal/dynamo"

// Projection is the reduced view of one committed step.
type Projection struct {
	Time        float64 `json:"time"`
	Neutrons    float64 `json:"neutrons"`     // neutron density [#/cm^3]
	Precursors  float64 `json:"precursors"`   // sum over the six groups [#/cm^3]
	FuelTemp    float64 `json:"fuel_temp"`    // [K]
	CoolTemp    float64 `json:"cool_temp"`    // [K]
	RodPos      float64 `json:"rod_pos"`      // [%]
	Reactivity  float64 `json:"reactivity"`   // [$]
	Xenon       float64 `json:"xenon"`        // [atoms/cm^3]
	Samarium    float64 `json:"samarium"`     // [atoms/cm^3]
	U235        float64 `json:"u235"`         // [atoms/cm^3]
	U238        float64 `json:"u238"`         // [atoms/cm^3]
	Pu239       float64 `json:"pu239"`        // [atoms/cm^3]
	FissionProd float64 `json:"fission_prod"` // [atoms/cm^3]
	Burnup      float64 `json:"burnup"`       // [MWd/kgU]
}

// Project reduces a full state vector.
func Project(t float64, x dynamo.State, reactivity float64) Projection {
	return Projection{
		Time:        t,
		Neutrons:    x[dynamo.IdxNeutrons],
		Precursors:  x.PrecursorSum(),
		FuelTemp:    x[dynamo.IdxFuelTemp],
		CoolTemp:    x[dynamo.IdxCoolTemp],
		RodPos:      x[dynamo.IdxRodPos],
		Reactivity:  reactivity,
		Xenon:       x[dynamo.IdxXenon],
		Samarium:    x[dynamo.IdxSamarium],
		U235:        x[dynamo.IdxU235],
		U238:        x[dynamo.IdxU238],
		Pu239:       x[dynamo.IdxPu239],
		FissionProd: x[dynamo.IdxFissProd],
		Burnup:      x[dynamo.IdxBurnup],
	}
}

// Buffer is a fixed-capacity sliding window: pushing discards the oldest
// entry. It is pre-filled at construction so consumers never see a
// cold-start burst of zeros.
type Buffer struct {
	entries []Projection
	head    int // index of the oldest entry
}

// NewBuffer returns a buffer of the given capacity with every slot
// holding the initial projection.
func NewBuffer(capacity int, initial Projection) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	entries := make([]Projection, capacity)
	for i := range entries {
		entries[i] = initial
	}
	return &Buffer{entries: entries}
}

func (b *Buffer) Len() int { return len(b.entries) }

// Push appends the newest projection, discarding the oldest.
func (b *Buffer) Push(p Projection) {
	b.entries[b.head] = p
	b.head = (b.head + 1) % len(b.entries)
}

// At returns the i-th entry, 0 being the oldest.
func (b *Buffer) At(i int) Projection {
	return b.entries[(b.head+i)%len(b.entries)]
}

// Latest returns the newest entry.
func (b *Buffer) Latest() Projection {
	return b.At(len(b.entries) - 1)
}

// Window copies the whole buffer, oldest to newest.
func (b *Buffer) Window() []Projection {
	out := make([]Projection, len(b.entries))
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

// Tail copies the newest k entries, oldest to newest. k is clamped to
// the buffer capacity.
func (b *Buffer) Tail(k int) []Projection {
	if k > len(b.entries) {
		k = len(b.entries)
	}
	out := make([]Projection, k)
	start := len(b.entries) - k
	for i := 0; i < k; i++ {
		out[i] = b.At(start + i)
	}
	return out
}
