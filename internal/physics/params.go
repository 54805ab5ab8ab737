package physics

// Params carries every physical constant of the point-kinetics model.
// Values are plain fields so scenarios and tests can perturb them; the
// defaults describe a small PWR-like core with 4% enriched UO2 fuel.
type Params struct {
	// 6-group delayed neutron precursor data for U-235
	BetaI   [6]float64 // delayed neutron fraction per group
	LambdaI [6]float64 // precursor decay constants [1/s]
	Beta    float64    // total delayed neutron fraction
	GenTime float64    // mean neutron generation time Lambda [s]

	NeutronVelocity  float64 // thermal neutron velocity [cm/s]
	EnergyPerFission float64 // [J]
	SigmaFission     float64 // macroscopic fission cross-section [1/cm]
	Nu               float64 // neutrons per fission
	Eta              float64 // neutron survival factor (flux = eta * n * v)

	Volume      float64 // reactor volume [cm^3]
	FuelFrac    float64 // fuel volume fraction
	ContactArea float64 // fuel-to-coolant contact area [cm^2]
	InletTemp   float64 // coolant inlet temperature [K]
	AlphaT      float64 // fuel temperature reactivity coefficient [$/K]

	// Heat transfer (Dittus-Boelter-style flow dependence)
	HTC0        float64 // baseline heat transfer coefficient [W/cm^2-K]
	RefFlow     float64 // reference coolant flow [g/s]
	FuelDensity float64 // UO2 density [g/cm^3]
	CoolDensity float64 // water density [g/cm^3]

	// Control rod worth. Normal and prompt-mode scalings are both
	// configuration; the prompt value deliberately dwarfs the normal one
	// to demonstrate fast reactivity-insertion transients.
	RodWorthScaling    float64
	PromptWorthScaling float64
	RhoExcess          float64 // fresh-fuel excess reactivity [$]

	// Iodine-135 / Xenon-135 chain
	GammaIodine float64 // I-135 fission yield
	GammaXenon  float64 // Xe-135 direct fission yield
	LambdaIod   float64 // I-135 decay constant [1/s]
	LambdaXe    float64 // Xe-135 decay constant [1/s]
	SigmaAXe    float64 // Xe-135 absorption cross-section [cm^2]

	// Nd-149 -> Pm-149 -> Sm-149 chain (Sm-149 is stable)
	GammaNd  float64 // Nd-149 fission yield
	LambdaNd float64 // Nd-149 decay constant [1/s]
	LambdaPm float64 // Pm-149 decay constant [1/s]
	SigmaAPm float64 // Pm-149 absorption cross-section [cm^2]
	SigmaASm float64 // Sm-149 absorption cross-section [cm^2]

	// Depletion microscopic cross-sections [cm^2]
	SigmaF235 float64 // U-235 fission
	SigmaC238 float64 // U-238 capture
	SigmaF239 float64 // Pu-239 fission

	// Fresh-fuel inventories [atoms/cm^3]
	N235Init  float64
	N238Init  float64
	Pu239Init float64
	FPInit    float64

	FPYield        float64 // lumped fission products per fission
	HeavyMetalMass float64 // heavy metal inventory [kg]

	// Burnup reactivity coefficients [$ per atoms/cm^3], pre-scaled to
	// demo timescales so depletion drift is visible within a session.
	K235 float64
	K239 float64
	KFP  float64
}

const barn = 1e-24 // [cm^2]

// DefaultParams returns the reference core.
func DefaultParams() *Params {
	p := &Params{
		BetaI:   [6]float64{0.000215, 0.001424, 0.001274, 0.002568, 0.000748, 0.000273},
		LambdaI: [6]float64{0.0124, 0.0305, 0.111, 0.301, 1.14, 3.01},
		GenTime: 10.0e-5,

		NeutronVelocity:  2200.0e3,
		EnergyPerFission: 3.204e-11,
		SigmaFission:     0.0065,
		Nu:               2.43,
		Eta:              0.6,

		Volume:      3.0e6,
		FuelFrac:    0.4,
		ContactArea: 4.0e5,
		InletTemp:   450.0,

		HTC0:        1.5,
		RefFlow:     1000.0e3,
		FuelDensity: 12.5,
		CoolDensity: 1.0,

		RodWorthScaling:    0.02042,
		PromptWorthScaling: 15 * 0.02042,
		RhoExcess:          0.05,

		GammaIodine: 0.061,
		GammaXenon:  0.003,
		LambdaIod:   2.87e-5,
		LambdaXe:    2.09e-5,
		SigmaAXe:    2.6e6 * barn,

		GammaNd:  0.011,
		LambdaNd: 9.67e-5,
		LambdaPm: 1.46e-6,
		SigmaAPm: 1400 * barn,
		SigmaASm: 40800 * barn,

		SigmaF235: 585.0 * barn,
		SigmaC238: 2.68 * barn,
		SigmaF239: 750.0 * barn,

		N235Init:  9.84e20,
		N238Init:  2.21e22,
		Pu239Init: 0.0,
		FPInit:    0.0,

		FPYield:        2.0,
		HeavyMetalMass: 11100.0,
	}

	for _, b := range p.BetaI {
		p.Beta += b
	}
	p.AlphaT = -0.007 * 1e-5 / p.Beta

	// Real cores see depletion reactivity over months; scale it down so
	// the drift is visible at simulation timescales.
	const burnupScale = 1e-3
	p.K235 = 1.5e-21 / p.Beta * burnupScale
	p.K239 = 2.0e-21 / p.Beta * burnupScale
	p.KFP = 5.0e-23 / p.Beta * burnupScale

	return p
}

// ThermalPower returns core thermal power [W] for a neutron density n.
func (p *Params) ThermalPower(n float64) float64 {
	return p.Volume * p.FuelFrac * (n * p.NeutronVelocity) * p.SigmaFission * p.EnergyPerFission
}

// ThermalPowerMW returns core thermal power [MW] for a neutron density n.
func (p *Params) ThermalPowerMW(n float64) float64 {
	return p.ThermalPower(n) / 1.0e6
}
