// Package simparams holds the two parameter records named in spec.md
// section 3: WorldParams (immutable per run) and RuntimeParams (mutable
// across steps). Both field and residence physics, the world step loop,
// and the config loader share these types, so they live below all of
// them in a leaf package.
package simparams

// WorldParams are fixed for the lifetime of one World (spec.md section 3).
type WorldParams struct {
	PopulationSize    int     `toml:"population_size"`
	WorldSideLength   float64 `toml:"world_side_length"`
	MeshResolution    int     `toml:"mesh_resolution"` // M, so M x M cells
	StepsPerDay       int64   `toml:"steps_per_day"`   // S
	InitialInfected   int     `toml:"initial_infected"`
	IncubationLow     float64 `toml:"incubation_low"`
	IncubationHigh    float64 `toml:"incubation_high"`
	IncubationMode    float64 `toml:"incubation_mode"`
	FatalityLow       float64 `toml:"fatality_low"`
	FatalityHigh      float64 `toml:"fatality_high"`
	FatalityMode      float64 `toml:"fatality_mode"`
	RecoveryLow       float64 `toml:"recovery_low"`
	RecoveryHigh      float64 `toml:"recovery_high"`
	RecoveryMode      float64 `toml:"recovery_mode"`
	ImmunityLow       float64 `toml:"immunity_low"`
	ImmunityHigh      float64 `toml:"immunity_high"`
	ImmunityMode      float64 `toml:"immunity_mode"`
	MobilityMode      float64 `toml:"mobility_mode"`
	GatheringSize     float64 `toml:"gathering_size"`
	GatheringDuration float64 `toml:"gathering_duration"`
	GatheringStrength float64 `toml:"gathering_strength"`
}

// CellSide is a convenience derived from WorldSideLength and MeshResolution.
func (p WorldParams) CellSide() float64 {
	return p.WorldSideLength / float64(p.MeshResolution)
}

// RuntimeParams may change between steps via the scenario DSL described in
// spec.md section 9 ("consumes an immutable read/write view of runtime and
// world parameters and returns a sequence of assignments applied between
// steps"). The World applies those assignments to a RuntimeParams value it
// owns.
type RuntimeParams struct {
	ContagionDelay       float64 `toml:"contagion_delay"` // contag_delay, in days
	ContagionPeak        float64 `toml:"contagion_peak"`  // contag_peak, in days
	InfectionProbability float64 `toml:"infection_probability"`
	InfectionDistance    float64 `toml:"infection_distance"` // infec_dst
	DistancingStrength   float64 `toml:"distancing_strength"`
	DistancingObedience  float64 `toml:"distancing_obedience"`
	MobilityFrequency    float64 `toml:"mobility_frequency"`
	GatheringFrequency   float64 `toml:"gathering_frequency"`
	ContactTracingRate   float64 `toml:"contact_tracing_rate"`
	TestDelay            float64 `toml:"test_delay"`
	TestProcess          float64 `toml:"test_process"`  // tst_proc, in days
	TestInterval         float64 `toml:"test_interval"` // tst_interval, in days
	TestSensitivity      float64 `toml:"test_sensitivity"`
	TestSpecificity      float64 `toml:"test_specificity"`
	TestCapacityFraction float64 `toml:"test_capacity_fraction"` // tst_capa
	TestDelayLimit       float64 `toml:"test_delay_limit"`       // tst_dly_lim, in days
	Step                 int64   `toml:"-"`
}

// TestIntervalSteps converts TestInterval (days) into steps given S.
func (r RuntimeParams) TestIntervalSteps(stepsPerDay int64) int64 {
	return int64(r.TestInterval * float64(stepsPerDay))
}
