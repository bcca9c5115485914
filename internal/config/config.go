// Package config loads and validates the TOML configuration document that
// seeds a World: a [world] table of simparams.WorldParams and a [runtime]
// table of simparams.RuntimeParams, plus an optional [server] table for
// the binaries in cmd/. Grounded on the teacher's TOML-tagged config
// structs (evoepi_config.go) and its BurntSushi/toml loader (loader.go,
// LoadSingleHostConfig), generalized from one flat config to the
// world/runtime split spec.md section 2 and section 4 describe.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/kentwait/epidemigo/internal/simparams"
)

// Document is the root of a world configuration file.
type Document struct {
	World   simparams.WorldParams   `toml:"world"`
	Runtime simparams.RuntimeParams `toml:"runtime"`
	Server  ServerParams            `toml:"server"`

	validated bool
}

// ServerParams configures the cmd/ binaries: which transport to listen on
// and where to persist exported statistics.
type ServerParams struct {
	Transport string `toml:"transport"` // "stdio", "tcp", or "quic"
	Address   string `toml:"address"`   // host:port, meaningful for tcp/quic
	StatsPath string `toml:"stats_path"`
	Seed      uint64 `toml:"seed"`
}

// Load parses path as TOML into a Document and validates it.
func Load(path string) (*Document, error) {
	doc := new(Document)
	if _, err := toml.DecodeFile(path, doc); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", path)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks the cross-field invariants spec.md section 2 and
// section 4 impose on a world/runtime parameter pair.
func (d *Document) Validate() error {
	wp := d.World
	if wp.PopulationSize <= 0 {
		return errors.New("world.population_size must be positive")
	}
	if wp.WorldSideLength <= 0 {
		return errors.New("world.world_side_length must be positive")
	}
	if wp.MeshResolution <= 0 {
		return errors.New("world.mesh_resolution must be positive")
	}
	if wp.StepsPerDay <= 0 {
		return errors.New("world.steps_per_day must be positive")
	}
	if wp.InitialInfected < 0 || wp.InitialInfected > wp.PopulationSize {
		return errors.New("world.initial_infected must be between 0 and population_size")
	}
	if !triangularOrdered(wp.IncubationLow, wp.IncubationMode, wp.IncubationHigh) {
		return errors.New("world.incubation_low <= incubation_mode <= incubation_high must hold")
	}
	if !triangularOrdered(wp.FatalityLow, wp.FatalityMode, wp.FatalityHigh) {
		return errors.New("world.fatality_low <= fatality_mode <= fatality_high must hold")
	}
	if !triangularOrdered(wp.RecoveryLow, wp.RecoveryMode, wp.RecoveryHigh) {
		return errors.New("world.recovery_low <= recovery_mode <= recovery_high must hold")
	}

	rp := d.Runtime
	if err := unitInterval("runtime.infection_probability", rp.InfectionProbability); err != nil {
		return err
	}
	if err := unitInterval("runtime.distancing_obedience", rp.DistancingObedience); err != nil {
		return err
	}
	if err := unitInterval("runtime.test_sensitivity", rp.TestSensitivity); err != nil {
		return err
	}
	if err := unitInterval("runtime.test_specificity", rp.TestSpecificity); err != nil {
		return err
	}
	if rp.ContagionPeak < rp.ContagionDelay {
		return errors.New("runtime.contagion_peak must be >= contagion_delay")
	}

	switch d.Server.Transport {
	case "", "stdio", "tcp", "quic":
	default:
		return errors.Errorf("server.transport %q is not one of stdio, tcp, quic", d.Server.Transport)
	}

	d.validated = true
	return nil
}

func triangularOrdered(low, mode, high float64) bool {
	return low <= mode && mode <= high
}

func unitInterval(name string, v float64) error {
	if v < 0 || v > 1 {
		return errors.Errorf("%s must be in [0, 1], got %v", name, v)
	}
	return nil
}
