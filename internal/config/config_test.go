package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[world]
population_size = 200
world_side_length = 100.0
mesh_resolution = 10
steps_per_day = 10
initial_infected = 5
incubation_low = 2.0
incubation_mode = 4.0
incubation_high = 6.0
fatality_low = 100.0
fatality_mode = 150.0
fatality_high = 200.0
recovery_low = 8.0
recovery_mode = 10.0
recovery_high = 16.0

[runtime]
contagion_delay = 1.0
contagion_peak = 5.0
infection_probability = 0.3
infection_distance = 5.0
distancing_strength = 0.1
distancing_obedience = 0.3
test_process = 1.0
test_delay_limit = 3.0
test_capacity_fraction = 0.1
test_sensitivity = 0.9
test_specificity = 0.95
test_interval = 7.0

[server]
transport = "tcp"
address = "127.0.0.1:7800"
stats_path = "out.sqlite"
seed = 42
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "world.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0o644))
	return path
}

func TestLoadValidDocument(t *testing.T) {
	path := writeSample(t)
	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 200, doc.World.PopulationSize)
	require.Equal(t, "tcp", doc.Server.Transport)
	require.True(t, doc.validated)
}

func TestValidateRejectsUnorderedTriangular(t *testing.T) {
	doc := &Document{}
	doc.World.PopulationSize = 10
	doc.World.WorldSideLength = 10
	doc.World.MeshResolution = 2
	doc.World.StepsPerDay = 1
	doc.World.IncubationLow = 5
	doc.World.IncubationMode = 1
	doc.World.IncubationHigh = 10
	err := doc.Validate()
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeProbability(t *testing.T) {
	doc := &Document{}
	doc.World.PopulationSize = 10
	doc.World.WorldSideLength = 10
	doc.World.MeshResolution = 2
	doc.World.StepsPerDay = 1
	doc.World.IncubationLow, doc.World.IncubationMode, doc.World.IncubationHigh = 1, 2, 3
	doc.World.FatalityLow, doc.World.FatalityMode, doc.World.FatalityHigh = 1, 2, 3
	doc.World.RecoveryLow, doc.World.RecoveryMode, doc.World.RecoveryHigh = 1, 2, 3
	doc.Runtime.InfectionProbability = 1.5
	err := doc.Validate()
	require.Error(t, err)
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	doc := &Document{}
	doc.World.PopulationSize = 10
	doc.World.WorldSideLength = 10
	doc.World.MeshResolution = 2
	doc.World.StepsPerDay = 1
	doc.World.IncubationLow, doc.World.IncubationMode, doc.World.IncubationHigh = 1, 2, 3
	doc.World.FatalityLow, doc.World.FatalityMode, doc.World.FatalityHigh = 1, 2, 3
	doc.World.RecoveryLow, doc.World.RecoveryMode, doc.World.RecoveryHigh = 1, 2, 3
	doc.Server.Transport = "carrier-pigeon"
	err := doc.Validate()
	require.Error(t, err)
}
