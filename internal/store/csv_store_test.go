package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kentwait/epidemigo/internal/stats"
	"github.com/stretchr/testify/require"
)

func TestExportCensusesCSVWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	in := []stats.Census{
		{Step: 1, Susceptible: 99, Asymptomatic: 1},
		{Step: 2, Susceptible: 98, Asymptomatic: 2},
	}

	require.NoError(t, ExportCensusesCSV(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "step,susceptible,asymptomatic")
	require.Contains(t, string(data), "1,99,1,0,0,0,0,0\n")
	require.Contains(t, string(data), "2,98,2,0,0,0,0,0\n")
}

func TestExportCensusesCSVAppendsOnSecondCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, ExportCensusesCSV(path, []stats.Census{{Step: 1}}))
	require.NoError(t, ExportCensusesCSV(path, []stats.Census{{Step: 2}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "1,0,0,0,0,0,0,0\n")
	require.Contains(t, string(data), "2,0,0,0,0,0,0,0\n")
}
