package store

import (
	"bytes"
	"fmt"
	"os"

	"github.com/kentwait/epidemigo/internal/stats"
)

// ExportCensusesCSV writes censuses as comma-delimited rows, one per
// step, to path: step,susceptible,asymptomatic,symptomatic,recovered,
// died,quarantine_asym,quarantine_symp. Adapted from the teacher's
// csv_logger.go append-to-file writer, generalized from per-host
// genotype/status channels to per-step census rows.
func ExportCensusesCSV(path string, censuses []stats.Census) error {
	var b bytes.Buffer
	b.WriteString("step,susceptible,asymptomatic,symptomatic,recovered,died,quarantine_asym,quarantine_symp\n")
	const template = "%d,%d,%d,%d,%d,%d,%d,%d\n"
	for _, c := range censuses {
		fmt.Fprintf(&b, template,
			c.Step, c.Susceptible, c.Asymptomatic, c.Symptomatic,
			c.Recovered, c.Died, c.QuarantineAsym, c.QuarantineSymp,
		)
	}
	return appendToFile(path, b.Bytes())
}

// appendToFile creates path if absent, or appends to it if it already
// exists, fsyncing before returning.
func appendToFile(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}
