// Package store implements the concrete backend for World.Export: a
// SQLite-backed statistics table, one row per recorded step, one column
// per health state, step-ascending (spec.md section 6). Grounded directly
// on the teacher's sqlite_logger.go, which opens one *sql.DB per export
// path and creates one table per run.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/kentwait/epidemigo/internal/stats"
)

// OpenDB opens (creating if absent) a SQLite database at path, mirroring
// the teacher's OpenSQLiteDB helper.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening sqlite database at %s", path)
	}
	return db, nil
}

// ExportCensuses writes every census in order to a fresh "stats" table at
// path. It is the implementation behind World.Export's FileExportFailed /
// Ok result in spec.md section 4.7.
func ExportCensuses(path string, censuses []stats.Census) error {
	db, err := OpenDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	const schema = `
	drop table if exists stats;
	create table stats (
		step integer not null primary key,
		susceptible integer not null,
		asymptomatic integer not null,
		symptomatic integer not null,
		recovered integer not null,
		died integer not null,
		quarantine_asym integer not null,
		quarantine_symp integer not null
	);`
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrapf(err, "creating stats table in %s", path)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning export transaction")
	}
	stmt, err := tx.Prepare(`insert into stats
		(step, susceptible, asymptomatic, symptomatic, recovered, died, quarantine_asym, quarantine_symp)
		values (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "preparing stats insert")
	}
	defer stmt.Close()

	for _, c := range censuses {
		if _, err := stmt.Exec(c.Step, c.Susceptible, c.Asymptomatic, c.Symptomatic, c.Recovered, c.Died, c.QuarantineAsym, c.QuarantineSymp); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "inserting census for step %d", c.Step)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing stats export")
	}
	return nil
}

// LoadCensuses reads back every row of the stats table at path in
// step-ascending order, used by the round-trip tests in spec.md section 8.
func LoadCensuses(path string) ([]stats.Census, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`select step, susceptible, asymptomatic, symptomatic, recovered, died, quarantine_asym, quarantine_symp from stats order by step asc`)
	if err != nil {
		return nil, errors.Wrap(err, "querying stats table")
	}
	defer rows.Close()

	var out []stats.Census
	for rows.Next() {
		var c stats.Census
		if err := rows.Scan(&c.Step, &c.Susceptible, &c.Asymptomatic, &c.Symptomatic, &c.Recovered, &c.Died, &c.QuarantineAsym, &c.QuarantineSymp); err != nil {
			return nil, errors.Wrap(err, "scanning stats row")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats rows: %w", err)
	}
	return out, nil
}
