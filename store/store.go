// Package store archives simulation results in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/dca"
	"github.com/etnz/dca/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created TEXT NOT NULL,
	currency TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	contributed REAL NOT NULL,
	invested REAL NOT NULL,
	fees REAL NOT NULL,
	equity REAL NOT NULL,
	cash REAL NOT NULL,
	return_pct REAL NOT NULL,
	annualized_pct REAL NOT NULL,
	instruments TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	on_date TEXT NOT NULL,
	equity REAL NOT NULL,
	invested REAL NOT NULL,
	remaining REAL NOT NULL,
	return_pct REAL NOT NULL,
	fee_pct REAL NOT NULL,
	weights TEXT NOT NULL,
	final INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, seq)
);
`

// Store is a run archive.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// Run is the archived summary of a simulation.
type Run struct {
	ID               uuid.UUID
	Created          time.Time
	Currency         string
	Start, End       date.Date
	Instruments      []string
	Contributed      float64
	Invested         float64
	Fees             float64
	Equity           float64
	Cash             float64
	Return           dca.Percent
	AnnualizedReturn dca.Percent
}

// Open opens, or creates, the archive at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if path != ":memory:" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		path = absPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, log: log, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save archives r and returns its new run id.
func (s *Store) Save(ctx context.Context, r *dca.Result) (uuid.UUID, error) {
	id := uuid.New()
	instruments, err := json.Marshal(r.Instruments)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := r.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created, currency, start_date, end_date, contributed, invested, fees, equity, cash, return_pct, annualized_pct, instruments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), s.now().UTC().Format(time.RFC3339Nano), r.Currency, sum.Start.String(), sum.End.String(),
		sum.Contributed, sum.Invested, sum.Fees, sum.Equity, sum.Cash, float64(sum.Return), float64(sum.AnnualizedReturn), string(instruments))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, seq, on_date, equity, invested, remaining, return_pct, fee_pct, weights, final)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()
	for i, sample := range r.Samples {
		weights, err := json.Marshal(sample.Weights)
		if err != nil {
			return uuid.Nil, err
		}
		_, err = stmt.ExecContext(ctx, id.String(), i, sample.Date.String(), sample.Equity, sample.Invested, sample.Remaining,
			float64(sample.Return), float64(sample.FeeRatio), string(weights), sample.Final)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit run: %w", err)
	}
	s.log.Info().Stringer("run", id).Int("samples", len(r.Samples)).Msg("run archived")
	return id, nil
}

// Runs returns every archived run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created, currency, start_date, end_date, contributed, invested, fees, equity, cash, return_pct, annualized_pct, instruments
		FROM runs ORDER BY created, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                      Run
			id, created, start, end  string
			instruments              string
			returnPct, annualizedPct float64
		)
		err := rows.Scan(&id, &created, &run.Currency, &start, &end, &run.Contributed, &run.Invested, &run.Fees,
			&run.Equity, &run.Cash, &returnPct, &annualizedPct, &instruments)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		if run.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s: invalid creation time: %w", id, err)
		}
		if run.Start, err = date.Parse(start); err != nil {
			return nil, fmt.Errorf("run %s: %w", id, err)
		}
		if run.End, err = date.Parse(end); err != nil {
			return nil, fmt.Errorf("run %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(instruments), &run.Instruments); err != nil {
			return nil, fmt.Errorf("run %s: invalid instruments: %w", id, err)
		}
		run.Return = dca.Percent(returnPct)
		run.AnnualizedReturn = dca.Percent(annualizedPct)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Samples returns the time series of run id.
func (s *Store) Samples(ctx context.Context, id uuid.UUID) ([]dca.Sample, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id.String()).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT on_date, equity, invested, remaining, return_pct, fee_pct, weights, final
		FROM samples WHERE run_id = ? ORDER BY seq`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []dca.Sample
	for rows.Next() {
		var (
			sample            dca.Sample
			on, weights       string
			returnPct, feePct float64
		)
		if err := rows.Scan(&on, &sample.Equity, &sample.Invested, &sample.Remaining, &returnPct, &feePct, &weights, &sample.Final); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if sample.Date, err = date.Parse(on); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(weights), &sample.Weights); err != nil {
			return nil, fmt.Errorf("invalid weights on %s: %w", on, err)
		}
		sample.Return = dca.Percent(returnPct)
		sample.FeeRatio = dca.Percent(feePct)
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}
