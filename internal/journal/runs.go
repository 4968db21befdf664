package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"rule-bloom/internal/core"
	"rule-bloom/internal/sims/rulebloom"
)

// Run describes one recorded simulation.
type Run struct {
	ID              string
	CreatedAt       time.Time
	Regime          string
	Params          rulebloom.Params
	InitialChecksum uint64
}

// TickRecord is the journal row for one completed tick.
type TickRecord struct {
	Tick        uint64
	Alive       int
	Topples     int
	Decays      int
	GrainsAdded int
	Checksum    uint64
}

// RecordFromStats pairs tick stats with the post-tick checksum.
func RecordFromStats(stats core.TickStats, checksum uint64) TickRecord {
	return TickRecord{
		Tick:        stats.Tick,
		Alive:       stats.Alive,
		Topples:     stats.Topples,
		Decays:      stats.Decays,
		GrainsAdded: stats.GrainsAdded,
		Checksum:    checksum,
	}
}

// CreateRun inserts run, assigning an ID and timestamp when they are unset.
func (s *Store) CreateRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	params, err := yaml.Marshal(run.Params)
	if err != nil {
		return run, fmt.Errorf("create run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, regime, params, initial_checksum)
		VALUES (?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Regime,
		string(params),
		int64(run.InitialChecksum),
	)
	if err != nil {
		return run, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// AppendTicks writes a batch of tick records in one transaction. Records
// already present for the same tick are left unchanged.
func (s *Store) AppendTicks(ctx context.Context, runID string, records []TickRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append ticks: %w", err)
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("append ticks %s: %w", runID, ErrRunNotFound)
		}
		return fmt.Errorf("append ticks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ticks (run_id, tick, alive, topples, decays, grains_added, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, tick) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("append ticks: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			runID,
			int64(rec.Tick),
			rec.Alive,
			rec.Topples,
			rec.Decays,
			rec.GrainsAdded,
			int64(rec.Checksum),
		); err != nil {
			return fmt.Errorf("append tick %d: %w", rec.Tick, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append ticks: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		created  string
		params   string
		checksum int64
	)
	if err := row.Scan(&run.ID, &created, &run.Regime, &params, &checksum); err != nil {
		return run, err
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return run, fmt.Errorf("run %s: created_at: %w", run.ID, err)
	}
	run.CreatedAt = ts
	if err := yaml.Unmarshal([]byte(params), &run.Params); err != nil {
		return run, fmt.Errorf("run %s: params: %w", run.ID, err)
	}
	run.InitialChecksum = uint64(checksum)
	return run, nil
}

// Run loads one run by ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, regime, params, initial_checksum
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// Runs lists every run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, regime, params, initial_checksum
		FROM runs ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Ticks returns the recorded ticks of a run in tick order. An unknown run
// yields an empty slice.
func (s *Store) Ticks(ctx context.Context, runID string) ([]TickRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, alive, topples, decays, grains_added, checksum
		FROM ticks WHERE run_id = ?
		ORDER BY tick ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	out := []TickRecord{}
	for rows.Next() {
		var (
			rec      TickRecord
			tick     int64
			checksum int64
		)
		if err := rows.Scan(&tick, &rec.Alive, &rec.Topples, &rec.Decays, &rec.GrainsAdded, &checksum); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		rec.Tick = uint64(tick)
		rec.Checksum = uint64(checksum)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}
	return out, nil
}
