package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yrrapt/analogen/internal/sim"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// GetRun loads one run by token.
func (s *Store) GetRun(ctx context.Context, token string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, design_name, generator, master_id, params_json,
		       status, fail_stage, fail_error, created_ms
		FROM runs WHERE token = ?
	`, token)

	var r Run
	err := row.Scan(&r.Token, &r.DesignName, &r.Generator, &r.MasterID,
		&r.ParamsJSON, &r.Status, &r.FailStage, &r.FailError, &r.CreatedMS)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", token, err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. UUIDv7 tokens sort
// by creation time, so token order is run order.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, design_name, generator, master_id, params_json,
		       status, fail_stage, fail_error, created_ms
		FROM runs
		ORDER BY token DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Token, &r.DesignName, &r.Generator, &r.MasterID,
			&r.ParamsJSON, &r.Status, &r.FailStage, &r.FailError, &r.CreatedMS); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadTrace returns a run's stage events in logical clock order.
func (s *Store) ReadTrace(ctx context.Context, token string) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, seq, stage, status, detail
		FROM stage_events
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var ev StageEvent
		if err := rows.Scan(&ev.RunToken, &ev.Seq, &ev.Stage, &ev.Status, &ev.Detail); err != nil {
			return nil, fmt.Errorf("read trace: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return events, nil
}

// GetMaster loads one layout master by content-addressed id.
func (s *Store) GetMaster(ctx context.Context, id string) (Master, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, generator, params_json, cell_id, cell_json
		FROM masters WHERE id = ?
	`, id)

	var m Master
	err := row.Scan(&m.ID, &m.Generator, &m.ParamsJSON, &m.CellID, &m.CellJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Master{}, fmt.Errorf("get master %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Master{}, fmt.Errorf("get master %s: %w", id, err)
	}
	return m, nil
}

// ReadResults reconstructs a run's simulation results, waveforms
// included, in result key order.
func (s *Store) ReadResults(ctx context.Context, token string) (sim.Results, error) {
	run, err := s.GetRun(ctx, token)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT result_key, point, corner, analysis, sweep_json, metrics_json
		FROM results
		WHERE run_token = ?
		ORDER BY result_key ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	defer rows.Close()

	var results sim.Results
	var keys []string
	for rows.Next() {
		var key, sweepJSON, metricsJSON string
		var r sim.Result
		if err := rows.Scan(&key, &r.Point, &r.Corner, &r.Analysis, &sweepJSON, &metricsJSON); err != nil {
			return nil, fmt.Errorf("read results: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &r.Metrics); err != nil {
			return nil, fmt.Errorf("read results: metrics for %s: %w", key, err)
		}
		if err := json.Unmarshal([]byte(sweepJSON), &r.SweepParams); err != nil {
			return nil, fmt.Errorf("read results: sweep params for %s: %w", key, err)
		}
		if len(r.SweepParams) == 0 {
			r.SweepParams = nil
		}
		r.Design = run.DesignName
		results = append(results, r)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	for i, key := range keys {
		waves, err := s.readWaveforms(ctx, token, key)
		if err != nil {
			return nil, err
		}
		results[i].Waveforms = waves
	}
	return results, nil
}

func (s *Store) readWaveforms(ctx context.Context, token, key string) ([]sim.Waveform, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, x_unit, y_unit, data_json
		FROM waveforms
		WHERE run_token = ? AND result_key = ?
		ORDER BY name ASC
	`, token, key)
	if err != nil {
		return nil, fmt.Errorf("read waveforms: %w", err)
	}
	defer rows.Close()

	var waves []sim.Waveform
	for rows.Next() {
		var w sim.Waveform
		var data string
		if err := rows.Scan(&w.Name, &w.XUnit, &w.YUnit, &data); err != nil {
			return nil, fmt.Errorf("read waveforms: %w", err)
		}
		var xy struct {
			X []float64 `json:"x"`
			Y []float64 `json:"y"`
		}
		if err := json.Unmarshal([]byte(data), &xy); err != nil {
			return nil, fmt.Errorf("read waveforms: %s: %w", w.Name, err)
		}
		w.X, w.Y = xy.X, xy.Y
		waves = append(waves, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read waveforms: %w", err)
	}
	return waves, nil
}
