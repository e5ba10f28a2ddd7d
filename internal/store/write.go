package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yrrapt/analogen/internal/sim"
)

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusOK      = "ok"
	RunStatusFailed  = "failed"
)

// Stage event statuses.
const (
	EventStart = "start"
	EventOK    = "ok"
	EventFail  = "fail"
)

// Run is one flow run record. Token is a UUIDv7, so lexical token
// order is creation order.
type Run struct {
	Token      string `json:"token"`
	DesignName string `json:"design_name"`
	Generator  string `json:"generator"`
	MasterID   string `json:"master_id"`
	ParamsJSON string `json:"params_json"`
	Status     string `json:"status"`
	FailStage  string `json:"fail_stage,omitempty"`
	FailError  string `json:"fail_error,omitempty"`
	CreatedMS  int64  `json:"created_ms"`
}

// StageEvent is one entry in a run's ordered trace. Seq is the run's
// logical clock, starting at 1.
type StageEvent struct {
	RunToken string `json:"-"`
	Seq      int64  `json:"seq"`
	Stage    string `json:"stage"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

// Master is a persisted content-addressed layout master: the
// generator, its canonical parameters, and the extracted netlist.
type Master struct {
	ID         string `json:"id"`
	Generator  string `json:"generator"`
	ParamsJSON string `json:"params_json"`
	CellID     string `json:"cell_id"`
	CellJSON   string `json:"cell_json"`
}

// BeginRun inserts a new run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(token, design_name, generator, master_id, params_json, status, created_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.Token,
		run.DesignName,
		run.Generator,
		run.MasterID,
		run.ParamsJSON,
		RunStatusRunning,
		run.CreatedMS,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun marks a run ok or failed. failStage and failErr are empty
// on success.
func (s *Store) FinishRun(ctx context.Context, token, status, failStage, failErr string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, fail_stage = ?, fail_error = ?
		WHERE token = ?
	`, status, failStage, failErr, token)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run token %s", token)
	}
	return nil
}

// WriteStageEvent appends one trace entry. Duplicate (token, seq)
// pairs are silently ignored so a retried stage cannot corrupt the
// trace.
func (s *Store) WriteStageEvent(ctx context.Context, ev StageEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stage_events (run_token, seq, stage, status, detail)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`, ev.RunToken, ev.Seq, ev.Stage, ev.Status, ev.Detail)
	if err != nil {
		return fmt.Errorf("write stage event: %w", err)
	}
	return nil
}

// WriteMaster persists a layout master. Re-writing an existing id is
// a no-op; inserted reports whether a new row was created.
func (s *Store) WriteMaster(ctx context.Context, m Master) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO masters (id, generator, params_json, cell_id, cell_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, m.ID, m.Generator, m.ParamsJSON, m.CellID, m.CellJSON)
	if err != nil {
		return false, fmt.Errorf("write master: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write master: %w", err)
	}
	return n > 0, nil
}

// WriteResult persists one simulation result with its waveforms in a
// single transaction. Duplicate (run, key) writes are ignored.
//
// Metrics and waveform samples are floats, so they are stored as
// plain JSON; canonical JSON is reserved for identity-bearing data.
func (s *Store) WriteResult(ctx context.Context, token string, r sim.Result) error {
	metricsJSON, err := json.Marshal(r.Metrics)
	if err != nil {
		return fmt.Errorf("write result: marshal metrics: %w", err)
	}
	sweepJSON, err := json.Marshal(r.SweepParams)
	if err != nil {
		return fmt.Errorf("write result: marshal sweep params: %w", err)
	}
	if r.SweepParams == nil {
		sweepJSON = []byte("{}")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write result: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	key := r.Key()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO results
		(run_token, result_key, point, corner, analysis, sweep_json, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token, result_key) DO NOTHING
	`, token, key, r.Point, r.Corner, r.Analysis, string(sweepJSON), string(metricsJSON))
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	for _, w := range r.Waveforms {
		data, err := json.Marshal(struct {
			X []float64 `json:"x"`
			Y []float64 `json:"y"`
		}{w.X, w.Y})
		if err != nil {
			return fmt.Errorf("write result: marshal waveform %s: %w", w.Name, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO waveforms
			(run_token, result_key, name, x_unit, y_unit, data_json)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_token, result_key, name) DO NOTHING
		`, token, key, w.Name, w.XUnit, w.YUnit, string(data))
		if err != nil {
			return fmt.Errorf("write result: waveform %s: %w", w.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write result: commit: %w", err)
	}
	return nil
}
