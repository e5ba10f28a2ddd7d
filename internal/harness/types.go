package harness

import (
	"github.com/yrrapt/analogen/internal/sim"
	"github.com/yrrapt/analogen/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: the run finished with
	// the expected status and every assertion held.
	Pass bool `json:"pass"`

	// RunToken identifies the flow run the scenario produced.
	RunToken string `json:"run_token"`

	// Status is the final run status ("ok" or "failed").
	Status string `json:"status"`

	// FailStage names the stage that failed, empty for ok runs.
	FailStage string `json:"fail_stage,omitempty"`

	// Trace contains the run's stage events in sequence order.
	Trace []store.StageEvent `json:"trace"`

	// Results holds the simulation results, empty when the run stopped
	// or failed before simulation.
	Results sim.Results `json:"results,omitempty"`

	// Errors contains assertion failure messages. Empty if Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []store.StageEvent{},
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
