package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test for the generation flow.
// A scenario runs one design spec through the flow and asserts on the
// recorded stage trace and the simulation results.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden trace files are
	// keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the path to the design spec YAML, relative to the
	// scenario file location unless absolute.
	Spec string `yaml:"spec"`

	// RunToken is an optional fixed run token for deterministic traces.
	// Defaults to "scenario-run-0001".
	RunToken string `yaml:"run_token,omitempty"`

	// StopAfter optionally stops the flow after the named stage.
	StopAfter string `yaml:"stop_after,omitempty"`

	// SkipLVS skips the LVS stage.
	SkipLVS bool `yaml:"skip_lvs,omitempty"`

	// Expect describes the expected run outcome.
	Expect ExpectClause `yaml:"expect"`

	// Assertions validate the trace and results.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected run outcome.
type ExpectClause struct {
	// Status is the expected final run status: "ok" or "failed".
	Status string `yaml:"status"`

	// FailStage is the stage expected to fail, required when Status is
	// "failed".
	FailStage string `yaml:"fail_stage,omitempty"`
}

// Assertion validates the trace or the simulation results.
type Assertion struct {
	// Type selects the assertion:
	//  - "trace_contains": a stage event with the given stage/status
	//    (and detail substring, when set) appears in the trace
	//  - "trace_order": stages reach ok status in the given order
	//  - "trace_count": the trace holds exactly Count events
	//  - "result_count": the run produced exactly Count results
	//  - "metric_bounds": a metric of the matching result lies in
	//    [Min, Max]
	Type string `yaml:"type"`

	// Stage and Status select events for trace_contains.
	Stage  string `yaml:"stage,omitempty"`
	Status string `yaml:"status,omitempty"`

	// Detail is a substring the event detail must contain
	// (trace_contains only; empty matches any detail).
	Detail string `yaml:"detail,omitempty"`

	// Stages is the expected completion order for trace_order.
	Stages []string `yaml:"stages,omitempty"`

	// Count is the expected number for trace_count / result_count.
	Count int `yaml:"count,omitempty"`

	// Point, Corner and Analysis select a result for metric_bounds.
	// Point defaults to "base".
	Point    string `yaml:"point,omitempty"`
	Corner   string `yaml:"corner,omitempty"`
	Analysis string `yaml:"analysis,omitempty"`

	// Metric names the metric and Min/Max bound it (inclusive).
	Metric string  `yaml:"metric,omitempty"`
	Min    float64 `yaml:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertResultCount   = "result_count"
	AssertMetricBounds  = "metric_bounds"
)

// LoadScenario reads and parses a scenario YAML file. The spec path is
// resolved relative to the scenario file. Unknown fields are rejected
// so typos surface as load errors rather than silently-skipped
// assertions.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Spec != "" && !filepath.IsAbs(scenario.Spec) {
		scenario.Spec = filepath.Join(filepath.Dir(path), scenario.Spec)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := os.Stat(s.Spec); os.IsNotExist(err) {
		return fmt.Errorf("spec file not found: %s", s.Spec)
	}

	switch s.Expect.Status {
	case "ok":
		if s.Expect.FailStage != "" {
			return fmt.Errorf("expect: fail_stage only applies to failed runs")
		}
	case "failed":
		if s.Expect.FailStage == "" {
			return fmt.Errorf("expect: fail_stage is required for failed runs")
		}
	default:
		return fmt.Errorf("expect: status must be \"ok\" or \"failed\", got %q", s.Expect.Status)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Stage == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: stage and status are required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Stages) == 0 {
			return fmt.Errorf("assertions[%d]: stages list is required for trace_order", index)
		}
	case AssertTraceCount, AssertResultCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertMetricBounds:
		if a.Metric == "" {
			return fmt.Errorf("assertions[%d]: metric is required for metric_bounds", index)
		}
		if a.Corner == "" || a.Analysis == "" {
			return fmt.Errorf("assertions[%d]: corner and analysis are required for metric_bounds", index)
		}
		if a.Min > a.Max {
			return fmt.Errorf("assertions[%d]: min must not exceed max", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
