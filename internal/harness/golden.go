package harness

import (
	"regexp"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/yrrapt/analogen/internal/netlist"
	"github.com/yrrapt/analogen/internal/store"
)

// contentID matches the hex content ids that appear in stage event
// details (master and cell ids). They are deterministic but opaque, so
// golden files hold a placeholder instead.
var contentID = regexp.MustCompile(`[0-9a-f]{64}`)

// TraceSnapshot captures a scenario's trace for golden comparison.
// Serialization uses canonical JSON so key order and number formatting
// never drift between runs.
type TraceSnapshot struct {
	ScenarioName string
	RunToken     string
	Trace        []store.StageEvent
}

// toCanonicalMap converts the snapshot for netlist.MarshalCanonical,
// which handles maps, slices and primitives but not structs.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		eventMap := map[string]any{
			"seq":    ev.Seq,
			"stage":  ev.Stage,
			"status": ev.Status,
		}
		if ev.Detail != "" {
			eventMap["detail"] = contentID.ReplaceAllString(ev.Detail, "<id>")
		}
		traceList[i] = eventMap
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_token":     s.RunToken,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden. Regenerate golden files with:
//
//	go test ./internal/harness -update
//
// Returns an error when scenario execution itself fails; trace
// mismatches fail the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     result.RunToken,
		Trace:        result.Trace,
	}
	traceJSON, err := netlist.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
