package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	specPath := filepath.Join(dir, "design.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte("impl_lib: x\n"), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenarioFile(t, `name: test_scenario
description: A test scenario.
spec: design.yaml
run_token: tok-1
expect:
  status: ok
assertions:
  - type: trace_contains
    stage: layout
    status: ok
  - type: result_count
    count: 2
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "test_scenario", s.Name)
	assert.Equal(t, "tok-1", s.RunToken)
	assert.Equal(t, "ok", s.Expect.Status)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, AssertTraceContains, s.Assertions[0].Type)

	// Relative spec paths resolve against the scenario file.
	assert.Equal(t, filepath.Join(filepath.Dir(path), "design.yaml"), s.Spec)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenarioFile(t, `name: typo
description: d
spec: design.yaml
expect:
  status: ok
assertion:
  - type: trace_count
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingSpec(t *testing.T) {
	path := writeScenarioFile(t, `name: s
description: d
spec: nonexistent.yaml
expect:
  status: ok
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec file not found")
}

func TestLoadScenario_BadExpectStatus(t *testing.T) {
	path := writeScenarioFile(t, `name: s
description: d
spec: design.yaml
expect:
  status: maybe
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `status must be "ok" or "failed"`)
}

func TestLoadScenario_FailedRequiresFailStage(t *testing.T) {
	path := writeScenarioFile(t, `name: s
description: d
spec: design.yaml
expect:
  status: failed
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail_stage is required")
}

func TestLoadScenario_AssertionValidation(t *testing.T) {
	cases := []struct {
		name      string
		assertion string
		wantErr   string
	}{
		{
			name:      "trace_contains without stage",
			assertion: "  - type: trace_contains\n    status: ok\n",
			wantErr:   "stage and status are required",
		},
		{
			name:      "trace_order without stages",
			assertion: "  - type: trace_order\n",
			wantErr:   "stages list is required",
		},
		{
			name:      "metric_bounds without metric",
			assertion: "  - type: metric_bounds\n    corner: tt\n    analysis: tran\n",
			wantErr:   "metric is required",
		},
		{
			name:      "metric_bounds inverted range",
			assertion: "  - type: metric_bounds\n    metric: tau_ps\n    corner: tt\n    analysis: tran\n    min: 10\n    max: 1\n",
			wantErr:   "min must not exceed max",
		},
		{
			name:      "unknown type",
			assertion: "  - type: trace_matches\n",
			wantErr:   "unknown assertion type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScenarioFile(t, `name: s
description: d
spec: design.yaml
expect:
  status: ok
assertions:
`+tc.assertion)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
