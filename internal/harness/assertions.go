package harness

import (
	"fmt"
	"strings"

	"github.com/yrrapt/analogen/internal/store"
)

// AssertionError is returned when an assertion fails. It carries the
// full trace so failures are debuggable from the message alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []store.StageEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s %s\n", ev.Seq, ev.Stage, ev.Status, ev.Detail)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertResultCount:
			err = assertResultCount(result, a)
		case AssertMetricBounds:
			err = assertMetricBounds(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertTraceContains checks that an event with the given stage and
// status appears, with the detail containing the assertion's detail
// substring when one is given.
func assertTraceContains(trace []store.StageEvent, a Assertion) error {
	for _, ev := range trace {
		if ev.Stage == a.Stage && ev.Status == a.Status {
			if a.Detail == "" || strings.Contains(ev.Detail, a.Detail) {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("stage %s status %s detail ~ %q", a.Stage, a.Status, a.Detail),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the stages reach ok status in the given
// order. Stages need not be consecutive.
func assertTraceOrder(trace []store.StageEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Status == store.EventOK && positions[ev.Stage] == 0 {
			positions[ev.Stage] = i + 1
		}
	}

	for _, stage := range a.Stages {
		if positions[stage] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all stages ok: %v", a.Stages),
				Actual:   fmt.Sprintf("stage %s never reached ok", stage),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Stages); i++ {
		prev, curr := a.Stages[i-1], a.Stages[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("stages in order: %v", a.Stages),
				Actual: fmt.Sprintf("%s (pos %d) should complete before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertTraceCount(trace []store.StageEvent, a Assertion) error {
	if len(trace) != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d trace events", a.Count),
			Actual:   fmt.Sprintf("%d trace events", len(trace)),
			Trace:    trace,
		}
	}
	return nil
}

func assertResultCount(result *Result, a Assertion) error {
	if len(result.Results) != a.Count {
		return &AssertionError{
			Type:     AssertResultCount,
			Expected: fmt.Sprintf("%d results", a.Count),
			Actual:   fmt.Sprintf("%d results", len(result.Results)),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertMetricBounds checks that the selected result's metric lies in
// [Min, Max].
func assertMetricBounds(result *Result, a Assertion) error {
	point := a.Point
	if point == "" {
		point = "base"
	}

	for _, res := range result.Results {
		if res.Point != point || res.Corner != a.Corner || res.Analysis != a.Analysis {
			continue
		}
		v, ok := res.Metrics[a.Metric]
		if !ok {
			return &AssertionError{
				Type:     AssertMetricBounds,
				Expected: fmt.Sprintf("metric %q on result %s", a.Metric, res.Key()),
				Actual:   fmt.Sprintf("metrics: %v", res.Metrics),
				Trace:    result.Trace,
			}
		}
		if v < a.Min || v > a.Max {
			return &AssertionError{
				Type:     AssertMetricBounds,
				Expected: fmt.Sprintf("%s in [%g, %g]", a.Metric, a.Min, a.Max),
				Actual:   fmt.Sprintf("%s = %g", a.Metric, v),
				Trace:    result.Trace,
			}
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertMetricBounds,
		Expected: fmt.Sprintf("result for point %s corner %s analysis %s", point, a.Corner, a.Analysis),
		Actual:   fmt.Sprintf("%d results, none matching", len(result.Results)),
		Trace:    result.Trace,
	}
}
