package spec

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// Error codes for spec loading failures.
const (
	ErrCodeNotFound = "SPEC_NOT_FOUND"
	ErrCodeParse    = "SPEC_PARSE"
	ErrCodeInvalid  = "SPEC_INVALID"
)

// LoadError is a spec loading failure with a stable code.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a YAML design spec, validates it against the embedded CUE
// schema, decodes it and applies defaults.
func Load(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "spec file not found"}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}
	return Parse(path, data)
}

// LoadDir loads every .yaml spec in a directory, in lexical order.
// When collectAll is false, loading stops at the first invalid spec.
// When true, every spec is attempted and the invalid ones are reported
// together via errors.Join; the valid designs are still returned.
func LoadDir(dir string, collectAll bool) ([]*Design, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: dir, Message: err.Error()}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var designs []*Design
	var errs []error
	for _, name := range names {
		d, err := Load(filepath.Join(dir, name))
		if err != nil {
			if !collectAll {
				return designs, err
			}
			errs = append(errs, err)
			continue
		}
		designs = append(designs, d)
	}
	return designs, errors.Join(errs...)
}

// Parse validates and decodes spec bytes. The filename is used only
// for error positions.
func Parse(filename string, data []byte) (*Design, error) {
	ctx := cuecontext.New()

	schemaFile := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schemaFile.Err(); err != nil {
		// Embedded schema is part of the binary; failing to compile it
		// is a programming error, not user input.
		return nil, fmt.Errorf("internal schema error: %w", err)
	}
	schema := schemaFile.LookupPath(cue.ParsePath("#Design"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal schema error: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Path: filename, Message: err.Error()}
	}
	val := ctx.BuildFile(file)
	if err := val.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Path: filename, Message: cueerrors.Details(err, nil)}
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: filename, Message: cueerrors.Details(err, nil)}
	}

	var d Design
	if err := unified.Decode(&d); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: filename, Message: err.Error()}
	}

	if err := d.validateSemantics(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: filename, Message: err.Error()}
	}
	if err := d.applyDefaults(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: filename, Message: err.Error()}
	}
	return &d, nil
}

// validateSemantics checks constraints the structural schema cannot
// express.
func (d *Design) validateSemantics() error {
	if _, err := d.Params(); err != nil {
		return err
	}
	tb := d.Testbench
	if len(tb.Corners) == 0 {
		return fmt.Errorf("testbench.corners must list at least one corner")
	}
	seen := make(map[string]bool, len(tb.Corners))
	for _, c := range tb.Corners {
		if !validCorners[c] {
			return fmt.Errorf("testbench.corners: unknown corner %q (have %v)", c, CornerNames())
		}
		if seen[c] {
			return fmt.Errorf("testbench.corners: duplicate corner %q", c)
		}
		seen[c] = true
	}
	if len(tb.Analyses) == 0 {
		return fmt.Errorf("testbench.analyses must list at least one analysis")
	}
	for i, a := range tb.Analyses {
		if a.Type == AnalysisAC && a.FStartHz >= a.FStopHz {
			return fmt.Errorf("testbench.analyses[%d]: fstart_hz must be below fstop_hz", i)
		}
		if a.Type == AnalysisTran && a.StepPS > a.StopPS {
			return fmt.Errorf("testbench.analyses[%d]: step_ps exceeds stop_ps", i)
		}
	}
	for i, sw := range tb.Sweeps {
		if len(sw.Values) == 0 {
			return fmt.Errorf("testbench.sweeps[%d]: values must not be empty", i)
		}
		if _, ok := d.LayoutParams[sw.Param]; !ok {
			return fmt.Errorf("testbench.sweeps[%d]: swept param %q not present in layout_params", i, sw.Param)
		}
	}
	return nil
}
