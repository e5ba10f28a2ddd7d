package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yrrapt/analogen/internal/spec"
)

// ValidationResult holds validation output for a design spec.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Path       string `json:"path"`
	DesignName string `json:"design_name,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var collectAll bool

	cmd := &cobra.Command{
		Use:   "validate <spec.yaml | dir>",
		Short: "Validate design specs without running the flow",
		Long: `Validate YAML design specs against the embedded schema.

Checks syntax, types, required fields and semantic consistency
(known analyses, sweep parameters that exist, sane frequency ranges)
without generating anything. Given a directory, every .yaml file in
it is validated; --all keeps going past the first invalid spec.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err == nil && info.IsDir() {
				return runValidateDir(rootOpts, args[0], collectAll, cmd)
			}
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	cmd.Flags().BoolVar(&collectAll, "all", false, "report every invalid spec instead of stopping at the first")
	return cmd
}

func runValidateDir(opts *RootOptions, dir string, collectAll bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	designs, err := spec.LoadDir(dir, collectAll)
	if err != nil {
		result := ValidationResult{Valid: false, Path: dir, Error: err.Error()}
		var loadErr *spec.LoadError
		if errors.As(err, &loadErr) {
			result.ErrorCode = loadErr.Code
		}
		if opts.Format == "json" {
			if outErr := formatter.Success(result); outErr != nil {
				return outErr
			}
		} else if outErr := formatter.Error(result.ErrorCode, result.Error, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "one or more specs are invalid")
	}

	names := make([]string, len(designs))
	for i, d := range designs {
		names[i] = d.DesignName
	}
	return formatter.SuccessText(
		fmt.Sprintf("OK: %d specs in %s\n", len(designs), dir),
		map[string]any{"valid": true, "path": dir, "designs": names},
	)
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	d, err := spec.Load(path)
	if err != nil {
		result := ValidationResult{Valid: false, Path: path, Error: err.Error()}
		var loadErr *spec.LoadError
		if errors.As(err, &loadErr) {
			result.ErrorCode = loadErr.Code
		}
		if opts.Format == "json" {
			if outErr := formatter.Success(result); outErr != nil {
				return outErr
			}
		} else if outErr := formatter.Error(result.ErrorCode, result.Error, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitFailure, "spec is invalid")
	}

	formatter.VerboseLog("Loaded %s: generator %s, %d corners", path, d.Generator, len(d.Testbench.Corners))

	result := ValidationResult{
		Valid:      true,
		Path:       path,
		DesignName: d.DesignName,
		Generator:  d.Generator,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.SuccessText(
		fmt.Sprintf("OK: %s (design %s, generator %s)\n", path, d.DesignName, d.Generator),
		result,
	)
}
