package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yrrapt/analogen/internal/layout"
	"github.com/yrrapt/analogen/internal/spec"
)

// InitAnswers collects the interactive answers for a new design spec.
type InitAnswers struct {
	Generator string
	ImplLib   string
	SupplyMV  int64
	LoadCapFF int64
	Corners   []string
	Analyses  []string
}

// NewInitCommand creates the init command: interactively scaffold a
// design spec file.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <spec.yaml>",
		Short: "Interactively create a design spec file",
		Long: `Create a design spec file by answering prompts for the generator,
implementation library, supply, corners and analyses. Layout
parameters are filled with the generator's example values for
editing afterwards.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); err == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s already exists", path))
	}

	answers, err := askInitQuestions()
	if err != nil {
		return WrapExitError(ExitCommandError, "prompt failed", err)
	}

	data, err := RenderInitSpec(answers)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render spec", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write spec", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func askInitQuestions() (*InitAnswers, error) {
	answers := &InitAnswers{}

	qs := []*survey.Question{
		{
			Name: "generator",
			Prompt: &survey.Select{
				Message: "Generator:",
				Options: layout.Names(),
			},
		},
		{
			Name:     "impllib",
			Prompt:   &survey.Input{Message: "Implementation library:", Default: "demo_lib"},
			Validate: survey.Required,
		},
		{
			Name:     "supply",
			Prompt:   &survey.Input{Message: "Supply voltage (mV):", Default: "900"},
			Validate: positiveInt,
		},
		{
			Name:     "loadcap",
			Prompt:   &survey.Input{Message: "Load capacitance (fF):", Default: "10"},
			Validate: positiveInt,
		},
		{
			Name: "corners",
			Prompt: &survey.MultiSelect{
				Message: "Process corners:",
				Options: spec.CornerNames(),
				Default: []string{"tt"},
			},
			Validate: survey.MinItems(1),
		},
		{
			Name: "analyses",
			Prompt: &survey.MultiSelect{
				Message: "Analyses:",
				Options: []string{spec.AnalysisTran, spec.AnalysisAC},
				Default: []string{spec.AnalysisTran},
			},
			Validate: survey.MinItems(1),
		},
	}

	raw := struct {
		Generator string
		ImplLib   string `survey:"impllib"`
		Supply    string
		LoadCap   string `survey:"loadcap"`
		Corners   []string
		Analyses  []string
	}{}
	if err := survey.Ask(qs, &raw); err != nil {
		return nil, err
	}

	answers.Generator = raw.Generator
	answers.ImplLib = raw.ImplLib
	answers.Corners = raw.Corners
	answers.Analyses = raw.Analyses
	answers.SupplyMV, _ = strconv.ParseInt(raw.Supply, 10, 64)
	answers.LoadCapFF, _ = strconv.ParseInt(raw.LoadCap, 10, 64)
	return answers, nil
}

func positiveInt(val any) error {
	s, ok := val.(string)
	if !ok {
		return fmt.Errorf("expected a number")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

// exampleParams holds starter layout parameters per generator, written
// into scaffolded specs for editing.
var exampleParams = map[string]map[string]any{
	"inv": {
		"seg_n": 2, "seg_p": 4, "w_n": 500, "w_p": 1000, "l": 40, "intent": "lvt",
	},
	"common_source": {
		"seg": 4, "w": 600, "l": 60, "rload": 5000, "intent": "standard",
	},
}

// RenderInitSpec renders the answers as a YAML design spec and
// validates the result before returning it.
func RenderInitSpec(a *InitAnswers) ([]byte, error) {
	params, ok := exampleParams[a.Generator]
	if !ok {
		// Unknown generators still get a scaffold; the user fills in
		// the parameters.
		params = map[string]any{}
	}

	var analyses []map[string]any
	for _, typ := range a.Analyses {
		switch typ {
		case spec.AnalysisTran:
			analyses = append(analyses, map[string]any{
				"type": typ, "stop_ps": 1000000, "step_ps": 1000,
			})
		case spec.AnalysisAC:
			analyses = append(analyses, map[string]any{
				"type": typ, "fstart_hz": 1000, "fstop_hz": 1000000000000, "points_per_decade": 10,
			})
		default:
			return nil, fmt.Errorf("unknown analysis type %q", typ)
		}
	}

	doc := map[string]any{
		"impl_lib":      a.ImplLib,
		"generator":     a.Generator,
		"layout_params": params,
		"testbench": map[string]any{
			"supply_mv":   a.SupplyMV,
			"load_cap_ff": a.LoadCapFF,
			"corners":     a.Corners,
			"analyses":    analyses,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}

	// Scaffolds with known generators must pass validation; fail here
	// rather than handing the user a broken file.
	if ok {
		if _, err := spec.Parse("init", data); err != nil {
			return nil, fmt.Errorf("generated spec is invalid: %w", err)
		}
	}
	return data, nil
}
