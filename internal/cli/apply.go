package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphspan/splice/internal/attr"
	"github.com/graphspan/splice/internal/harness"
	"github.com/graphspan/splice/internal/instance"
	"github.com/graphspan/splice/internal/testutil"
)

// ApplyReport is the payload of the apply command.
type ApplyReport struct {
	Scenario    string         `json:"scenario"`
	RunToken    string         `json:"run_token"`
	Applied     bool           `json:"applied"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Counts      map[string]int `json:"counts,omitempty"`
	Instance    map[string]any `json:"instance,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <scenario.yaml>",
		Short: "Apply a scenario's rule to its host",
		Long: `Apply the scenario's rule to its host instance.

Loads one scenario file, searches the host for candidate matches of the
rule pattern, checks the applicability conditions at each candidate, and
performs the rewrite at the selected match. Prints the rewritten
instance, or reports that the rule does not apply. Scenario assertions
are not checked here; use 'splice test' for conformance runs.

Exit codes:
  0 - Rule applied
  1 - No result (no selected candidate passes the conditions)
  2 - Command error (missing file, malformed scenario, etc.)

Examples:
  splice apply ./testdata/scenarios/delete-isolated-vertex.yaml
  splice apply ./testdata/scenarios/subdivide-edge.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runApply(opts *RootOptions, scenarioFile string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	// Scenarios that do not pin a run token get a fresh one per run.
	if scenario.RunToken == "" {
		scenario.RunToken = testutil.NewRunToken()
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if !result.Applied {
		return outputNoResult(formatter, scenario, result)
	}

	return outputApplied(formatter, scenario, result)
}

// appliedEvent returns the applied trace event, if any.
func appliedEvent(result *harness.Result) (harness.TraceEvent, bool) {
	for _, ev := range result.Trace {
		if ev.Type == harness.TraceApplied {
			return ev, true
		}
	}
	return harness.TraceEvent{}, false
}

func outputApplied(f *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	ev, _ := appliedEvent(result)

	if f.Format == "json" {
		return f.Success(ApplyReport{
			Scenario:    scenario.Name,
			RunToken:    result.RunToken,
			Applied:     true,
			Fingerprint: ev.Fingerprint,
			Counts:      ev.Counts,
			Instance:    result.Output.Canonical(),
		})
	}

	w := f.Writer
	fmt.Fprintf(w, "✓ %s applied\n", scenario.Name)
	fmt.Fprintf(w, "Fingerprint: %s\n", ev.Fingerprint)
	fmt.Fprintln(w)
	renderInstanceText(w, result.Output)
	return nil
}

func outputNoResult(f *OutputFormatter, scenario *harness.Scenario, result *harness.Result) error {
	if f.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ApplyReport{
				Scenario: scenario.Name,
				RunToken: result.RunToken,
				Applied:  false,
			},
			Error: &CLIError{
				Code:    ErrCodeNoResult,
				Message: "rule not applicable",
			},
		}
		if err := json.NewEncoder(f.Writer).Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "rule not applicable")
	}

	w := f.Writer
	fmt.Fprintf(w, "✗ %s: no result\n", scenario.Name)
	for _, ev := range result.Trace {
		if ev.Type == harness.TraceMatchRejected {
			fmt.Fprintf(w, "  %s rejected (%s)\n", formatMatch(ev.Match), ev.Condition)
		}
	}
	return NewExitError(ExitFailure, "rule not applicable")
}

// renderInstanceText prints a readable table of an instance: element
// counts per sort, then every foreign-key and attribute column.
func renderInstanceText(w io.Writer, x *instance.Instance) {
	sc := x.Schema()
	fmt.Fprintf(w, "Result instance (schema %s):\n", sc.Name())
	for _, sort := range sc.Sorts() {
		fmt.Fprintf(w, "  %s: %d\n", sort.Name, x.ElementCount(sort.Name))
	}
	for _, hom := range sc.Homs() {
		fmt.Fprintf(w, "  %s (%s -> %s): %v\n", hom.Name, hom.Src, hom.Tgt, x.Hom(hom.Name))
	}
	for _, at := range sc.Attrs() {
		fmt.Fprintf(w, "  %s (%s): %s\n", at.Name, at.Src, formatAttrValues(x.Attr(at.Name)))
	}
}

func formatAttrValues(vals []attr.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = attr.Format(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
