package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphspan/splice/internal/harness"
)

// CandidateReport describes one match candidate and its verdict.
type CandidateReport struct {
	Match   map[string][]int `json:"match"`
	Verdict string           `json:"verdict"`
}

// MatchReport is the payload of the matches command.
type MatchReport struct {
	Scenario   string            `json:"scenario"`
	Candidates []CandidateReport `json:"candidates"`
	Applicable int               `json:"applicable"`
	Total      int               `json:"total"`
}

// NewMatchesCommand creates the matches command.
func NewMatchesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches <scenario.yaml>",
		Short: "List candidate matches and their verdicts",
		Long: `List every candidate match of the rule pattern in the host.

A candidate is a structure-preserving assignment of pattern elements to
host elements, enumerated in deterministic order. Each candidate is
checked against the applicability conditions; rejected candidates are
listed with the condition that failed (identification or dangling).

Examples:
  splice matches ./testdata/scenarios/delete-isolated-vertex.yaml
  splice matches ./testdata/scenarios/delete-isolated-vertex.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatches(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runMatches(opts *RootOptions, scenarioFile string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	report := MatchReport{Scenario: scenario.Name, Candidates: []CandidateReport{}}
	for _, ev := range result.Trace {
		switch ev.Type {
		case harness.TraceMatchFound:
			report.Candidates = append(report.Candidates, CandidateReport{Match: ev.Match, Verdict: harness.VerdictOK})
			report.Applicable++
		case harness.TraceMatchRejected:
			report.Candidates = append(report.Candidates, CandidateReport{Match: ev.Match, Verdict: ev.Condition})
		}
	}
	report.Total = len(report.Candidates)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)
	if report.Total == 0 {
		fmt.Fprintln(w, "No candidate matches.")
		return nil
	}
	for i, c := range report.Candidates {
		if c.Verdict == harness.VerdictOK {
			fmt.Fprintf(w, "  %d. %s ok\n", i+1, formatMatch(c.Match))
		} else {
			fmt.Fprintf(w, "  %d. %s rejected (%s)\n", i+1, formatMatch(c.Match), c.Verdict)
		}
	}
	fmt.Fprintf(w, "%d of %d candidates applicable\n", report.Applicable, report.Total)
	return nil
}

// formatMatch renders a match assignment as {E:[1] V:[2 3]} with sorts
// in lexical order.
func formatMatch(parts map[string][]int) string {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	elems := make([]string, len(keys))
	for i, k := range keys {
		elems[i] = fmt.Sprintf("%s:%v", k, parts[k])
	}
	return "{" + strings.Join(elems, " ") + "}"
}
