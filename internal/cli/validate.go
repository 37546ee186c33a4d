package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphspan/splice/internal/harness"
)

// ValidationReport holds scenario validation results.
type ValidationReport struct {
	Scenario string   `json:"scenario,omitempty"`
	Valid    bool     `json:"valid"`
	Schema   string   `json:"schema,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario without running it",
		Long: `Validate a scenario file without running the rewrite.

Checks the YAML structure, the schema reference, instance integrity
(column lengths and index ranges) and that the rule legs are genuine
instance morphisms. No match search or rewrite is executed.

Exit codes:
  0 - Scenario valid
  1 - Scenario invalid
  2 - Command error (missing file, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, scenarioFile string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(scenarioFile); os.IsNotExist(err) {
		msg := fmt.Sprintf("scenario file not found: %s", scenarioFile)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return outputValidationErrors(formatter, "", []string{err.Error()})
	}

	formatter.VerboseLog("Loaded scenario %q", scenario.Name)

	bundle, err := scenario.Build()
	if err != nil {
		return outputValidationErrors(formatter, scenario.Name, []string{err.Error()})
	}

	report := ValidationReport{
		Scenario: scenario.Name,
		Valid:    true,
		Schema:   bundle.Schema.Name(),
		Rule:     bundle.Rule.Name(),
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid (schema %s, rule %s)\n", scenario.Name, report.Schema, report.Rule)
	return nil
}

// outputValidationErrors outputs validation errors and maps them to
// exit code 1.
func outputValidationErrors(f *OutputFormatter, scenarioName string, errs []string) error {
	if f.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationReport{
				Scenario: scenarioName,
				Valid:    false,
				Errors:   errs,
			},
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: errs[0],
			},
		}

		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, e := range errs {
		fmt.Fprintf(f.Writer, "  %s\n", e)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
