package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool               `json:"valid"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Mode string // "create" | "save"
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a project document without storing it",
		Long: `Validate a project document without touching the database.

Checks the document against the CUE project schema, then applies the rules
the chosen persistence mode enforces. --mode save additionally requires a
position on every agent, tool, and task.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "create", "persistence rules to apply (create|save)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var mode ldl.Mode
	switch opts.Mode {
	case "create":
		mode = ldl.ModeCreate
	case "save":
		mode = ldl.ModeSave
	default:
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid mode %q: must be create or save", opts.Mode), nil)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && len(le.Violations) > 0 {
			return outputViolations(formatter, le.Violations)
		}
		return loadFailure(formatter, err)
	}

	formatter.VerboseLog("Schema OK, applying %s rules", opts.Mode)
	if err := doc.Validate(mode); err != nil {
		var fe *ldl.FieldError
		if errors.As(err, &fe) {
			return outputViolations(formatter, []schema.Violation{{Path: fe.Path, Message: fe.Message}})
		}
		return outputViolations(formatter, []schema.Violation{{Path: "document", Message: err.Error()}})
	}

	return formatter.Success(ValidationResult{Valid: true}, func(w io.Writer) {
		fmt.Fprintln(w, "✓ Document valid")
	})
}

// outputViolations prints every violation; validation failures exit 1.
func outputViolations(f *OutputFormatter, vs []schema.Violation) error {
	if f.Format == "json" {
		if err := f.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Violations: vs},
			Error:  &CLIError{Code: ErrCodeInvalidDocument, Message: vs[0].Error()},
		}); err != nil {
			return err
		}
		return reportedExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(vs)))
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, v := range vs {
		if v.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", v.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s\n\n", v.Path, v.Message)
	}
	return reportedExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(vs)))
}
