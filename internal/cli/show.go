package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lumos/internal/ldl"
	"github.com/roach88/lumos/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored project",
		Long: `Load a project by name and print its document.

Text output is YAML; --format json wraps the document in the standard
response envelope. When several projects share the name, the oldest is shown.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
}

func runShow(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	st, err := opts.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	id, err := st.FindProject(ctx, name)
	if err != nil {
		return lookupFailure(formatter, name, err)
	}
	doc, err := st.LoadProject(ctx, id)
	if err != nil {
		return lookupFailure(formatter, name, err)
	}

	var rendered []byte
	if formatter.Format != "json" {
		if rendered, err = ldl.Encode(doc, ldl.FormatYAML); err != nil {
			return WrapExitError(ExitFailure, "failed to encode project", err)
		}
	}
	return formatter.Success(doc, func(w io.Writer) {
		_, _ = w.Write(rendered)
	})
}

// lookupFailure maps a project lookup error to an exit error.
func lookupFailure(f *OutputFormatter, name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("project %q not found", name), nil)
	}
	return f.Fail(ExitFailure, ErrCodePersistence, err.Error(), nil)
}
