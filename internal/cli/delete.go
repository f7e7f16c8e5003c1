package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored project",
		Long: `Delete a project by name together with everything it owns.

When several projects share the name, the oldest is deleted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runDelete(opts *RootOptions, name string, cmd *cobra.Command) error {
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
	if err := st.DeleteProject(ctx, id); err != nil {
		return lookupFailure(formatter, name, err)
	}

	return formatter.Success(map[string]any{"project_id": id, "name": name}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ deleted project %d (%s)\n", id, name)
	})
}
