package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored projects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := opts.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	projects, err := st.ListProjects(commandContext(cmd))
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePersistence, err.Error(), nil)
	}

	return formatter.Success(projects, func(w io.Writer) {
		if len(projects) == 0 {
			fmt.Fprintln(w, "No projects")
			return
		}
		for _, p := range projects {
			fmt.Fprintf(w, "%4d  %-24s %-10s %s\n", p.ID, p.Name, p.Version, shortHash(p.ContentHash))
		}
	})
}
