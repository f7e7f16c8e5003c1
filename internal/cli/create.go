package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/lumos/internal/store"
)

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <file>",
		Short: "Insert a project as a new row",
		Long: `Insert a project document as a new project.

Create never looks for an existing project with the same name: running it
twice stores two projects. Use save to upsert by name.

Example:
  lumos create ./demo.yaml
  lumos --db /tmp/lumos.db create ./demo.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, args[0], cmd)
		},
	}
}

func runCreate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	doc, err := LoadDocument(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	st, err := opts.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	res := st.CreateProject(commandContext(cmd), doc)
	return outputResult(formatter, "created", res)
}

// outputResult prints a persistence result; failures exit 1.
func outputResult(f *OutputFormatter, verb string, res store.Result) error {
	if !res.OK() {
		return f.Fail(ExitFailure, ErrCodePersistence, res.Message, nil)
	}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s project %d (%s)\n", verb, res.ProjectID, shortHash(res.ContentHash))
	})
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
