package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lumos/internal/actions"
	"github.com/roach88/lumos/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	OutDir string // "" means LUMOS_EXPORT_DIR
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Store a project and write it out as YAML",
		Long: `Export a project document.

The document is inserted as a new project (create semantics) and its
canonical YAML is written to <out>/<name>-<id>.yaml. The result carries a
file:// URL to the written file.

Example:
  lumos export ./demo.yaml --out ./exports`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "output directory (default $LUMOS_EXPORT_DIR or exports)")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	doc, err := LoadDocument(path)
	if err != nil {
		return loadFailure(formatter, err)
	}

	dir := opts.OutDir
	if dir == "" {
		dir = opts.env().ExportDir
	}

	st, err := opts.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	svc := &export.Service{Creator: st, Dir: dir, Logger: logger}
	cs := opts.newCommandStore(logger)

	res, err := actions.Export(commandContext(cmd), cs, svc, doc)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExportFailed, err.Error(), nil)
	}
	if res.Failed() {
		return formatter.Fail(ExitFailure, ErrCodeExportFailed, actions.SplitStatus(res.Status), nil)
	}

	return formatter.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "✓ exported project %d to %s\n", res.ProjectID, res.URL)
	})
}
