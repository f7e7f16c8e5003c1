package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/roach88/lumos/internal/actions"
	"github.com/roach88/lumos/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Concurrency int // 0 means LUMOS_SAVE_CONCURRENCY
}

// SaveOutcome is the per-file result of a save run.
type SaveOutcome struct {
	File   string       `json:"file"`
	Result store.Result `json:"result"`
	Error  string       `json:"error,omitempty"`

	index int
}

// OK reports whether the file was loaded and saved.
func (o SaveOutcome) OK() bool {
	return o.Error == "" && o.Result.OK()
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <file>...",
		Short: "Upsert projects by name",
		Long: `Save one or more project documents, matching existing projects by name.

An existing project keeps its id: its header is updated and every child
collection is replaced with the document's contents. Unknown names are
inserted. Files are saved concurrently through the command store, at most
--concurrency at a time. Every agent, tool, and task needs a position.

Example:
  lumos save ./demo.yaml
  lumos save --concurrency 8 ./projects/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "maximum concurrent saves (default $LUMOS_SAVE_CONCURRENCY or 4)")

	return cmd
}

func runSave(opts *SaveOptions, files []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = opts.env().SaveConcurrency
	}

	st, err := opts.openStore(logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	cs := opts.newCommandStore(logger)
	formatter.VerboseLog("Saving %d file(s), %d at a time", len(files), limit)

	p := pool.NewWithResults[SaveOutcome]().WithMaxGoroutines(limit)
	for i, file := range files {
		p.Go(func() SaveOutcome {
			out := SaveOutcome{File: file, index: i}
			doc, err := LoadDocument(file)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			res, err := actions.Save(ctx, cs, st, doc)
			if err != nil {
				out.Error = err.Error()
				return out
			}
			out.Result = res
			return out
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}

	if err := formatter.Success(outcomes, func(w io.Writer) {
		for _, o := range outcomes {
			switch {
			case o.Error != "":
				fmt.Fprintf(w, "✗ %s: %s\n", o.File, o.Error)
			case !o.Result.OK():
				fmt.Fprintf(w, "✗ %s: %s\n", o.File, o.Result.Message)
			default:
				fmt.Fprintf(w, "✓ %s: saved project %d (%s)\n", o.File, o.Result.ProjectID, shortHash(o.Result.ContentHash))
			}
		}
	}); err != nil {
		return err
	}

	if failed > 0 {
		return reportedExitError(ExitFailure, fmt.Sprintf("%d of %d save(s) failed", failed, len(outcomes)))
	}
	return nil
}
