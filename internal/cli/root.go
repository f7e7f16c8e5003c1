package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/lumos/internal/config"
	"github.com/roach88/lumos/internal/engine"
	"github.com/roach88/lumos/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // overrides LUMOS_DB_PATH

	// Env is loaded by the root command. Subcommands executed on their own
	// load it lazily.
	Env *config.Env

	// FlowGenerator allows overriding the flow token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	FlowGenerator engine.FlowTokenGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the lumos CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lumos",
		Short: "lumos - agent project graphs",
		Long: `Persist and export agent project graphs.

A project is a canvas of agents, tools, tasks, interactions, and the
connections between them. Settings come from LUMOS_* environment variables;
flags override them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			env, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Env = env
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $LUMOS_DB_PATH or lumos.db)")

	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) env() *config.Env {
	if o.Env == nil {
		env, err := config.Load()
		if err != nil {
			env = &config.Env{DBPath: "lumos.db", LogLevel: "info", MaxOpenConns: 1, ExportDir: "exports", SaveConcurrency: 1}
		}
		o.Env = env
	}
	return o.Env
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // keep diagnostics out of JSON output
		Verbose:   o.Verbose,
	}
}

// logger writes text logs to w at the configured level; --verbose forces debug.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := o.env().SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) dbPath() string {
	if o.Database != "" {
		return o.Database
	}
	return o.env().DBPath
}

// openStore opens the configured database. Failures are command errors.
func (o *RootOptions) openStore(logger *slog.Logger) (*store.Store, error) {
	st, err := store.Open(o.dbPath(),
		store.WithMaxOpenConns(o.env().MaxOpenConns),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// newCommandStore builds the command store thunks run through.
func (o *RootOptions) newCommandStore(logger *slog.Logger) *engine.Store {
	flowGen := o.FlowGenerator
	if flowGen == nil {
		flowGen = engine.UUIDv7Generator{}
	}
	cs := engine.New(engine.Reduce, engine.State{},
		engine.WithFlowGenerator(flowGen),
		engine.WithLogger(logger),
	)
	cs.Subscribe(func() {
		logger.Debug("state changed", "seq", cs.Seq())
	})
	return cs
}
