// Package cli implements the lineage operations CLI: thin cobra wrappers
// over the provenance graph engine.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/lineage/internal/config"
	"github.com/roach88/lineage/internal/graph"
	"github.com/roach88/lineage/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	DBPath  string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the lineage CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lineage",
		Short: "Artifact provenance graph engine",
		Long: `lineage tracks research artifacts as a directed acyclic graph,
detects stale derivations, and keeps a tamper-evident audit trail.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewArtifactCommand(opts))
	cmd.AddCommand(NewLinkCommand(opts))
	cmd.AddCommand(NewUnlinkCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

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

// openEngine loads configuration, opens the store, and builds an engine.
// The returned closer must be called when the command is done.
func openEngine(opts *RootOptions) (*graph.Engine, func() error, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		return nil, nil, err
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	engine := graph.New(s,
		graph.WithLogger(logger),
		graph.WithLimits(graph.Limits{
			CycleCheckDepth:   cfg.Graph.CycleCheckDepth,
			TraversalDepth:    cfg.Graph.TraversalDepth,
			MaxTraversalDepth: cfg.Graph.MaxTraversalDepth,
		}),
	)

	return engine, s.Close, nil
}

// actingUser resolves the caller identity passed to engine operations.
// The CLI has no session layer; identity comes from the environment.
func actingUser() string {
	if u := os.Getenv("LINEAGE_USER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}
