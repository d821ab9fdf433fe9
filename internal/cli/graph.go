package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lineage/internal/graph"
	"github.com/roach88/lineage/internal/model"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Depth     int
	Direction string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <artifact-id>",
		Short: "Show the bounded provenance neighborhood of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			g, err := engine.ArtifactGraph(cmd.Context(), args[0], opts.Depth, graph.Direction(opts.Direction))
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(g, renderGraph(g))
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "traversal depth in hops (0 = configured default)")
	cmd.Flags().StringVar(&opts.Direction, "direction", string(graph.Both), "upstream, downstream, or both")

	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <artifact-id>",
		Short: "Check whether an artifact is outdated relative to its sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			report, err := engine.CheckArtifactOutdated(cmd.Context(), args[0])
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(report, renderReport(report))
		},
	}
	return cmd
}

func renderGraph(g *model.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph around %s: %d nodes, %d edges\n", g.RootID, len(g.Nodes), len(g.Edges))

	outdated := map[string]bool{}
	for _, id := range g.OutdatedIDs {
		outdated[id] = true
	}

	for _, n := range g.Nodes {
		marker := " "
		if outdated[n.ID] {
			marker = "!"
		}
		fmt.Fprintf(&b, "%s %s  %s (%s)\n", marker, n.ID, n.Name, n.Type)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %s -[%s]-> %s\n", e.SourceID, e.Relation, e.TargetID)
	}
	if len(g.OutdatedIDs) > 0 {
		fmt.Fprintf(&b, "outdated: %s", strings.Join(g.OutdatedIDs, ", "))
	} else {
		b.WriteString("all nodes up to date")
	}
	return b.String()
}

func renderReport(r *model.OutdatedReport) string {
	if !r.IsOutdated {
		return fmt.Sprintf("%s is up to date", r.ArtifactID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is OUTDATED (%d reasons)\n", r.ArtifactID, len(r.Reasons))
	for _, reason := range r.Reasons {
		fmt.Fprintf(&b, "  [%s] %s\n", reason.Kind, reason.Detail)
	}
	for _, action := range r.SuggestedActions {
		fmt.Fprintf(&b, "  -> %s\n", action)
	}
	return strings.TrimRight(b.String(), "\n")
}
