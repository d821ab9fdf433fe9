package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lineage/internal/graph"
	"github.com/roach88/lineage/internal/model"
)

// LinkOptions holds flags for the link command.
type LinkOptions struct {
	*RootOptions
	Relation           string
	TransformationType string
	SourceVersion      string
	TargetVersion      string
	Metadata           string
}

// NewLinkCommand creates the link command.
func NewLinkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LinkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "link <source-id> <target-id>",
		Short: "Create a derivation edge from source to target",
		Long: `Create a directed derivation edge from a source artifact to a
target artifact. The edge is rejected if it would make the graph cyclic.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := parseMetadataFlag(opts.Metadata)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "invalid --metadata", Err: err}
			}

			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			edge, err := engine.LinkArtifacts(cmd.Context(), graph.LinkInput{
				SourceID:           args[0],
				TargetID:           args[1],
				Relation:           model.RelationType(opts.Relation),
				TransformationType: opts.TransformationType,
				SourceVersion:      opts.SourceVersion,
				TargetVersion:      opts.TargetVersion,
				Metadata:           metadata,
			}, actingUser())
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(edge,
				fmt.Sprintf("linked %s -> %s as %s (%s)", edge.SourceID, edge.TargetID, edge.Relation, edge.ID))
		},
	}

	cmd.Flags().StringVar(&opts.Relation, "relation", string(model.RelationDerivedFrom), "relation type")
	cmd.Flags().StringVar(&opts.TransformationType, "transformation", "", "transformation type")
	cmd.Flags().StringVar(&opts.SourceVersion, "source-version", "", "source version identifier")
	cmd.Flags().StringVar(&opts.TargetVersion, "target-version", "", "target version identifier")
	cmd.Flags().StringVar(&opts.Metadata, "metadata", "", "edge metadata as a JSON object")

	return cmd
}

// NewUnlinkCommand creates the unlink command.
func NewUnlinkCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlink <edge-id>",
		Short: "Soft-delete a derivation edge (idempotent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			if err := engine.DeleteEdge(cmd.Context(), args[0], actingUser()); err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(
				map[string]string{"deleted": args[0]},
				fmt.Sprintf("unlinked %s", args[0]))
		},
	}
	return cmd
}
