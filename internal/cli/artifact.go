package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lineage/internal/graph"
	"github.com/roach88/lineage/internal/model"
)

// ArtifactOptions holds flags for artifact subcommands.
type ArtifactOptions struct {
	*RootOptions
	Type        string
	Name        string
	Description string
	Owner       string
	Org         string
	Status      string
	Metadata    string // JSON object
}

// NewArtifactCommand creates the artifact command group.
func NewArtifactCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Create, inspect, update, and delete artifacts",
	}

	cmd.AddCommand(newArtifactCreateCommand(rootOpts))
	cmd.AddCommand(newArtifactShowCommand(rootOpts))
	cmd.AddCommand(newArtifactUpdateCommand(rootOpts))
	cmd.AddCommand(newArtifactDeleteCommand(rootOpts))

	return cmd
}

func newArtifactCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArtifactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new artifact (status starts at draft)",
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

			artifact, err := engine.CreateArtifact(cmd.Context(), graph.CreateArtifactInput{
				Type:        model.ArtifactType(opts.Type),
				Name:        opts.Name,
				Description: opts.Description,
				OwnerID:     opts.Owner,
				OrgID:       opts.Org,
				Metadata:    metadata,
			}, actingUser())
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(artifact,
				fmt.Sprintf("created %s %q (%s)", artifact.Type, artifact.Name, artifact.ID))
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "artifact type (dataset, analysis, figure, ...)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "artifact name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "artifact description")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owning user id")
	cmd.Flags().StringVar(&opts.Org, "org", "", "organization id")
	cmd.Flags().StringVar(&opts.Metadata, "metadata", "", "metadata as a JSON object")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("owner")

	return cmd
}

func newArtifactShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <artifact-id>",
		Short: "Show a single artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			artifact, err := engine.GetArtifact(cmd.Context(), args[0])
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(artifact, renderArtifact(artifact))
		},
	}
	return cmd
}

func newArtifactUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArtifactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <artifact-id>",
		Short: "Update artifact fields (only supplied flags change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := graph.UpdateArtifactInput{}
			if cmd.Flags().Changed("name") {
				input.Name = &opts.Name
			}
			if cmd.Flags().Changed("description") {
				input.Description = &opts.Description
			}
			if cmd.Flags().Changed("status") {
				status := model.ArtifactStatus(opts.Status)
				input.Status = &status
			}
			if cmd.Flags().Changed("metadata") {
				metadata, err := parseMetadataFlag(opts.Metadata)
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: "invalid --metadata", Err: err}
				}
				input.Metadata = metadata
			}

			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			artifact, err := engine.UpdateArtifact(cmd.Context(), args[0], input, actingUser())
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(artifact,
				fmt.Sprintf("updated %q (%s)", artifact.Name, artifact.ID))
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "new description")
	cmd.Flags().StringVar(&opts.Status, "status", "", "new status (draft, active, review, approved, archived)")
	cmd.Flags().StringVar(&opts.Metadata, "metadata", "", "replacement metadata as a JSON object")

	return cmd
}

func newArtifactDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <artifact-id>",
		Short: "Soft-delete an artifact (edges are kept but excluded from traversal)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			if err := engine.SoftDeleteArtifact(cmd.Context(), args[0], actingUser()); err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(
				map[string]string{"deleted": args[0]},
				fmt.Sprintf("deleted %s", args[0]))
		},
	}
	return cmd
}

func parseMetadataFlag(raw string) (model.Metadata, error) {
	if raw == "" {
		return nil, nil
	}
	return model.UnmarshalMetadata(raw)
}

func renderArtifact(a *model.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", a.ID, a.Name)
	fmt.Fprintf(&b, "  type: %s  status: %s  owner: %s\n", a.Type, a.Status, a.OwnerID)
	if a.Description != "" {
		fmt.Fprintf(&b, "  description: %s\n", a.Description)
	}
	if len(a.Metadata) > 0 {
		data, _ := json.Marshal(a.Metadata)
		fmt.Fprintf(&b, "  metadata: %s\n", data)
	}
	fmt.Fprintf(&b, "  created: %s  updated: %s", a.CreatedAt.Format("2006-01-02 15:04:05"), a.UpdatedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}
