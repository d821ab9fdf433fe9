package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lineage/internal/model"
)

// AuditOptions holds flags for audit subcommands.
type AuditOptions struct {
	*RootOptions
	Limit int
}

// NewAuditCommand creates the audit command group.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and verify the audit chain",
	}

	cmd.AddCommand(newAuditLogCommand(rootOpts))
	cmd.AddCommand(newAuditVerifyCommand(rootOpts))

	return cmd
}

func newAuditLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <artifact-id>",
		Short: "Show the audit trail for an artifact, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			entries, err := engine.AuditTrail(cmd.Context(), args[0], opts.Limit)
			if err != nil {
				return engineError(err)
			}

			return formatter(rootOpts, cmd.OutOrStdout()).Success(entries, renderEntries(entries))
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show (0 = all)")

	return cmd
}

func newAuditVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the integrity of the whole audit hash chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closer, err := openEngine(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open engine", Err: err}
			}
			defer closer()

			report, err := engine.VerifyAuditChain(cmd.Context())
			if err != nil {
				return engineError(err)
			}

			text := fmt.Sprintf("chain OK: %d entries verified", report.Entries)
			if !report.Valid {
				text = fmt.Sprintf("chain BROKEN at seq %d: %s", report.BrokenSeq, report.Reason)
			}
			if err := formatter(rootOpts, cmd.OutOrStdout()).Success(report, text); err != nil {
				return err
			}
			if !report.Valid {
				return &ExitError{Code: ExitFailure, Message: "audit chain verification failed"}
			}
			return nil
		},
	}
	return cmd
}

func renderEntries(entries []model.AuditEntry) string {
	if len(entries) == 0 {
		return "no audit entries"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "#%d %s %s [%s] by %s at %s\n",
			e.Seq, shortID(e.ID), e.Action, e.Category, e.ActorID,
			e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
