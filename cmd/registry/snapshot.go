package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage flow snapshots",
	}
	cmd.AddCommand(
		newSnapshotCreateCmd(opts),
		newSnapshotListCmd(opts),
		newSnapshotLatestCmd(opts),
		newSnapshotDeleteCmd(opts),
	)
	return cmd
}

func newSnapshotCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		flowID    string
		version   int
		createdBy string
		comments  string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new snapshot of a flow",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			if version == 0 {
				latest, err := rt.service.GetLatestSnapshot(ctx, flowID)
				switch {
				case err == nil:
					version = latest.Version + 1
				case errors.Is(err, store.ErrSnapshotNotFound):
					version = 1
				default:
					return err
				}
			}
			snap, err := rt.service.CreateSnapshot(ctx, &domain.FlowSnapshot{
				FlowID:    flowID,
				Version:   version,
				CreatedBy: createdBy,
				Comments:  comments,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, snap)
		}),
	}
	cmd.Flags().StringVar(&flowID, "flow", "", "flow id (required)")
	cmd.Flags().IntVar(&version, "version", 0, "snapshot version (default: one past the latest)")
	cmd.Flags().StringVar(&createdBy, "author", "", "identity recorded as the snapshot author (required)")
	cmd.Flags().StringVar(&comments, "comments", "", "snapshot comments")
	_ = cmd.MarkFlagRequired("flow")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newSnapshotListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <flow-id>",
		Short: "List the snapshots of a flow, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			snaps, err := rt.service.ListSnapshots(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, snaps)
		}),
	}
}

func newSnapshotLatestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest <flow-id>",
		Short: "Show the latest snapshot of a flow",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			snap, err := rt.service.GetLatestSnapshot(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, snap)
		}),
	}
}

func newSnapshotDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flow-id> <version>",
		Short: "Delete one snapshot of a flow",
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			version, err := cast.ToIntE(args[1])
			if err != nil {
				return fmt.Errorf("invalid snapshot version %q: %w", args[1], err)
			}
			if err := rt.service.DeleteSnapshot(ctx, args[0], version); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted snapshot %s@%d\n", args[0], version)
			return err
		}),
	}
}
