package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/spf13/cobra"
)

func newFlowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Manage versioned flows",
	}
	cmd.AddCommand(
		newFlowCreateCmd(opts),
		newFlowListCmd(opts),
		newFlowGetCmd(opts),
		newFlowUpdateCmd(opts),
		newFlowDeleteCmd(opts),
	)
	return cmd
}

func newFlowCreateCmd(opts *rootOptions) *cobra.Command {
	var bucketID, name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a flow in a bucket",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			f, err := rt.service.CreateFlow(ctx, domain.NewFlow(bucketID, name, description))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, f)
		}),
	}
	cmd.Flags().StringVar(&bucketID, "bucket", "", "owning bucket id (required)")
	cmd.Flags().StringVar(&name, "name", "", "flow name (required)")
	cmd.Flags().StringVar(&description, "description", "", "flow description")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newFlowListCmd(opts *rootOptions) *cobra.Command {
	var bucketID, name string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the flows of a bucket with their snapshot counts",
		Long:  "List the flows of a bucket. With --name and no --bucket, list the flows with that name in every bucket.",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			var (
				flows []*domain.Flow
				err   error
			)
			switch {
			case bucketID != "" && name != "":
				flows, err = rt.service.GetFlowsByName(ctx, bucketID, name)
			case bucketID != "":
				flows, err = rt.service.ListFlows(ctx, bucketID)
			case name != "":
				flows, err = rt.service.GetFlowsByNameGlobal(ctx, name)
			default:
				return fmt.Errorf("--bucket or --name is required")
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, flows)
		}),
	}
	cmd.Flags().StringVar(&bucketID, "bucket", "", "bucket id")
	cmd.Flags().StringVar(&name, "name", "", "only list flows with this name")
	return cmd
}

func newFlowGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <flow-id>",
		Short: "Show a flow",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			f, err := rt.service.GetFlow(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, f)
		}),
	}
}

func newFlowUpdateCmd(opts *rootOptions) *cobra.Command {
	var name, description string
	var checkModified bool
	cmd := &cobra.Command{
		Use:   "update <flow-id>",
		Short: "Rename a flow or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			f, err := rt.service.GetFlow(ctx, args[0])
			if err != nil {
				return err
			}
			lastModified := f.Modified
			if cmd.Flags().Changed("name") {
				f.Name = name
			}
			if cmd.Flags().Changed("description") {
				f.Description = description
			}

			var updated *domain.Flow
			if checkModified {
				updated, err = rt.service.UpdateFlowIfUnmodified(ctx, f, lastModified)
			} else {
				updated, err = rt.service.UpdateFlow(ctx, f)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, updated)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new flow name")
	cmd.Flags().StringVar(&description, "description", "", "new flow description")
	cmd.Flags().BoolVar(&checkModified, "check-modified", true, "fail if the flow changed after it was read")
	return cmd
}

func newFlowDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flow-id>",
		Short: "Delete a flow and its snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if err := rt.service.DeleteFlow(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted flow %s\n", args[0])
			return err
		}),
	}
}
