package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/spf13/cobra"
)

func newBucketCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Manage buckets",
	}
	cmd.AddCommand(
		newBucketCreateCmd(opts),
		newBucketListCmd(opts),
		newBucketGetCmd(opts),
		newBucketUpdateCmd(opts),
		newBucketDeleteCmd(opts),
		newBucketItemsCmd(opts),
	)
	return cmd
}

func newBucketCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		name          string
		description   string
		allowRedeploy bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bucket",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			b, err := rt.service.CreateBucket(ctx, &domain.Bucket{
				Name:                         name,
				Description:                  description,
				AllowExtensionBundleRedeploy: domain.Bool(allowRedeploy),
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, b)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "bucket name (required)")
	cmd.Flags().StringVar(&description, "description", "", "bucket description")
	cmd.Flags().BoolVar(&allowRedeploy, "allow-redeploy", false, "allow extension bundle versions to be redeployed")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBucketListCmd(opts *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets ordered by name",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			var (
				buckets []*domain.Bucket
				err     error
			)
			if name != "" {
				buckets, err = rt.service.GetBucketsByName(ctx, name)
			} else {
				buckets, err = rt.service.ListBuckets(ctx)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, buckets)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "only list the bucket with this name")
	return cmd
}

func newBucketGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <bucket-id>",
		Short: "Show a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			b, err := rt.service.GetBucket(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, b)
		}),
	}
}

func newBucketUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		name          string
		description   string
		allowRedeploy bool
	)
	cmd := &cobra.Command{
		Use:   "update <bucket-id>",
		Short: "Update the name, description or redeploy policy of a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			b := &domain.Bucket{ID: args[0], Name: name, Description: description}
			if cmd.Flags().Changed("allow-redeploy") {
				b.AllowExtensionBundleRedeploy = domain.Bool(allowRedeploy)
			}
			updated, err := rt.service.UpdateBucket(ctx, b)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, updated)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new bucket name")
	cmd.Flags().StringVar(&description, "description", "", "new bucket description")
	cmd.Flags().BoolVar(&allowRedeploy, "allow-redeploy", false, "allow extension bundle versions to be redeployed")
	return cmd
}

func newBucketDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <bucket-id>",
		Short: "Delete a bucket with all of its flows and bundles",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if err := rt.service.DeleteBucket(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted bucket %s\n", args[0])
			return err
		}),
	}
}

func newBucketItemsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "items <bucket-id>...",
		Short: "List the flows and bundles stored in one or more buckets",
		Args:  cobra.MinimumNArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			var (
				items []domain.Item
				err   error
			)
			if len(args) == 1 {
				items, err = rt.service.ListBucketItems(ctx, args[0])
			} else {
				items, err = rt.service.ListItemsInBuckets(ctx, args)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, items)
		}),
	}
}
