package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
	"github.com/spf13/cobra"
)

func newBundleCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Manage extension bundles and their versions",
	}
	cmd.AddCommand(
		newBundleCreateCmd(opts),
		newBundleListCmd(opts),
		newBundleGetCmd(opts),
		newBundleFilterCmd(opts),
		newBundleDeleteCmd(opts),
		newBundleVersionCmd(opts),
	)
	return cmd
}

func newBundleCreateCmd(opts *rootOptions) *cobra.Command {
	var bucketID, groupID, artifactID, bundleType, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an extension bundle in a bucket",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			b, err := rt.service.CreateBundle(ctx, &domain.ExtensionBundle{
				BucketItem: domain.BucketItem{
					Name:        groupID + ":" + artifactID,
					Description: description,
					BucketID:    bucketID,
				},
				BundleType: domain.BundleType(bundleType),
				GroupID:    groupID,
				ArtifactID: artifactID,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, b)
		}),
	}
	cmd.Flags().StringVar(&bucketID, "bucket", "", "owning bucket id (required)")
	cmd.Flags().StringVar(&groupID, "group", "", "bundle group id (required)")
	cmd.Flags().StringVar(&artifactID, "artifact", "", "bundle artifact id (required)")
	cmd.Flags().StringVar(&bundleType, "type", string(domain.BundleTypeNiFiNar), "bundle type: NIFI_NAR or MINIFI_CPP")
	cmd.Flags().StringVar(&description, "description", "", "bundle description")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}

func newBundleListCmd(opts *rootOptions) *cobra.Command {
	var bucketID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the extension bundles of a bucket",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			bundles, err := rt.service.ListBundles(ctx, bucketID)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, bundles)
		}),
	}
	cmd.Flags().StringVar(&bucketID, "bucket", "", "bucket id (required)")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}

func newBundleGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <bundle-id>",
		Short: "Show an extension bundle",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			b, err := rt.service.GetBundle(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, b)
		}),
	}
}

func newBundleFilterCmd(opts *rootOptions) *cobra.Command {
	var filter sqlstore.BundleFilter
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Find bundles across buckets by group and artifact pattern",
		Long:  "Find bundles in the given buckets. --group and --artifact are SQL LIKE patterns, e.g. org.apache.%.",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			bundles, err := rt.service.FilterBundles(ctx, filter)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, bundles)
		}),
	}
	cmd.Flags().StringSliceVar(&filter.BucketIDs, "bucket", nil, "bucket ids to search (required, repeatable)")
	cmd.Flags().StringVar(&filter.GroupID, "group", "", "group id pattern")
	cmd.Flags().StringVar(&filter.ArtifactID, "artifact", "", "artifact id pattern")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}

func newBundleDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <bundle-id>",
		Short: "Delete an extension bundle with all of its versions",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if err := rt.service.DeleteBundle(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted bundle %s\n", args[0])
			return err
		}),
	}
}

func newBundleVersionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Manage the versions of an extension bundle",
	}
	cmd.AddCommand(
		newBundleVersionCreateCmd(opts),
		newBundleVersionListCmd(opts),
		newBundleVersionGetCmd(opts),
		newBundleVersionFilterCmd(opts),
		newBundleVersionDeleteCmd(opts),
	)
	return cmd
}

func newBundleVersionCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		v          domain.ExtensionBundleVersion
		extensions []string
		tags       []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a released bundle version and the extensions it provides",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			v.SHA256Supplied = true
			exts := make([]*domain.Extension, 0, len(extensions))
			for _, typ := range extensions {
				exts = append(exts, &domain.Extension{Type: typ, Tags: append([]string(nil), tags...)})
			}
			created, err := rt.service.CreateBundleVersion(ctx, &v, exts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, created)
		}),
	}
	cmd.Flags().StringVar(&v.ExtensionBundleID, "bundle", "", "bundle id (required)")
	cmd.Flags().StringVar(&v.Version, "version", "", "version string (required)")
	cmd.Flags().StringVar(&v.CreatedBy, "author", "", "identity recorded as the publisher (required)")
	cmd.Flags().StringVar(&v.Description, "description", "", "version description")
	cmd.Flags().StringVar(&v.SHA256Hex, "sha256", "", "hex SHA-256 of the bundle content (required)")
	cmd.Flags().Int64Var(&v.ContentSize, "size", 0, "bundle content size in bytes")
	cmd.Flags().StringSliceVar(&extensions, "extension", nil, "fully qualified extension type (repeatable)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag applied to every extension (repeatable)")
	for _, f := range []string{"bundle", "version", "author", "sha256"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// coordinateFlags names a bundle by bucket, group and artifact instead of id.
type coordinateFlags struct {
	bucketID   string
	groupID    string
	artifactID string
}

func (c *coordinateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.bucketID, "bucket", "", "bucket id of the bundle")
	cmd.Flags().StringVar(&c.groupID, "group", "", "bundle group id")
	cmd.Flags().StringVar(&c.artifactID, "artifact", "", "bundle artifact id")
}

func (c *coordinateFlags) set() bool {
	return c.bucketID != "" || c.groupID != "" || c.artifactID != ""
}

func (c *coordinateFlags) complete() error {
	if c.bucketID == "" || c.groupID == "" || c.artifactID == "" {
		return fmt.Errorf("--bucket, --group and --artifact must be given together")
	}
	return nil
}

func newBundleVersionListCmd(opts *rootOptions) *cobra.Command {
	var (
		coord   coordinateFlags
		version string
		global  bool
	)
	cmd := &cobra.Command{
		Use:   "list [bundle-id]",
		Short: "List the versions of a bundle",
		Long: "List the versions of a bundle given by id or by --bucket, --group and --artifact.\n" +
			"With --global, list the versions matching --group, --artifact and --version in every bucket.",
		Args: cobra.MaximumNArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			var (
				versions []*domain.ExtensionBundleVersion
				err      error
			)
			switch {
			case global:
				if len(args) > 0 || coord.bucketID != "" {
					return fmt.Errorf("--global cannot be combined with a bundle id or --bucket")
				}
				if coord.groupID == "" || coord.artifactID == "" || version == "" {
					return fmt.Errorf("--global requires --group, --artifact and --version")
				}
				versions, err = rt.service.ListBundleVersionsGlobal(ctx, coord.groupID, coord.artifactID, version)
			case len(args) == 1:
				if coord.set() {
					return fmt.Errorf("a bundle id cannot be combined with --bucket, --group or --artifact")
				}
				versions, err = rt.service.ListBundleVersions(ctx, args[0])
			default:
				if err := coord.complete(); err != nil {
					return err
				}
				versions, err = rt.service.ListBundleVersionsByCoordinate(ctx, coord.bucketID, coord.groupID, coord.artifactID)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, versions)
		}),
	}
	coord.register(cmd)
	cmd.Flags().StringVar(&version, "version", "", "version string, used with --global")
	cmd.Flags().BoolVar(&global, "global", false, "search every bucket")
	return cmd
}

func newBundleVersionGetCmd(opts *rootOptions) *cobra.Command {
	var coord coordinateFlags
	cmd := &cobra.Command{
		Use:   "get [bundle-id] <version>",
		Short: "Show one version of a bundle with its dependencies",
		Long:  "Show one version of a bundle given by id or by --bucket, --group and --artifact.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			var (
				v   *domain.ExtensionBundleVersion
				err error
			)
			if len(args) == 2 {
				if coord.set() {
					return fmt.Errorf("a bundle id cannot be combined with --bucket, --group or --artifact")
				}
				v, err = rt.service.GetBundleVersionByVersion(ctx, args[0], args[1])
			} else {
				if err := coord.complete(); err != nil {
					return err
				}
				v, err = rt.service.GetBundleVersionByCoordinate(ctx, coord.bucketID, coord.groupID, coord.artifactID, args[0])
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, v)
		}),
	}
	coord.register(cmd)
	return cmd
}

func newBundleVersionFilterCmd(opts *rootOptions) *cobra.Command {
	var filter sqlstore.BundleVersionFilter
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Find bundle versions across buckets by group, artifact and version pattern",
		Long:  "Find bundle versions in the given buckets. --group, --artifact and --version are SQL LIKE patterns.",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			versions, err := rt.service.FilterBundleVersions(ctx, filter)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, versions)
		}),
	}
	cmd.Flags().StringSliceVar(&filter.BucketIDs, "bucket", nil, "bucket ids to search (required, repeatable)")
	cmd.Flags().StringVar(&filter.GroupID, "group", "", "group id pattern")
	cmd.Flags().StringVar(&filter.ArtifactID, "artifact", "", "artifact id pattern")
	cmd.Flags().StringVar(&filter.Version, "version", "", "version pattern")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}

func newBundleVersionDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <version-id>",
		Short: "Delete a bundle version and its extensions",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if err := rt.service.DeleteBundleVersion(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted bundle version %s\n", args[0])
			return err
		}),
	}
}
