package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/spf13/cobra"
)

func newExtensionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extension",
		Short: "Query the extensions provided by bundle versions",
	}
	cmd.AddCommand(
		newExtensionCreateCmd(opts),
		newExtensionListCmd(opts),
		newExtensionGetCmd(opts),
		newExtensionTagsCmd(opts),
		newExtensionDeleteCmd(opts),
	)
	return cmd
}

func newExtensionCreateCmd(opts *rootOptions) *cobra.Command {
	var e domain.Extension
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an extension to a bundle version",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			created, err := rt.service.CreateExtension(ctx, &e)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, created)
		}),
	}
	cmd.Flags().StringVar(&e.ExtensionBundleVersionID, "bundle-version", "", "bundle version id (required)")
	cmd.Flags().StringVar(&e.Type, "type", "", "fully qualified extension type (required)")
	cmd.Flags().StringVar(&e.TypeDescription, "description", "", "extension description")
	cmd.Flags().StringVar(&e.Category, "category", "", "extension category, e.g. PROCESSOR")
	cmd.Flags().BoolVar(&e.Restricted, "restricted", false, "mark the extension as restricted")
	cmd.Flags().StringSliceVar(&e.Tags, "tag", nil, "extension tag (repeatable)")
	_ = cmd.MarkFlagRequired("bundle-version")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newExtensionListCmd(opts *rootOptions) *cobra.Command {
	var (
		tag, versionID, category string
		coord                    coordinateFlags
		version                  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List extensions, optionally by tag, category or bundle version",
		Long: "List extensions. At most one selector may be given: --tag, --category, --bundle-version,\n" +
			"or a bundle coordinate made of --bucket, --group, --artifact and --version.",
		Args: cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			byCoordinate := coord.set() || version != ""
			selectors := 0
			for _, on := range []bool{tag != "", category != "", versionID != "", byCoordinate} {
				if on {
					selectors++
				}
			}
			if selectors > 1 {
				return fmt.Errorf("--tag, --category, --bundle-version and a bundle coordinate cannot be combined")
			}
			var (
				exts []*domain.Extension
				err  error
			)
			switch {
			case tag != "":
				exts, err = rt.service.ListExtensionsByTag(ctx, tag)
			case category != "":
				exts, err = rt.service.ListExtensionsByCategory(ctx, category)
			case versionID != "":
				exts, err = rt.service.ListExtensionsByBundleVersion(ctx, versionID)
			case byCoordinate:
				if err := coord.complete(); err != nil {
					return err
				}
				if version == "" {
					return fmt.Errorf("--version is required with a bundle coordinate")
				}
				exts, err = rt.service.ListExtensionsByBundleCoordinate(ctx, coord.bucketID, coord.groupID, coord.artifactID, version)
			default:
				exts, err = rt.service.ListExtensions(ctx)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, exts)
		}),
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only list extensions with this tag")
	cmd.Flags().StringVar(&category, "category", "", "only list extensions in this category")
	cmd.Flags().StringVar(&versionID, "bundle-version", "", "only list extensions of this bundle version id")
	coord.register(cmd)
	cmd.Flags().StringVar(&version, "version", "", "bundle version string of the coordinate")
	return cmd
}

func newExtensionGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <extension-id>",
		Short: "Show an extension",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			ext, err := rt.service.GetExtension(ctx, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, ext)
		}),
	}
}

func newExtensionTagsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List every extension tag in use",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, _ []string) error {
			tags, err := rt.service.ListTags(ctx)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, tags)
		}),
	}
}

func newExtensionDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <extension-id>",
		Short: "Delete an extension and its tags",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if err := rt.service.DeleteExtension(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted extension %s\n", args[0])
			return err
		}),
	}
}
