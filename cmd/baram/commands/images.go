package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Manage custom Studio images",
	}

	cmd.AddCommand(newImagesDescribeCommand())
	cmd.AddCommand(newImagesCreateVersionCommand())
	cmd.AddCommand(newImagesDeleteCommand())

	return cmd
}

func newImagesDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Describe an image and its latest version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			images := rt.images()
			image, found, err := images.Describe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("image %s not found", args[0])
			}

			version, hasVersion, err := images.DescribeVersion(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := map[string]interface{}{"image": image}
			if hasVersion {
				out["latest_version"] = version
			}
			return printResult(out, func() {
				fmt.Printf("%s\t%s\t%s\n", image.Name, image.Status, image.ARN)
				if hasVersion {
					fmt.Printf("latest version %d\t%s\t%s\n", version.Version, version.Status, version.ARN)
				}
			})
		},
	}
}

func newImagesCreateVersionCommand() *cobra.Command {
	var baseImage string

	cmd := &cobra.Command{
		Use:   "create-version <name>",
		Short: "Register a new image version from a container image URI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			arn, err := rt.images().CreateVersion(cmd.Context(), args[0], baseImage)
			if err != nil {
				return err
			}

			return printResult(map[string]string{"arn": arn}, func() {
				fmt.Printf("image version created: %s\n", arn)
			})
		},
	}

	cmd.Flags().StringVar(&baseImage, "base", "", "container image URI (ECR)")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

func newImagesDeleteCommand() *cobra.Command {
	var version int32

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an image, or one version with --version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			images := rt.images()
			if version > 0 {
				if err := images.DeleteVersion(cmd.Context(), args[0], version); err != nil {
					return err
				}
				return printResult(map[string]interface{}{"image": args[0], "version": version, "status": "deleted"}, func() {
					fmt.Printf("image %s version %d deleted\n", args[0], version)
				})
			}

			if err := images.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printResult(map[string]string{"image": args[0], "status": "deleted"}, func() {
				fmt.Printf("image %s deleted\n", args[0])
			})
		},
	}

	cmd.Flags().Int32Var(&version, "version", 0, "delete only this version")
	return cmd
}
