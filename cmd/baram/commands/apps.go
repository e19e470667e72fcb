package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAppsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Inspect Studio apps",
	}

	cmd.AddCommand(newAppsListCommand())

	return cmd
}

func newAppsListCommand() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the apps owned by a profile, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			apps, err := rt.directory().ListChildren(cmd.Context(), profile)
			if err != nil {
				return err
			}

			return printResult(apps, func() {
				for _, app := range apps {
					fmt.Printf("%s\t%s\t%s\n", app.Type, app.Name, app.Status)
				}
			})
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "profile owning the apps")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}
