package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baram-io/baram/pkg/workspace"
)

func newProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage Studio user profiles",
	}

	cmd.AddCommand(newProfilesListCommand())
	cmd.AddCommand(newProfilesCreateCommand())
	cmd.AddCommand(newProfilesTeardownCommand())
	cmd.AddCommand(newProfilesReplaceCommand())

	return cmd
}

func newProfilesListCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user profiles in the configured domain",
		Example: `  # All profiles
  baram profiles list

  # Profiles whose name contains "team-a"
  baram profiles list --filter team-a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			parents, err := rt.directory().ListParents(cmd.Context(), workspace.ParentFilter{NameContains: filter})
			if err != nil {
				return err
			}

			return printResult(parents, func() {
				for _, p := range parents {
					fmt.Printf("%s\t%s\n", p.Name, p.Status)
				}
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only profiles whose name contains this substring")
	return cmd
}

func newProfilesCreateCommand() *cobra.Command {
	var (
		name           string
		role           string
		securityGroups []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user profile",
		Example: `  baram profiles create --name alice --role arn:aws:iam::123456789012:role/studio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			arn, err := rt.mutator().CreateParent(cmd.Context(), workspace.ParentSpec{
				Name:           name,
				ExecutionRole:  role,
				SecurityGroups: securityGroups,
			})
			if err != nil {
				return err
			}

			return printResult(map[string]string{"arn": arn}, func() {
				fmt.Printf("profile %s created: %s\n", name, arn)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "profile name")
	cmd.Flags().StringVar(&role, "role", "", "execution role ARN")
	cmd.Flags().StringSliceVar(&securityGroups, "security-groups", nil, "security group IDs")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newProfilesTeardownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown <name>",
		Short: "Delete a profile's apps, wait for convergence, then delete the profile",
		Long: `Teardown deletes every app owned by the profile, polls until each app
reaches a terminal status, and only then deletes the profile itself.

If any app is still non-terminal when the polling bound elapses, the
profile delete is refused and the teardown reports blocked. Running the
command again later resumes where the control plane left off.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			result, err := rt.orchestrator().Teardown(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if printErr := printResult(result, func() {
				if result.Outcome != nil {
					fmt.Printf("profile %s: %s (deleted=%d failed=%d pending=%d)\n",
						result.Parent, result.Phase,
						len(result.Outcome.Deleted), len(result.Outcome.Failed), len(result.Outcome.Pending))
				} else {
					fmt.Printf("profile %s: %s\n", result.Parent, result.Phase)
				}
			}); printErr != nil {
				return printErr
			}

			if result.Blocked() {
				return workspace.NewConvergenceError(result.Parent, len(result.Outcome.Pending))
			}
			return nil
		},
	}
	return cmd
}

func newProfilesReplaceCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "replace [name]",
		Short: "Tear down and recreate profiles, preserving their settings",
		Long: `Replace snapshots a profile's settings, tears it down, waits for the
profile to disappear, and recreates an equivalent profile under the same
name. Without a name argument every profile matching --filter is
replaced; per-profile failures never stop the rest of the batch.`,
		Example: `  # Replace one profile
  baram profiles replace alice

  # Replace every profile whose name contains "team-a"
  baram profiles replace --filter team-a`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			coord := rt.coordinator()

			if len(args) == 1 {
				result := coord.Replace(cmd.Context(), args[0])
				if printErr := printResult(result, func() {
					printReplaceLine(result)
				}); printErr != nil {
					return printErr
				}
				if result.Status != workspace.ReplaceStatusReplaced {
					return fmt.Errorf("replace ended %s", result.Status)
				}
				return nil
			}

			report, err := coord.ReplaceAll(cmd.Context(), workspace.ParentFilter{NameContains: filter})
			if err != nil {
				return err
			}
			if printErr := printResult(report, func() {
				for _, result := range report {
					printReplaceLine(result)
				}
			}); printErr != nil {
				return printErr
			}

			failed := 0
			for _, result := range report {
				if result.Status != workspace.ReplaceStatusReplaced {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d profiles not replaced", failed, len(report))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only profiles whose name contains this substring")
	return cmd
}

func printReplaceLine(result workspace.ReplaceResult) {
	if result.Err != nil {
		fmt.Printf("%s\t%s\t%v\n", result.Parent, result.Status, result.Err)
		return
	}
	fmt.Printf("%s\t%s\n", result.Parent, result.Status)
}
