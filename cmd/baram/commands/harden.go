package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHardenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harden",
		Short: "EC2 hardening operations",
	}

	cmd.AddCommand(newHardenIMDSCommand())

	return cmd
}

func newHardenIMDSCommand() *cobra.Command {
	var (
		hopLimit int32
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "imds",
		Short: "Require IMDSv2 session tokens on running instances",
		Long: `Finds running instances that still accept IMDSv1 requests and switches
them to session-token-only metadata access. With --dry-run the affected
instances are listed and nothing is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			comp := rt.compute()
			ids, err := comp.InstancesWithLegacyMetadata(cmd.Context())
			if err != nil {
				return err
			}

			if dryRun {
				return printResult(ids, func() {
					fmt.Printf("%d instances still accept IMDSv1\n", len(ids))
					for _, id := range ids {
						fmt.Println(id)
					}
				})
			}

			if err := comp.RequireSessionTokens(cmd.Context(), ids, hopLimit); err != nil {
				return err
			}
			return printResult(ids, func() {
				fmt.Printf("%d instances hardened\n", len(ids))
			})
		},
	}

	cmd.Flags().Int32Var(&hopLimit, "hop-limit", 1, "metadata response hop limit")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list affected instances without modifying them")
	return cmd
}
