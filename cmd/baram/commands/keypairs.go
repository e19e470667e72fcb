package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeypairsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keypairs",
		Short: "EC2 key pair hygiene",
	}

	cmd.AddCommand(newKeypairsUnusedCommand())
	cmd.AddCommand(newKeypairsPruneCommand())

	return cmd
}

func newKeypairsUnusedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unused",
		Short: "List key pairs not attached to any instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			unused, err := rt.compute().UnusedKeyPairs(cmd.Context())
			if err != nil {
				return err
			}

			return printResult(unused, func() {
				for _, name := range unused {
					fmt.Println(name)
				}
			})
		},
	}
}

func newKeypairsPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete every key pair not attached to any instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			deleted, err := rt.compute().DeleteUnusedKeyPairs(cmd.Context())
			if err != nil {
				return err
			}

			return printResult(deleted, func() {
				fmt.Printf("%d key pairs deleted\n", len(deleted))
				for _, name := range deleted {
					fmt.Println(name)
				}
			})
		},
	}
}
