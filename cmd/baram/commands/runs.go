package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the audit log",
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsEventsCommand())

	return cmd
}

func newRunsListCommand() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded teardown and replace runs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			store, err := rt.openStore(cmd.Context())
			if err != nil {
				return err
			}

			runs, err := store.ListRuns(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}

			return printResult(runs, func() {
				for _, run := range runs {
					fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
						run.ID, run.Operation, run.Target, run.Status,
						run.StartedAt.Format("2006-01-02 15:04:05"))
				}
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "runs to skip")
	return cmd
}

func newRunsEventsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events <run-id>",
		Short: "List the events of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close(cmd.Context())

			store, err := rt.openStore(cmd.Context())
			if err != nil {
				return err
			}

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			events, err := store.GetEvents(cmd.Context(), run.ID, limit, 0)
			if err != nil {
				return err
			}

			return printResult(map[string]interface{}{"run": run, "events": events}, func() {
				fmt.Printf("run %s (%s %s): %s\n", run.ID, run.Operation, run.Target, run.Status)
				for _, e := range events {
					fmt.Printf("%s\t%s\t%s\t%s\n",
						e.Timestamp.Format("15:04:05"), e.Level, e.Resource, e.Message)
				}
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum events to list")
	return cmd
}
