package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status",
		Short:         "Show per-site streaks and counters",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.Engine.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return printJSON(stats)
			}

			fmt.Printf("%d sites registered, %d active\n\n", stats.TotalSites, stats.ActiveSites)
			if len(stats.Sites) == 0 {
				fmt.Println("no check-ins recorded yet")
				return nil
			}
			for id, s := range stats.Sites {
				fmt.Printf("%-10s  %-14s  streak %-3d  total %-4d  last %s\n",
					id, s.Name, s.Streak, s.TotalCheckins, s.LastCheckin)
			}
			return nil
		},
	}
}
