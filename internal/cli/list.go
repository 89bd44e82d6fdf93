package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List registered sites and their flags",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			sites := rt.Engine.ListSites()
			if rootOpts.Format == "json" {
				return printJSON(sites)
			}

			for _, s := range sites {
				state := "enabled"
				if !s.Enabled {
					state = "disabled"
				}
				credential := "no credential"
				if _, ok := rt.Credentials[s.ID]; ok {
					credential = "credential set"
				}
				fmt.Printf("%-10s  %-14s  %-8s  %s\n", s.ID, s.Name, state, credential)
			}
			return nil
		},
	}
}
