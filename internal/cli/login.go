package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <site>",
		Short: "Probe a site's credential without checking in",
		Long: `Verify that the stored credential for a site still works. The probe
is read-only: it never performs the check-in side effect.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			siteID := args[0]
			credential, ok := rt.Credentials[siteID]
			if !ok {
				return fmt.Errorf("no credential configured for site %q", siteID)
			}

			status := rt.Engine.CheckLoginStatus(cmd.Context(), siteID, credential)
			if rootOpts.Format == "json" {
				return printJSON(status)
			}

			if !status.LoggedIn {
				if status.Error != "" {
					return fmt.Errorf("%s: not logged in: %s", siteID, status.Error)
				}
				return fmt.Errorf("%s: not logged in", siteID)
			}

			fmt.Printf("%s: logged in", siteID)
			if len(status.UserInfo) > 0 {
				fmt.Printf(" %v", status.UserInfo)
			}
			fmt.Println()
			return nil
		},
	}
}
