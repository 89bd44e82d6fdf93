package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [site]",
		Short: "Check in now, for one site or for all",
		Long: `Run check-ins immediately. With a site ID argument only that site
runs; without one every enabled site with a credential runs in order.

Example:
  checkin run
  checkin run bilibili --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()

			if len(args) == 1 {
				siteID := args[0]
				credential, ok := rt.Credentials[siteID]
				if !ok {
					return fmt.Errorf("no credential configured for site %q", siteID)
				}

				result, err := rt.Engine.CheckinSite(ctx, siteID, credential)
				if err != nil {
					return err
				}

				if rootOpts.Format == "json" {
					return printJSON(result)
				}
				fmt.Printf("%s  %s  %s\n", statusMark(result.Success, result.Skipped), siteID, result.Message)
				if !result.Success {
					return fmt.Errorf("check-in failed for %s", siteID)
				}
				return nil
			}

			report, err := rt.Engine.CheckinAll(ctx, rt.Credentials)
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return printJSON(report)
			}
			for _, detail := range report.Details {
				fmt.Printf("%s  %-10s  %s\n", statusMark(detail.Success, detail.Skipped), detail.SiteID, detail.Message)
			}
			fmt.Printf("\n%d sites: %d ok, %d failed, %d skipped\n",
				report.Summary.Total, report.Summary.Success, report.Summary.Failed, report.Summary.Skipped)
			if report.Summary.Failed > 0 {
				return fmt.Errorf("%d site(s) failed", report.Summary.Failed)
			}
			return nil
		},
	}

	return cmd
}

func statusMark(success, skipped bool) string {
	switch {
	case skipped:
		return "⏭"
	case success:
		return "✅"
	default:
		return "❌"
	}
}
