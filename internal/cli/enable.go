package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/checkin/internal/store"
)

// NewEnableCommand creates the enable command.
func NewEnableCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "enable <site>",
		Short:         "Enable a site for batch runs",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setSiteEnabled(cmd, rootOpts, args[0], true)
		},
	}
}

// NewDisableCommand creates the disable command.
func NewDisableCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "disable <site>",
		Short:         "Disable a site without touching its records",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setSiteEnabled(cmd, rootOpts, args[0], false)
		},
	}
}

func setSiteEnabled(cmd *cobra.Command, rootOpts *RootOptions, siteID string, enabled bool) error {
	rt, err := newRuntime(rootOpts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.Engine.SetEnabled(siteID, enabled) {
		return fmt.Errorf("unknown site %q", siteID)
	}
	if err := store.SetDisabled(cmd.Context(), rt.Backend, siteID, !enabled); err != nil {
		return err
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("%s %s\n", siteID, state)
	return nil
}
