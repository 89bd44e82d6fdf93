package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/checkin/internal/app"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily scheduler",
		Long: `Start the long-running service: the HTTP API plus the daily batch
scheduler. Configuration comes from CHECKIN_* environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New().Run()
		},
	}
}
