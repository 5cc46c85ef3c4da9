package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/kupovina/internal/app"
	"github.com/MrSnakeDoc/kupovina/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until SIGINT/SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load())
			if err != nil {
				return err
			}
			return a.Run()
		},
	}
}
