package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kupovina",
		Short:        "Shared shopping list server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the server (configuration comes from KUPOVINA_* variables)
  kupovina serve

  # Produce a bcrypt hash for users.yaml
  echo -n 'secret' | kupovina hash-password
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
