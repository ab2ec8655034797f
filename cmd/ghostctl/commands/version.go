package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the ghostctl version and, when a server is configured, the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ghostctl version %s (commit: %s, built: %s)\n", version, commit, date)

			client, err := createClient(cmd.Context())
			if err != nil {
				// No configured server is fine for the version command.
				return nil
			}

			serverVersion, err := client.Version(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Could not resolve server version: %v\n", err)

				return nil
			}

			fmt.Printf("server version %s\n", serverVersion)

			return nil
		},
	}
}
