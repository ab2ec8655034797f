package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an image",
		Long:  "Upload a local image file and print its server-relative path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			path, err := client.Images().Upload(cmd.Context(), ghost.UploadInput{
				Path: args[0],
				Name: name,
			})
			if err != nil {
				return fmt.Errorf("uploading %s: %w", args[0], err)
			}

			fmt.Println(path)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "file name to report to the server")

	return cmd
}
