package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect users",
		Long:  "List and inspect the users of a Ghost installation",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			params := ghost.NewListParams()
			if limit > 0 {
				params = params.WithLimit(limit)
			}

			page, err := client.Users().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("listing users: %w", err)
			}

			output := viper.GetString("output")
			if output != OutputFormatTable {
				return renderStructured(page.Records, output)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("ID", "Name", "Slug", "Email")

			for _, record := range page.Records {
				_ = table.Append(record.ID(), recordField(record, "name"),
					recordField(record, "slug"), recordField(record, "email"))
			}

			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "page size")

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	var bySlug bool

	cmd := &cobra.Command{
		Use:   "get ID_OR_SLUG",
		Short: "Get user details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			var record ghost.Record
			if bySlug {
				record, err = client.Users().GetBySlug(cmd.Context(), args[0], nil)
			} else {
				record, err = client.Users().Get(cmd.Context(), args[0], nil)
			}

			if err != nil {
				return fmt.Errorf("fetching user: %w", err)
			}

			output := viper.GetString("output")
			if output != OutputFormatTable {
				return renderStructured(record, output)
			}

			renderRecordTable(record, "name", "slug", "email", "bio")

			return nil
		},
	}

	cmd.Flags().BoolVar(&bySlug, "slug", false, "treat the argument as a slug")

	return cmd
}
