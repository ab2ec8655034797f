package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// NewTagsCommand creates the tags command group.
func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
		Long:  "List, inspect, create, update, and delete tags",
	}

	cmd.AddCommand(newTagsListCommand())
	cmd.AddCommand(newTagsGetCommand())
	cmd.AddCommand(newTagsCreateCommand())
	cmd.AddCommand(newTagsUpdateCommand())
	cmd.AddCommand(newTagsDeleteCommand())

	return cmd
}

func newTagsListCommand() *cobra.Command {
	var (
		limit    int
		allPages bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			params := ghost.NewListParams()
			if limit > 0 {
				params = params.WithLimit(limit)
			}

			firstPage, err := client.Tags().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("listing tags: %w", err)
			}

			records := firstPage.Records
			if allPages {
				records, err = collectAllPages(cmd.Context(), firstPage)
				if err != nil {
					return err
				}
			}

			output := viper.GetString("output")
			if output != OutputFormatTable {
				return renderStructured(records, output)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("ID", "Name", "Slug")

			for _, record := range records {
				_ = table.Append(record.ID(), recordField(record, "name"), recordField(record, "slug"))
			}

			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "page size")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func newTagsGetCommand() *cobra.Command {
	var bySlug bool

	cmd := &cobra.Command{
		Use:   "get ID_OR_SLUG",
		Short: "Get tag details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			var record ghost.Record
			if bySlug {
				record, err = client.Tags().GetBySlug(cmd.Context(), args[0], nil)
			} else {
				record, err = client.Tags().Get(cmd.Context(), args[0], nil)
			}

			if err != nil {
				return fmt.Errorf("fetching tag: %w", err)
			}

			output := viper.GetString("output")
			if output != OutputFormatTable {
				return renderStructured(record, output)
			}

			renderRecordTable(record, "name", "slug", "description")

			return nil
		},
	}

	cmd.Flags().BoolVar(&bySlug, "slug", false, "treat the argument as a slug")

	return cmd
}

func newTagsCreateCommand() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return ErrNameRequired
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			fields := ghost.Record{"name": name}
			if description != "" {
				fields["description"] = description
			}

			record, err := client.Tags().Create(cmd.Context(), fields)
			if err != nil {
				return fmt.Errorf("creating tag: %w", err)
			}

			fmt.Printf("Created tag %s (%s)\n", record.Name(), record.ID())

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "tag name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "tag description")

	return cmd
}

func newTagsUpdateCommand() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := ghost.Record{}

			if name != "" {
				fields["name"] = name
			}

			if description != "" {
				fields["description"] = description
			}

			if len(fields) == 0 {
				return ErrNoFieldsToUpdate
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := client.Tags().Update(cmd.Context(), args[0], fields)
			if err != nil {
				return fmt.Errorf("updating tag: %w", err)
			}

			fmt.Printf("Updated tag %s (%s)\n", record.Name(), record.ID())

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "tag name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "tag description")

	return cmd
}

func newTagsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Tags().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("deleting tag: %w", err)
			}

			fmt.Printf("Deleted tag %s\n", args[0])

			return nil
		},
	}
}
