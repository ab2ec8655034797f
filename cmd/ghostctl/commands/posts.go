package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// NewPostsCommand creates the posts command group.
func NewPostsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage posts",
		Long:  "List, inspect, create, update, and delete blog posts",
	}

	cmd.AddCommand(newPostsListCommand())
	cmd.AddCommand(newPostsGetCommand())
	cmd.AddCommand(newPostsCreateCommand())
	cmd.AddCommand(newPostsUpdateCommand())
	cmd.AddCommand(newPostsDeleteCommand())

	return cmd
}

func newPostsListCommand() *cobra.Command {
	var (
		limit    int
		page     int
		allPages bool
		filter   string
		status   string
		order    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			params := ghost.NewListParams().WithInclude("tags", "author")

			if limit > 0 {
				params = params.WithLimit(limit)
			}

			if page > 0 {
				params = params.WithPage(page)
			}

			if filter != "" {
				params = params.WithFilter(filter)
			}

			if status != "" {
				params = params.WithStatus(status)
			}

			if order != "" {
				params = params.WithOrder(order)
			}

			var records []ghost.Record

			firstPage, err := client.Posts().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("listing posts: %w", err)
			}

			if allPages {
				records, err = collectAllPages(cmd.Context(), firstPage)
				if err != nil {
					return err
				}
			} else {
				records = firstPage.Records
			}

			output := viper.GetString("output")
			if output != OutputFormatTable {
				return renderStructured(records, output)
			}

			renderPostsTable(records)

			if !allPages && firstPage.Pages() > 1 {
				fmt.Fprintf(os.Stdout, "\nShowing page %d of %d. Use --all to fetch all pages.\n",
					firstPage.PageNumber(), firstPage.Pages())
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "page size")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "page number")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "filter expression, e.g. tag:news")
	cmd.Flags().StringVarP(&status, "status", "s", "", "post status (published, draft, all)")
	cmd.Flags().StringVar(&order, "order", "", "sort order, e.g. 'published_at desc'")

	return cmd
}

func renderPostsTable(records []ghost.Record) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Title", "Slug", "Status")

	for _, record := range records {
		_ = table.Append(record.ID(), truncate(recordField(record, "title"), 48),
			recordField(record, "slug"), recordField(record, "status"))
	}

	_ = table.Render()
}

func newPostsGetCommand() *cobra.Command {
	var bySlug bool

	cmd := &cobra.Command{
		Use:   "get ID_OR_SLUG",
		Short: "Get post details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			params := ghost.NewListParams().WithInclude("tags", "author")

			var record ghost.Record
			if bySlug {
				record, err = client.Posts().GetBySlug(cmd.Context(), args[0], params)
			} else {
				record, err = client.Posts().Get(cmd.Context(), args[0], params)
			}

			if err != nil {
				return fmt.Errorf("fetching post: %w", err)
			}

			output := viper.GetString("output")
			if output != OutputFormatTable {
				return renderStructured(record, output)
			}

			renderRecordTable(record, "title", "slug", "status", "published_at", "updated_at")

			return nil
		},
	}

	cmd.Flags().BoolVar(&bySlug, "slug", false, "treat the argument as a slug")

	return cmd
}

func newPostsCreateCommand() *cobra.Command {
	var (
		title    string
		markdown string
		status   string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return ErrTitleRequired
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			fields := ghost.Record{"title": title}

			if markdown != "" {
				fields["markdown"] = markdown
			}

			if status != "" {
				fields["status"] = status
			}

			record, err := client.Posts().Create(cmd.Context(), fields)
			if err != nil {
				return fmt.Errorf("creating post: %w", err)
			}

			fmt.Printf("Created post %s (%s)\n", record.Title(), record.ID())

			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "post title")
	cmd.Flags().StringVarP(&markdown, "markdown", "m", "", "post body as markdown")
	cmd.Flags().StringVarP(&status, "status", "s", "", "post status (draft, published)")

	return cmd
}

func newPostsUpdateCommand() *cobra.Command {
	var (
		title    string
		markdown string
		status   string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := ghost.Record{}

			if title != "" {
				fields["title"] = title
			}

			if markdown != "" {
				fields["markdown"] = markdown
			}

			if status != "" {
				fields["status"] = status
			}

			if len(fields) == 0 {
				return ErrNoFieldsToUpdate
			}

			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			record, err := client.Posts().Update(cmd.Context(), args[0], fields)
			if err != nil {
				return fmt.Errorf("updating post: %w", err)
			}

			fmt.Printf("Updated post %s (%s)\n", record.Title(), record.ID())

			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "post title")
	cmd.Flags().StringVarP(&markdown, "markdown", "m", "", "post body as markdown")
	cmd.Flags().StringVarP(&status, "status", "s", "", "post status (draft, published)")

	return cmd
}

func newPostsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			err = client.Posts().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("deleting post: %w", err)
			}

			fmt.Printf("Deleted post %s\n", args[0])

			return nil
		},
	}
}

// collectAllPages walks the cursor chain from the given page to the end.
func collectAllPages(ctx context.Context, page *ghost.Page) ([]ghost.Record, error) {
	var records []ghost.Record

	for page != nil {
		records = append(records, page.Records...)

		next, err := page.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}

		page = next
	}

	return records, nil
}

// renderRecordTable prints one record as a property table.
func renderRecordTable(record ghost.Record, fields ...string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append("ID", record.ID())

	for _, field := range fields {
		_ = table.Append(field, truncate(recordField(record, field), 72))
	}

	_ = table.Render()
}
