package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPostsCommand(t *testing.T) {
	cmd := NewPostsCommand()
	assert.Equal(t, "posts", cmd.Use)
	assert.Equal(t, "Manage posts", cmd.Short)

	var commandNames []string
	for _, subcmd := range cmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "update")
	assert.Contains(t, commandNames, "delete")
}

func TestNewTagsCommand(t *testing.T) {
	cmd := NewTagsCommand()
	assert.Equal(t, "tags", cmd.Use)
	assert.Len(t, cmd.Commands(), 5)
}

func TestNewUsersCommand(t *testing.T) {
	cmd := NewUsersCommand()
	assert.Equal(t, "users", cmd.Use)

	// Users are read-only through the API.
	assert.Len(t, cmd.Commands(), 2)
}

func TestNewUploadCommand(t *testing.T) {
	cmd := NewUploadCommand()
	assert.Equal(t, "upload FILE", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestPostsListFlags(t *testing.T) {
	cmd := newPostsListCommand()
	assert.Equal(t, "list", cmd.Use)

	for _, name := range []string{"limit", "page", "all", "filter", "status", "order"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "a long ...", truncate("a long value that keeps going", 10))
}

func TestRecordField(t *testing.T) {
	record := map[string]interface{}{"title": "Welcome", "slug": ""}

	assert.Equal(t, "Welcome", recordField(record, "title"))
	assert.Equal(t, NotAvailable, recordField(record, "slug"))
	assert.Equal(t, NotAvailable, recordField(record, "missing"))
}
