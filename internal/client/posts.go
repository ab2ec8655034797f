package client

import (
	"context"
	"strings"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// PostsClient implements ghost.PostsClient.
type PostsClient struct {
	*resourceController

	// version resolves the server version for the markdown transform.
	version func(ctx context.Context) (string, error)
}

// NewPostsClient creates a posts client.
func NewPostsClient(controller *resourceController, version func(ctx context.Context) (string, error)) *PostsClient {
	return &PostsClient{resourceController: controller, version: version}
}

// Create implements ghost.PostsClient.Create.
func (c *PostsClient) Create(ctx context.Context, fields ghost.Record) (ghost.Record, error) {
	prepared, err := c.prepareFields(ctx, fields)
	if err != nil {
		return nil, err
	}

	return c.resourceController.Create(ctx, prepared)
}

// Update implements ghost.PostsClient.Update.
func (c *PostsClient) Update(ctx context.Context, id string, fields ghost.Record) (ghost.Record, error) {
	prepared, err := c.prepareFields(ctx, fields)
	if err != nil {
		return nil, err
	}

	return c.resourceController.Update(ctx, id, prepared)
}

// prepareFields adapts a "markdown" field to the server's content format:
// 0.x servers take it verbatim, newer ones only accept mobiledoc, so the
// text is wrapped into a single markdown card. An empty markdown string is
// dropped from the payload rather than sent as empty content.
func (c *PostsClient) prepareFields(ctx context.Context, fields ghost.Record) (ghost.Record, error) {
	markdown, ok := fields["markdown"].(string)
	if !ok {
		return fields, nil
	}

	if markdown == "" {
		return withoutMarkdown(fields, nil), nil
	}

	version, err := c.version(ctx)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(version, "0") {
		return fields, nil
	}

	return withoutMarkdown(fields, ghost.MobiledocFromMarkdown(markdown)), nil
}

// withoutMarkdown copies the record with the "markdown" field removed,
// leaving the caller's record untouched, and installs the mobiledoc payload
// when one is given.
func withoutMarkdown(fields ghost.Record, mobiledoc interface{}) ghost.Record {
	prepared := make(ghost.Record, len(fields))
	for key, value := range fields {
		prepared[key] = value
	}

	delete(prepared, "markdown")

	if mobiledoc != nil {
		prepared["mobiledoc"] = mobiledoc
	}

	return prepared
}
