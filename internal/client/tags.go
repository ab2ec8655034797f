package client

// TagsClient implements ghost.TagsClient. Tags need no request shaping
// beyond the shared envelope handling.
type TagsClient struct {
	*resourceController
}

// NewTagsClient creates a tags client.
func NewTagsClient(controller *resourceController) *TagsClient {
	return &TagsClient{resourceController: controller}
}
