package client

// UsersClient implements ghost.UsersClient. The server rejects user
// mutation through this API, so only the read methods of the controller are
// exposed through the public interface.
type UsersClient struct {
	*resourceController
}

// NewUsersClient creates a users client.
func NewUsersClient(controller *resourceController) *UsersClient {
	return &UsersClient{resourceController: controller}
}
