// Package ghost provides types, interfaces, and helpers for working with the
// Ghost blogging platform REST API.
//
// # Overview
//
// The ghost package defines the generic Record type for API resources, the
// interfaces for resource-oriented clients (PostsClient, TagsClient,
// UsersClient, ImagesClient), list query parameters, pagination cursors, the
// error taxonomy, and pluggable building blocks such as request/response
// interceptors and a response cache. A concrete implementation is provided by
// the ghostclient package, which wires configuration, transport, and
// authentication. Most consumers should import ghostclient to construct a
// client and then interact with the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/ghost-client/pkg/ghost"
//	  "github.com/fivetwenty-io/ghost-client/pkg/ghostclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := ghostclient.New(ctx, &ghost.Config{
//	    BaseURL:      "http://localhost:2368",
//	    ClientID:     "ghost-admin",
//	    ClientSecret: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  if err := cli.Login(ctx, "user@example.com", "password"); err != nil {
//	    log.Fatal(err)
//	  }
//
//	  posts, err := cli.Posts().List(ctx, ghost.NewListParams().WithStatus("all"))
//	  if err != nil { log.Fatal(err) }
//	  _ = posts
//	}
//
// # Queries and pagination
//
// Use ListParams to express the recognized list options (fields, formats,
// include, filter, status, order, limit, page). List responses are wrapped in
// a Page cursor; NextPage and PrevPage return a brand-new Page, or nil when no
// page exists in that direction:
//
//	for page != nil {
//	  for _, post := range page.Records {
//	    _ = post.Title()
//	  }
//	  page, err = page.NextPage(ctx)
//	  if err != nil { break }
//	}
//
// PageIterator, FetchAllRecords, and StreamPages offer record-at-a-time,
// collect-everything, and channel-based traversal over the same contract.
//
// # Errors
//
// Every operation fails with exactly one of AuthError, RequestError,
// DecodeError, or an error wrapping ErrInvalidArgument. Helpers such as
// IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on common
// cases.
//
// # Sessions
//
// The client owns a single logical session. A request rejected with 401 or 403
// triggers exactly one transparent session refresh and one retry; a second
// rejection is surfaced to the caller. Logout revokes and clears all
// credential state.
package ghost
