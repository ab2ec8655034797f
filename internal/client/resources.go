package client

import (
	"context"
	"encoding/json"
	"fmt"

	internalhttp "github.com/fivetwenty-io/ghost-client/internal/http"
	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// resourceController implements the envelope-based CRUD shared by every
// resource collection. Requests and responses wrap records in a list keyed
// by the resource type, e.g. {"posts": [{...}]}.
type resourceController struct {
	transport *internalhttp.Client
	typeName  string
	basePath  string
}

func newResourceController(transport *internalhttp.Client, typeName string) *resourceController {
	return &resourceController{
		transport: transport,
		typeName:  typeName,
		basePath:  "/" + typeName + "/",
	}
}

// List implements ghost.Lister. The returned page carries the controller so
// NextPage and PrevPage can fetch siblings.
func (c *resourceController) List(ctx context.Context, params *ghost.ListParams) (*ghost.Page, error) {
	if params == nil {
		params = ghost.NewListParams()
	}

	resp, err := c.transport.Get(ctx, c.basePath, params.ToValues())
	if err != nil {
		return nil, err
	}

	records, meta, err := c.decodeList(resp.Body)
	if err != nil {
		return nil, err
	}

	return ghost.NewPage(records, meta, params, c), nil
}

// Get fetches a single record by id.
func (c *resourceController) Get(ctx context.Context, id string, params *ghost.ListParams) (ghost.Record, error) {
	if id == "" {
		return nil, ghost.ErrIDRequired
	}

	return c.getOne(ctx, c.basePath+id+"/", params)
}

// GetBySlug fetches a single record by its slug.
func (c *resourceController) GetBySlug(ctx context.Context, slug string, params *ghost.ListParams) (ghost.Record, error) {
	if slug == "" {
		return nil, ghost.ErrSlugRequired
	}

	return c.getOne(ctx, c.basePath+"slug/"+slug+"/", params)
}

// Create posts a new record wrapped in the resource envelope and returns the
// created record as the server reports it.
func (c *resourceController) Create(ctx context.Context, fields ghost.Record) (ghost.Record, error) {
	resp, err := c.transport.Post(ctx, c.basePath, c.envelope(fields))
	if err != nil {
		return nil, err
	}

	return c.decodeFirst(c.basePath, resp.Body)
}

// Update puts changed fields for an existing record.
func (c *resourceController) Update(ctx context.Context, id string, fields ghost.Record) (ghost.Record, error) {
	if id == "" {
		return nil, ghost.ErrIDRequired
	}

	path := c.basePath + id + "/"

	resp, err := c.transport.Put(ctx, path, c.envelope(fields))
	if err != nil {
		return nil, err
	}

	return c.decodeFirst(path, resp.Body)
}

// Delete removes a record by id.
func (c *resourceController) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ghost.ErrIDRequired
	}

	_, err := c.transport.Delete(ctx, c.basePath+id+"/")

	return err
}

func (c *resourceController) getOne(ctx context.Context, path string, params *ghost.ListParams) (ghost.Record, error) {
	var query map[string][]string
	if params != nil {
		query = params.ToValues()
	}

	resp, err := c.transport.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	return c.decodeFirst(path, resp.Body)
}

// envelope wraps one record in the list envelope the API expects on writes.
func (c *resourceController) envelope(fields ghost.Record) map[string]interface{} {
	return map[string]interface{}{c.typeName: []ghost.Record{fields}}
}

// decodeList splits a collection response into its records and pagination.
func (c *resourceController) decodeList(body []byte) ([]ghost.Record, ghost.Pagination, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, ghost.Pagination{}, &ghost.DecodeError{Path: c.basePath, Err: err}
	}

	var records []ghost.Record

	raw, ok := envelope[c.typeName]
	if !ok {
		return nil, ghost.Pagination{}, &ghost.DecodeError{
			Path: c.basePath,
			Err:  fmt.Errorf("response has no %q key", c.typeName),
		}
	}

	err = json.Unmarshal(raw, &records)
	if err != nil {
		return nil, ghost.Pagination{}, &ghost.DecodeError{Path: c.basePath, Err: err}
	}

	var meta struct {
		Pagination ghost.Pagination `json:"pagination"`
	}

	if rawMeta, ok := envelope["meta"]; ok {
		err = json.Unmarshal(rawMeta, &meta)
		if err != nil {
			return nil, ghost.Pagination{}, &ghost.DecodeError{Path: c.basePath, Err: err}
		}
	}

	return records, meta.Pagination, nil
}

// decodeFirst extracts the first record of a single-resource envelope.
func (c *resourceController) decodeFirst(path string, body []byte) (ghost.Record, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, &ghost.DecodeError{Path: path, Err: err}
	}

	raw, ok := envelope[c.typeName]
	if !ok {
		return nil, &ghost.DecodeError{Path: path, Err: fmt.Errorf("response has no %q key", c.typeName)}
	}

	var records []ghost.Record

	err = json.Unmarshal(raw, &records)
	if err != nil {
		return nil, &ghost.DecodeError{Path: path, Err: err}
	}

	if len(records) == 0 {
		return nil, &ghost.DecodeError{Path: path, Err: fmt.Errorf("empty %q list in response", c.typeName)}
	}

	return records[0], nil
}
