package ghost

import (
	"net/url"
	"strconv"
	"strings"
)

// ListParams expresses the recognized query options of list endpoints.
// Multi-valued options are comma-joined on the wire.
type ListParams struct {
	// Fields restricts the returned fields, e.g. {"id", "title", "slug"}.
	Fields []string
	// Formats requests alternate body representations, e.g.
	// {"html", "mobiledoc", "plaintext"}.
	Formats []string
	// Include expands related resources, e.g. {"author", "tags"}.
	Include []string
	// Filter is a server-side filter expression, e.g. "featured:true".
	Filter string
	// Status filters by lifecycle state, e.g. "published", "draft", "all".
	Status string
	// Order sets the sort expression, e.g. "published_at desc".
	Order string
	// Limit is the page size.
	Limit Limit
	// Page is the 1-based page number.
	Page int
}

// NewListParams creates empty list params for builder-style use.
func NewListParams() *ListParams {
	return &ListParams{}
}

// WithFields restricts the returned fields, replacing any previous set.
func (p *ListParams) WithFields(fields ...string) *ListParams {
	p.Fields = fields

	return p
}

// WithFormats requests alternate body representations.
func (p *ListParams) WithFormats(formats ...string) *ListParams {
	p.Formats = formats

	return p
}

// WithInclude appends related resources to expand.
func (p *ListParams) WithInclude(include ...string) *ListParams {
	p.Include = append(p.Include, include...)

	return p
}

// WithFilter sets the server-side filter expression.
func (p *ListParams) WithFilter(filter string) *ListParams {
	p.Filter = filter

	return p
}

// WithStatus sets the lifecycle filter.
func (p *ListParams) WithStatus(status string) *ListParams {
	p.Status = status

	return p
}

// WithOrder sets the sort expression.
func (p *ListParams) WithOrder(order string) *ListParams {
	p.Order = order

	return p
}

// WithLimit sets a fixed page size.
func (p *ListParams) WithLimit(limit int) *ListParams {
	p.Limit = LimitOf(limit)

	return p
}

// WithLimitAll requests every record in one page.
func (p *ListParams) WithLimitAll() *ListParams {
	p.Limit = LimitAll()

	return p
}

// WithPage sets the 1-based page number.
func (p *ListParams) WithPage(page int) *ListParams {
	p.Page = page

	return p
}

// Clone returns a deep copy, so page navigation never mutates the params a
// cursor was fetched with.
func (p *ListParams) Clone() *ListParams {
	if p == nil {
		return &ListParams{}
	}

	clone := *p
	clone.Fields = append([]string(nil), p.Fields...)
	clone.Formats = append([]string(nil), p.Formats...)
	clone.Include = append([]string(nil), p.Include...)

	return &clone
}

// ToValues converts the params to url.Values.
func (p *ListParams) ToValues() url.Values {
	values := url.Values{}

	if p == nil {
		return values
	}

	if len(p.Fields) > 0 {
		values.Set("fields", strings.Join(p.Fields, ","))
	}

	if len(p.Formats) > 0 {
		values.Set("formats", strings.Join(p.Formats, ","))
	}

	if len(p.Include) > 0 {
		values.Set("include", strings.Join(p.Include, ","))
	}

	if p.Filter != "" {
		values.Set("filter", p.Filter)
	}

	if p.Status != "" {
		values.Set("status", p.Status)
	}

	if p.Order != "" {
		values.Set("order", p.Order)
	}

	if !p.Limit.IsZero() {
		values.Set("limit", p.Limit.String())
	}

	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}

	return values
}
