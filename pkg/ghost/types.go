package ghost

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record represents one resource (post, tag, user) as a string-keyed mapping.
// Records are always built whole from a decoded response and have no identity
// beyond their "id" field. The named accessors are convenience functions over
// the mapping; absent fields yield zero values.
type Record map[string]interface{}

// String returns the named field as a string, or "" when absent or not a
// string.
func (r Record) String(field string) string {
	v, _ := r[field].(string)

	return v
}

// ID returns the record id. Legacy servers use numeric ids, modern ones use
// opaque strings; both are normalized to a string.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Title returns the "title" field.
func (r Record) Title() string {
	return r.String("title")
}

// Slug returns the "slug" field.
func (r Record) Slug() string {
	return r.String("slug")
}

// Name returns the "name" field.
func (r Record) Name() string {
	return r.String("name")
}

// Status returns the "status" field.
func (r Record) Status() string {
	return r.String("status")
}

// Markdown returns the markdown body of a post. When the response carries no
// plain "markdown" field, the markdown card of a "mobiledoc" payload is
// extracted instead (requires formats=mobiledoc on the originating request).
func (r Record) Markdown() string {
	if md := r.String("markdown"); md != "" {
		return md
	}

	doc := r.String("mobiledoc")
	if doc == "" {
		return ""
	}

	md, err := MarkdownFromMobiledoc(doc)
	if err != nil {
		return ""
	}

	return md
}

// Author returns the expanded "author" object as a Record (requires
// include=author on the originating request).
func (r Record) Author() Record {
	if m, ok := r["author"].(map[string]interface{}); ok {
		return Record(m)
	}

	return nil
}

// Tags returns the expanded "tags" objects as Records.
func (r Record) Tags() []Record {
	items, ok := r["tags"].([]interface{})
	if !ok {
		return nil
	}

	tags := make([]Record, 0, len(items))

	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			tags = append(tags, Record(m))
		}
	}

	return tags
}

// Limit is a page size that is either a positive count or "all".
type Limit struct {
	All   bool
	Count int
}

// LimitOf returns a fixed page size.
func LimitOf(count int) Limit {
	return Limit{Count: count}
}

// LimitAll requests every record in one page.
func LimitAll() Limit {
	return Limit{All: true}
}

// IsZero reports whether the limit was left unset.
func (l Limit) IsZero() bool {
	return !l.All && l.Count == 0
}

// String renders the limit as it appears on the wire.
func (l Limit) String() string {
	if l.All {
		return "all"
	}

	return strconv.Itoa(l.Count)
}

// MarshalJSON implements json.Marshaler.
func (l Limit) MarshalJSON() ([]byte, error) {
	if l.All {
		return json.Marshal("all")
	}

	return json.Marshal(l.Count)
}

// UnmarshalJSON implements json.Unmarshaler. The server reports the limit as
// a number, or as the string "all".
func (l *Limit) UnmarshalJSON(data []byte) error {
	var raw interface{}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshaling limit: %w", err)
	}

	switch v := raw.(type) {
	case string:
		if v == "all" {
			*l = Limit{All: true}

			return nil
		}

		count, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("unmarshaling limit %q: %w", v, err)
		}

		*l = Limit{Count: count}
	case float64:
		*l = Limit{Count: int(v)}
	default:
		return fmt.Errorf("%w: unexpected limit value %v", ErrInvalidArgument, raw)
	}

	return nil
}

// Pagination is the "meta.pagination" block of a list response.
type Pagination struct {
	Page  int   `json:"page"  yaml:"page"`
	Limit Limit `json:"limit" yaml:"limit"`
	Pages int   `json:"pages" yaml:"pages"`
	Total int   `json:"total" yaml:"total"`
	Next  *int  `json:"next"  yaml:"next"`
	Prev  *int  `json:"prev"  yaml:"prev"`
}
