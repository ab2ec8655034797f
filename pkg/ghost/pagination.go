package ghost

import (
	"context"
)

// Lister fetches one page of a collection. Every resource client with a List
// operation satisfies it.
type Lister interface {
	List(ctx context.Context, params *ListParams) (*Page, error)
}

// Page is an immutable snapshot of one fetched page of records, with enough
// context to fetch its siblings. Navigating creates a brand-new Page via a
// new request; the current one is never mutated.
type Page struct {
	// Records holds the resources of this page in response order.
	Records []Record

	meta   Pagination
	params *ListParams
	lister Lister
}

// NewPage builds a page cursor. params is the parameter set the page was
// fetched with, excluding page number; lister is the client that produced it.
func NewPage(records []Record, meta Pagination, params *ListParams, lister Lister) *Page {
	return &Page{
		Records: records,
		meta:    meta,
		params:  params.Clone(),
		lister:  lister,
	}
}

// Meta returns the pagination metadata of this page.
func (p *Page) Meta() Pagination {
	return p.meta
}

// Total is the number of records across all pages.
func (p *Page) Total() int {
	return p.meta.Total
}

// Pages is the number of pages at the current limit.
func (p *Page) Pages() int {
	return p.meta.Pages
}

// Limit is the page size this page was fetched with.
func (p *Page) Limit() Limit {
	return p.meta.Limit
}

// PageNumber is the 1-based number of this page.
func (p *Page) PageNumber() int {
	return p.meta.Page
}

// NextPage fetches the following page, or returns (nil, nil) when this is
// the last page. The nil page is the loop-termination contract callers rely
// on when iterating the whole collection.
func (p *Page) NextPage(ctx context.Context) (*Page, error) {
	if p.meta.Next == nil {
		return nil, nil
	}

	return p.fetch(ctx, *p.meta.Next)
}

// PrevPage fetches the preceding page, or returns (nil, nil) on the first
// page.
func (p *Page) PrevPage(ctx context.Context) (*Page, error) {
	if p.meta.Prev == nil {
		return nil, nil
	}

	return p.fetch(ctx, *p.meta.Prev)
}

func (p *Page) fetch(ctx context.Context, pageNumber int) (*Page, error) {
	params := p.params.Clone()
	params.Limit = p.meta.Limit
	params.Page = pageNumber

	return p.lister.List(ctx, params)
}

// PageIterator walks a paginated collection record by record, fetching pages
// on demand.
type PageIterator struct {
	ctx     context.Context
	lister  Lister
	params  *ListParams
	current *Page
	index   int
	started bool
}

// NewPageIterator creates an iterator over the collection served by lister.
// The first page is fetched lazily on first use.
func NewPageIterator(ctx context.Context, lister Lister, params *ListParams) *PageIterator {
	return &PageIterator{
		ctx:    ctx,
		lister: lister,
		params: params.Clone(),
	}
}

// HasNext reports whether another record is available. It may fetch the next
// page to find out.
func (it *PageIterator) HasNext() bool {
	err := it.ensure()
	if err != nil {
		// Surface the error from the following Next call.
		return true
	}

	return it.current != nil && it.index < len(it.current.Records)
}

// Next returns the next record, fetching pages as needed.
func (it *PageIterator) Next() (Record, error) {
	err := it.ensure()
	if err != nil {
		return nil, err
	}

	if it.current == nil || it.index >= len(it.current.Records) {
		return nil, ErrNoMoreItems
	}

	record := it.current.Records[it.index]
	it.index++

	return record, nil
}

// ensure fetches the first page, or advances to the next page when the
// current one is exhausted.
func (it *PageIterator) ensure() error {
	if !it.started {
		it.started = true

		page, err := it.lister.List(it.ctx, it.params)
		if err != nil {
			return err
		}

		it.current = page
		it.index = 0

		return nil
	}

	for it.current != nil && it.index >= len(it.current.Records) {
		next, err := it.current.NextPage(it.ctx)
		if err != nil {
			return err
		}

		it.current = next
		it.index = 0

		if next == nil {
			break
		}
	}

	return nil
}

// All collects every remaining record.
func (it *PageIterator) All() ([]Record, error) {
	var records []Record

	for it.HasNext() {
		record, err := it.Next()
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// ForEach applies fn to every remaining record, stopping at the first error.
func (it *PageIterator) ForEach(fn func(Record) error) error {
	for it.HasNext() {
		record, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(record)
		if err != nil {
			return err
		}
	}

	return nil
}

// PaginationOptions tunes the bulk pagination helpers.
type PaginationOptions struct {
	// PageSize overrides the page size of the initial request.
	PageSize int
	// MaxPages caps how many pages are fetched. 0 means no cap.
	MaxPages int
}

// DefaultPaginationOptions returns the default bulk pagination settings.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{}
}

// FetchAllRecords collects every record of a collection by following next
// page numbers until the terminal page.
func FetchAllRecords(ctx context.Context, lister Lister, params *ListParams, options *PaginationOptions) ([]Record, error) {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	params = params.Clone()
	if options.PageSize > 0 {
		params.Limit = LimitOf(options.PageSize)
	}

	page, err := lister.List(ctx, params)
	if err != nil {
		return nil, err
	}

	var records []Record

	fetched := 0

	for page != nil {
		records = append(records, page.Records...)

		fetched++
		if options.MaxPages > 0 && fetched >= options.MaxPages {
			break
		}

		page, err = page.NextPage(ctx)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// PageResult is one page delivered by StreamPages.
type PageResult struct {
	Records []Record
	Err     error
}

// StreamPages fetches pages sequentially and delivers them on a channel. The
// channel is closed after the terminal page, the first error, or context
// cancellation.
func StreamPages(ctx context.Context, lister Lister, params *ListParams, options *PaginationOptions) <-chan PageResult {
	if options == nil {
		options = DefaultPaginationOptions()
	}

	params = params.Clone()
	if options.PageSize > 0 {
		params.Limit = LimitOf(options.PageSize)
	}

	results := make(chan PageResult)

	go func() {
		defer close(results)

		page, err := lister.List(ctx, params)

		fetched := 0

		for {
			if err != nil {
				select {
				case results <- PageResult{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			if page == nil {
				return
			}

			select {
			case results <- PageResult{Records: page.Records}:
			case <-ctx.Done():
				return
			}

			fetched++
			if options.MaxPages > 0 && fetched >= options.MaxPages {
				return
			}

			page, err = page.NextPage(ctx)
		}
	}()

	return results
}
