package ghost_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ghost-client/pkg/ghost"
)

// fakeLister serves a fixed collection split into pages of the requested
// size, the way a list endpoint would.
type fakeLister struct {
	records  []ghost.Record
	pageSize int
	calls    []*ghost.ListParams
	err      error
}

func (l *fakeLister) List(ctx context.Context, params *ghost.ListParams) (*ghost.Page, error) {
	if l.err != nil {
		return nil, l.err
	}

	l.calls = append(l.calls, params.Clone())

	pageSize := l.pageSize
	if !params.Limit.IsZero() && !params.Limit.All {
		pageSize = params.Limit.Count
	}

	pageNumber := params.Page
	if pageNumber == 0 {
		pageNumber = 1
	}

	totalPages := (len(l.records) + pageSize - 1) / pageSize
	start := (pageNumber - 1) * pageSize

	end := start + pageSize
	if end > len(l.records) {
		end = len(l.records)
	}

	meta := ghost.Pagination{
		Page:  pageNumber,
		Limit: ghost.LimitOf(pageSize),
		Pages: totalPages,
		Total: len(l.records),
	}

	if pageNumber < totalPages {
		next := pageNumber + 1
		meta.Next = &next
	}

	if pageNumber > 1 {
		prev := pageNumber - 1
		meta.Prev = &prev
	}

	return ghost.NewPage(l.records[start:end], meta, params, l), nil
}

func makeRecords(count int) []ghost.Record {
	records := make([]ghost.Record, 0, count)
	for i := 1; i <= count; i++ {
		records = append(records, ghost.Record{"id": strconv.Itoa(i)})
	}

	return records
}

func TestPageNavigation(t *testing.T) {
	t.Parallel()
	t.Run("next and prev walk the collection", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(5), pageSize: 2}
		ctx := context.Background()

		first, err := lister.List(ctx, ghost.NewListParams().WithLimit(2))
		require.NoError(t, err)
		assert.Equal(t, 1, first.PageNumber())
		assert.Equal(t, 3, first.Pages())
		assert.Equal(t, 5, first.Total())
		assert.Len(t, first.Records, 2)

		second, err := first.NextPage(ctx)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, 2, second.PageNumber())
		assert.Equal(t, "3", second.Records[0].ID())

		// The first page cursor is untouched by navigation.
		assert.Equal(t, 1, first.PageNumber())
		assert.Equal(t, "1", first.Records[0].ID())

		backToFirst, err := second.PrevPage(ctx)
		require.NoError(t, err)
		require.NotNil(t, backToFirst)
		assert.Equal(t, 1, backToFirst.PageNumber())
	})

	t.Run("terminal pages return nil without error", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(3), pageSize: 3}
		ctx := context.Background()

		only, err := lister.List(ctx, ghost.NewListParams().WithLimit(3))
		require.NoError(t, err)

		next, err := only.NextPage(ctx)
		require.NoError(t, err)
		assert.Nil(t, next)

		prev, err := only.PrevPage(ctx)
		require.NoError(t, err)
		assert.Nil(t, prev)
	})
}

func TestPageIterator(t *testing.T) {
	t.Parallel()
	t.Run("iterates every record across pages", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(7), pageSize: 3}
		iterator := ghost.NewPageIterator(context.Background(), lister, ghost.NewListParams().WithLimit(3))

		var ids []string

		for iterator.HasNext() {
			record, err := iterator.Next()
			require.NoError(t, err)

			ids = append(ids, record.ID())
		}

		assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, ids)
	})

	t.Run("next past the end reports exhaustion", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(1), pageSize: 5}
		iterator := ghost.NewPageIterator(context.Background(), lister, ghost.NewListParams())

		_, err := iterator.Next()
		require.NoError(t, err)

		_, err = iterator.Next()
		assert.ErrorIs(t, err, ghost.ErrNoMoreItems)
	})

	t.Run("all collects the remainder", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(4), pageSize: 2}
		iterator := ghost.NewPageIterator(context.Background(), lister, ghost.NewListParams().WithLimit(2))

		records, err := iterator.All()
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("list errors surface from next", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		lister := &fakeLister{err: boom}
		iterator := ghost.NewPageIterator(context.Background(), lister, ghost.NewListParams())

		assert.True(t, iterator.HasNext())

		_, err := iterator.Next()
		assert.ErrorIs(t, err, boom)
	})
}

func TestFetchAllRecords(t *testing.T) {
	t.Parallel()
	t.Run("fetches the whole collection", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(10), pageSize: 4}

		records, err := ghost.FetchAllRecords(context.Background(), lister,
			ghost.NewListParams(), &ghost.PaginationOptions{PageSize: 4})
		require.NoError(t, err)
		assert.Len(t, records, 10)
	})

	t.Run("max pages caps the walk", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(10), pageSize: 4}

		records, err := ghost.FetchAllRecords(context.Background(), lister,
			ghost.NewListParams(), &ghost.PaginationOptions{PageSize: 4, MaxPages: 2})
		require.NoError(t, err)
		assert.Len(t, records, 8)
	})
}

func TestStreamPages(t *testing.T) {
	t.Parallel()
	t.Run("streams every page then closes", func(t *testing.T) {
		t.Parallel()

		lister := &fakeLister{records: makeRecords(6), pageSize: 2}

		var pages int

		var total int

		for result := range ghost.StreamPages(context.Background(), lister,
			ghost.NewListParams().WithLimit(2), nil) {
			require.NoError(t, result.Err)

			pages++
			total += len(result.Records)
		}

		assert.Equal(t, 3, pages)
		assert.Equal(t, 6, total)
	})

	t.Run("errors are delivered before close", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		lister := &fakeLister{err: boom}

		results := ghost.StreamPages(context.Background(), lister, ghost.NewListParams(), nil)

		result, ok := <-results
		require.True(t, ok)
		assert.ErrorIs(t, result.Err, boom)

		_, ok = <-results
		assert.False(t, ok)
	})
}
