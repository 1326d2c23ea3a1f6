package central_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sophos-central/pkg/central"
)

var errPageSource = errors.New("page source exploded")

type testItem struct {
	ID string
}

// scriptedPages serves pages keyed by cursor and records every fetch, so
// tests can assert both the items returned and the cursors walked.
type scriptedPages struct {
	pages   map[string]*central.ListResponse[testItem]
	cursors []string
	failAt  int // 1-based fetch index that fails, 0 for never
}

func (s *scriptedPages) fetch(_ context.Context, cursor string) (*central.ListResponse[testItem], error) {
	s.cursors = append(s.cursors, cursor)

	if s.failAt > 0 && len(s.cursors) == s.failAt {
		return nil, errPageSource
	}

	return s.pages[cursor], nil
}

func testPage(nextKey string, ids ...string) *central.ListResponse[testItem] {
	page := &central.ListResponse[testItem]{
		Pages: central.PageInfo{Size: len(ids), NextKey: nextKey},
	}

	for _, id := range ids {
		page.Items = append(page.Items, testItem{ID: id})
	}

	return page
}

func testItemIDs(items []testItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	return ids
}

// threePageSource scripts the canonical listing: two full pages followed by
// a final page without a next cursor.
func threePageSource() *scriptedPages {
	return &scriptedPages{
		pages: map[string]*central.ListResponse[testItem]{
			"":   testPage("K2", "a", "b"),
			"K2": testPage("K3", "c", "d"),
			"K3": testPage("", "e"),
		},
	}
}

func TestNewPaginator_Validation(t *testing.T) {
	t.Parallel()

	t.Run("nil fetch is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := central.NewPaginator[testItem](nil, nil)
		require.ErrorIs(t, err, central.ErrNilPageFunc)
	})

	t.Run("page size beyond the maximum is rejected", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		_, err := central.NewPaginator(source.fetch, &central.PaginationOptions{PageSize: 1001})
		require.ErrorIs(t, err, central.ErrInvalidPageSize)
	})

	t.Run("negative page size is rejected", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		_, err := central.NewPaginator(source.fetch, &central.PaginationOptions{PageSize: -5})
		require.ErrorIs(t, err, central.ErrInvalidPageSize)
	})

	t.Run("zero page size takes the default", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		paginator, err := central.NewPaginator(source.fetch, nil)
		require.NoError(t, err)
		assert.Equal(t, 50, paginator.PageSize())
	})
}

func TestPaginator_CollectWalksEveryCursor(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	items, err := paginator.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, testItemIDs(items))
	assert.Equal(t, []string{"", "K2", "K3"}, source.cursors)
}

func TestPaginator_NextPage(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	ctx := context.Background()

	assert.True(t, paginator.HasMore())

	page, err := paginator.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, testItemIDs(page.Items))
	assert.True(t, paginator.HasMore())

	page, err = paginator.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, testItemIDs(page.Items))

	page, err = paginator.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, testItemIDs(page.Items))
	assert.False(t, paginator.HasMore())

	_, err = paginator.NextPage(ctx)
	require.ErrorIs(t, err, central.ErrNoMoreItems)
}

func TestPaginator_CollectN(t *testing.T) {
	t.Parallel()

	t.Run("stops mid page without further fetches", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		paginator, err := central.NewPaginator(source.fetch, nil)
		require.NoError(t, err)

		items, err := paginator.CollectN(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, testItemIDs(items))
		assert.Equal(t, []string{""}, source.cursors)
	})

	t.Run("zero collects everything", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		paginator, err := central.NewPaginator(source.fetch, nil)
		require.NoError(t, err)

		items, err := paginator.CollectN(context.Background(), 0)
		require.NoError(t, err)
		assert.Len(t, items, 5)
	})

	t.Run("limit beyond the listing returns everything", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		paginator, err := central.NewPaginator(source.fetch, nil)
		require.NoError(t, err)

		items, err := paginator.CollectN(context.Background(), 100)
		require.NoError(t, err)
		assert.Len(t, items, 5)
	})
}

func TestPaginator_MaxPagesBoundsTheWalk(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, &central.PaginationOptions{MaxPages: 2})
	require.NoError(t, err)

	items, err := paginator.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, testItemIDs(items))
	assert.Equal(t, []string{"", "K2"}, source.cursors, "the third cursor must never be fetched")
	assert.False(t, paginator.HasMore())
}

func TestPaginator_FetchErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	source := threePageSource()
	source.failAt = 2

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	items, err := paginator.Collect(context.Background())
	require.Error(t, err)

	var pageErr *central.PaginationError

	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 2, pageErr.Page)
	require.ErrorIs(t, err, errPageSource, "the cause must stay reachable")

	// Items yielded before the failure remain valid.
	assert.Equal(t, []string{"a", "b"}, testItemIDs(items))
}

func TestPaginator_FirstPageLeavesIterationAlone(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	ctx := context.Background()

	page, err := paginator.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, testItemIDs(page.Items))

	first, err := paginator.FirstPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, testItemIDs(first.Items))

	// Iteration resumes where it left off.
	page, err = paginator.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, testItemIDs(page.Items))

	assert.Equal(t, []string{"", "", "K2"}, source.cursors)
}

func TestPaginator_Reset(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	ctx := context.Background()

	items, err := paginator.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.False(t, paginator.HasMore())

	paginator.Reset()
	require.True(t, paginator.HasMore())

	items, err = paginator.Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, []string{"", "K2", "K3", "", "K2", "K3"}, source.cursors)
}

func TestPaginator_PagesStopsOnBreak(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	ctx := context.Background()

	for page, pageErr := range paginator.Pages(ctx) {
		require.NoError(t, pageErr)
		assert.Equal(t, []string{"a", "b"}, testItemIDs(page.Items))

		break
	}

	assert.Equal(t, []string{""}, source.cursors)

	// The paginator keeps its position after the break.
	page, err := paginator.NextPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, testItemIDs(page.Items))
}

func TestPaginator_ItemsFlattensPages(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	paginator, err := central.NewPaginator(source.fetch, nil)
	require.NoError(t, err)

	var ids []string

	for item, itemErr := range paginator.Items(context.Background()) {
		require.NoError(t, itemErr)

		ids = append(ids, item.ID)
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	source := threePageSource()

	items, err := central.FetchAllPages(context.Background(), source.fetch, nil)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	t.Run("delivers every page", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()

		var (
			ids       []string
			pageCount int
		)

		for result := range central.StreamPages(context.Background(), source.fetch, nil) {
			require.NoError(t, result.Err)

			for _, item := range result.Items {
				ids = append(ids, item.ID)
			}

			pageCount++
		}

		assert.Equal(t, 3, pageCount)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	})

	t.Run("delivers the error as the final result", func(t *testing.T) {
		t.Parallel()

		source := threePageSource()
		source.failAt = 2

		var lastErr error

		for result := range central.StreamPages(context.Background(), source.fetch, nil) {
			lastErr = result.Err
		}

		require.Error(t, lastErr)

		var pageErr *central.PaginationError

		assert.ErrorAs(t, lastErr, &pageErr)
	})
}
