package central

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// Pagination limits accepted by the API.
const (
	minPageSize     = 1
	maxPageSize     = 1000
	defaultPageSize = 50
)

// PageFunc fetches one page of results. The cursor is "" for the first page
// and the previous page's NextKey afterwards.
type PageFunc[T any] func(ctx context.Context, cursor string) (*ListResponse[T], error)

// PaginationOptions configures pagination behavior.
type PaginationOptions struct {
	// PageSize is the number of items per page (1 to 1000).
	PageSize int
	// MaxPages limits how many pages are fetched. Zero means no limit.
	MaxPages int
}

// DefaultPaginationOptions returns the default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: defaultPageSize,
	}
}

// Paginator iterates cursor-paginated list endpoints.
//
// A Paginator holds its position between calls: Pages, Items, Collect, and
// NextPage all advance the same cursor, and Reset rewinds to the first page.
// FirstPage never touches the iteration state. Paginators are not safe for
// concurrent use.
type Paginator[T any] struct {
	fetch        PageFunc[T]
	pageSize     int
	maxPages     int
	cursor       string
	pagesFetched int
	exhausted    bool
}

// NewPaginator creates a paginator over fetch using the given options.
func NewPaginator[T any](fetch PageFunc[T], opts *PaginationOptions) (*Paginator[T], error) {
	if fetch == nil {
		return nil, ErrNilPageFunc
	}

	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}

	if pageSize < minPageSize || pageSize > maxPageSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, pageSize)
	}

	return &Paginator[T]{
		fetch:    fetch,
		pageSize: pageSize,
		maxPages: opts.MaxPages,
	}, nil
}

// PageSize returns the page size the paginator was built with.
func (p *Paginator[T]) PageSize() int {
	return p.pageSize
}

// HasMore reports whether another page can be fetched.
func (p *Paginator[T]) HasMore() bool {
	if p.exhausted {
		return false
	}

	return p.maxPages == 0 || p.pagesFetched < p.maxPages
}

// NextPage fetches the next page, or ErrNoMoreItems once the listing is
// exhausted or the page limit is reached. Fetch failures are returned as a
// *PaginationError wrapping the cause.
func (p *Paginator[T]) NextPage(ctx context.Context) (*ListResponse[T], error) {
	if !p.HasMore() {
		return nil, ErrNoMoreItems
	}

	page, err := p.fetch(ctx, p.cursor)
	if err != nil {
		return nil, &PaginationError{Page: p.pagesFetched + 1, Cause: err}
	}

	p.pagesFetched++

	if page.Pages.HasNextPage() {
		p.cursor = page.Pages.NextKey
	} else {
		p.exhausted = true
	}

	return page, nil
}

// Pages returns a lazy sequence over the remaining pages.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[*ListResponse[T], error] {
	return func(yield func(*ListResponse[T], error) bool) {
		for p.HasMore() {
			page, err := p.NextPage(ctx)
			if errors.Is(err, ErrNoMoreItems) {
				return
			}

			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(page, nil) {
				return
			}
		}
	}
}

// Items returns a lazy sequence over the remaining items, flattening pages.
func (p *Paginator[T]) Items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		for page, err := range p.Pages(ctx) {
			if err != nil {
				yield(zero, err)

				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Collect fetches the remaining pages and returns their items.
func (p *Paginator[T]) Collect(ctx context.Context) ([]T, error) {
	return p.CollectN(ctx, 0)
}

// CollectN fetches items until maxItems are gathered or the listing ends.
// It stops mid-page without fetching beyond the page that satisfied the
// limit. maxItems <= 0 collects everything.
func (p *Paginator[T]) CollectN(ctx context.Context, maxItems int) ([]T, error) {
	var items []T

	for item, err := range p.Items(ctx) {
		if err != nil {
			return items, err
		}

		items = append(items, item)
		if maxItems > 0 && len(items) >= maxItems {
			break
		}
	}

	return items, nil
}

// FirstPage fetches the first page without affecting iteration state.
func (p *Paginator[T]) FirstPage(ctx context.Context) (*ListResponse[T], error) {
	page, err := p.fetch(ctx, "")
	if err != nil {
		return nil, &PaginationError{Page: 1, Cause: err}
	}

	return page, nil
}

// Reset rewinds the paginator so iteration restarts from the first page.
func (p *Paginator[T]) Reset() {
	p.cursor = ""
	p.pagesFetched = 0
	p.exhausted = false
}

// FetchAllPages fetches every page and returns the combined items.
func FetchAllPages[T any](ctx context.Context, fetch PageFunc[T], opts *PaginationOptions) ([]T, error) {
	paginator, err := NewPaginator(fetch, opts)
	if err != nil {
		return nil, err
	}

	return paginator.Collect(ctx)
}

// PageResult carries one streamed page or the error that ended the stream.
type PageResult[T any] struct {
	Items []T
	Pages PageInfo
	Err   error
}

// StreamPages fetches pages in a background goroutine and delivers them on
// the returned channel. The channel is closed after the last page, after an
// error (delivered as the final result), or once ctx is done.
func StreamPages[T any](ctx context.Context, fetch PageFunc[T], opts *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T], 1)

	paginator, err := NewPaginator(fetch, opts)
	if err != nil {
		results <- PageResult[T]{Err: err}
		close(results)

		return results
	}

	go func() {
		defer close(results)

		for page, err := range paginator.Pages(ctx) {
			result := PageResult[T]{Err: err}
			if page != nil {
				result.Items = page.Items
				result.Pages = page.Pages
			}

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}
		}
	}()

	return results
}
