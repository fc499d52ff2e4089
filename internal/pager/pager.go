// Package pager walks Zoom's token-paginated list endpoints.
package pager

import (
	"context"
	"errors"

	"github.com/zoomkit/zoomapi/pkg/model"
)

var (
	// ErrExhausted is returned by Next after the final page was delivered.
	ErrExhausted = errors.New("pager: no more pages")
	// ErrRepeatedToken means the server handed back a token it already issued.
	ErrRepeatedToken = errors.New("pager: server repeated a page token")
)

// FetchFunc loads one page. token is "" for the first page and otherwise the opaque
// next_page_token of the previous page, passed through unchanged. Filters must be
// captured by the closure so every call uses the same ones.
type FetchFunc[T any] func(ctx context.Context, token string) (model.Page[T], error)

// Iterator moves from HasMore to Exhausted when a page arrives without a token.
type Iterator[T any] struct {
	fetch FetchFunc[T]
	token string
	done  bool
	seen  map[string]struct{}
}

func New[T any](fetch FetchFunc[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch, seen: make(map[string]struct{})}
}

// Done reports whether the final page has been delivered.
func (it *Iterator[T]) Done() bool { return it.done }

// Next fetches the next page. A failed fetch leaves the iterator where it was.
func (it *Iterator[T]) Next(ctx context.Context) (model.Page[T], error) {
	if it.done {
		return model.Page[T]{}, ErrExhausted
	}
	page, err := it.fetch(ctx, it.token)
	if err != nil {
		return model.Page[T]{}, err
	}
	if !page.HasMore() {
		it.done = true
		return page, nil
	}
	if _, dup := it.seen[page.NextPageToken]; dup {
		it.done = true
		return page, ErrRepeatedToken
	}
	it.seen[page.NextPageToken] = struct{}{}
	it.token = page.NextPageToken
	return page, nil
}

// Collect drains every page and returns all items in page order.
func Collect[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	it := New(fetch)
	var all []T
	for !it.Done() {
		page, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
	}
	return all, nil
}
