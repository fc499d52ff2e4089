package model

// Page is one page of a paginated list response. An empty NextPageToken marks the
// final page; the token is opaque and must be passed back unchanged.
type Page[T any] struct {
	Items         []T
	NextPageToken string
	PageSize      int
	TotalRecords  int
}

// HasMore reports whether another page can be requested.
func (p Page[T]) HasMore() bool {
	return p.NextPageToken != ""
}
