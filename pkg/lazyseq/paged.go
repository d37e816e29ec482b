package lazyseq

import "context"

// Page is one page of a paginated remote listing.
type Page[T any] struct {
	Items      []T
	TotalPages int
}

// PageFetcher fetches a 1-based page.
type PageFetcher[T any] func(ctx context.Context, page int) (Page[T], error)

// Paged returns a sequence over a paginated source. Page 1 is fetched on
// the first demand and reports the total page count; later pages are
// fetched only once every element of the previous page has been consumed.
// An empty page is skipped while the advertised total has pages left.
// A failed fetch does not advance the page cursor, so forcing again
// refetches the same page.
func Paged[T any](fetch PageFetcher[T]) *Seq[T] {
	p := &pager[T]{fetch: fetch, next: 1}
	return New(p.step)
}

// PagedLimit is Paged capped at limit elements. A limit of zero or less
// means no cap.
func PagedLimit[T any](fetch PageFetcher[T], limit int) *Seq[T] {
	p := &pager[T]{fetch: fetch, next: 1, limit: limit}
	return New(p.step)
}

type pager[T any] struct {
	fetch    PageFetcher[T]
	next     int
	total    int
	pending  []T
	produced int
	limit    int
}

func (p *pager[T]) step(ctx context.Context) (T, bool, error) {
	var zero T

	if p.limit > 0 && p.produced >= p.limit {
		return zero, false, nil
	}

	for len(p.pending) == 0 {
		if p.next > 1 && p.next > p.total {
			return zero, false, nil
		}

		page, err := p.fetch(ctx, p.next)
		if err != nil {
			return zero, false, err
		}

		p.total = page.TotalPages
		p.next++
		p.pending = page.Items
	}

	item := p.pending[0]
	p.pending = p.pending[1:]
	p.produced++
	return item, true, nil
}
