package lastfm

import (
	"context"
	"fmt"

	"github.com/jfmyers9/lastkit/pkg/lazyseq"
)

// pageDecoder turns the inner XML of one page into items and the total
// page count.
type pageDecoder[T any] func(inner []byte) (items []T, totalPages int, err error)

// pagedSeq returns a lazy sequence over a paginated read method. Nothing is
// fetched until the sequence is forced.
func pagedSeq[T any](c *Client, method string, params Params, decode pageDecoder[T]) *lazyseq.Seq[T] {
	return lazyseq.Paged(func(ctx context.Context, page int) (lazyseq.Page[T], error) {
		p := params.clone().SetInt("page", page)
		inner, err := c.get(ctx, method, p)
		if err != nil {
			return lazyseq.Page[T]{}, err
		}

		items, total, err := decode(inner)
		if err != nil {
			return lazyseq.Page[T]{}, fmt.Errorf("lastfm: failed to parse %s response: %w", method, err)
		}

		c.logDebugf("lastfm: %s page %d/%d, %d items", method, page, total, len(items))
		return lazyseq.Page[T]{Items: items, TotalPages: total}, nil
	})
}

// fetchInto calls a read method and decodes its inner XML into v.
func (c *Client) fetchInto(ctx context.Context, method string, params Params, v any) error {
	inner, err := c.get(ctx, method, params)
	if err != nil {
		return err
	}
	if err := unmarshalInner(inner, v); err != nil {
		return fmt.Errorf("lastfm: failed to parse %s response: %w", method, err)
	}
	return nil
}
