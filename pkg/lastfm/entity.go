package lastfm

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// entity is embedded by every registry-managed type.
type entity struct {
	client *Client
	kind   *Kind
	key    Key

	// mu guards descriptive fields seeded from listings.
	mu sync.Mutex
}

// Kind returns the entity type descriptor.
func (e *entity) Kind() *Kind { return e.kind }

// Key returns the identity key.
func (e *entity) Key() Key { return e.key }

// lazy holds a value fetched on first use. Failed fetches are not cached.
type lazy[T any] struct {
	mu   sync.Mutex
	done bool
	val  T
}

func (l *lazy[T]) get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.val, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.val, l.done = v, true
	return v, nil
}

// prime stores v unless a value is already present.
func (l *lazy[T]) prime(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.done {
		l.val, l.done = v, true
	}
}

// identity carries the fields used for equality and ordering.
type identity struct {
	id       string
	mbid     string
	url      string
	names    []string
	sortName string
	chart    *chartOrder
}

// chartOrder is the tie-break tuple for weekly charts.
type chartOrder struct {
	subject     string
	subjectKind string
	from, to    time.Time
}

// Equal reports whether a and b denote the same remote record. It compares,
// in order and only where both sides are set: numeric id, MusicBrainz id,
// URL, then the composite name fields. If none of those are available it
// falls back to pointer identity.
func Equal(a, b Entity) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}

	ia, ib := a.identity(), b.identity()
	switch {
	case ia.id != "" && ib.id != "":
		return ia.id == ib.id
	case ia.mbid != "" && ib.mbid != "":
		return strings.EqualFold(ia.mbid, ib.mbid)
	case ia.url != "" && ib.url != "":
		return ia.url == ib.url
	case len(ia.names) > 0 && len(ia.names) == len(ib.names):
		for i := range ia.names {
			if fold(ia.names[i]) != fold(ib.names[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders entities by case-folded name. Weekly charts order by
// subject name, then subject kind, then window start, then window end.
func Compare(a, b Entity) int {
	ia, ib := a.identity(), b.identity()

	if ia.chart != nil && ib.chart != nil {
		if c := strings.Compare(fold(ia.chart.subject), fold(ib.chart.subject)); c != 0 {
			return c
		}
		if c := strings.Compare(ia.chart.subjectKind, ib.chart.subjectKind); c != 0 {
			return c
		}
		if c := ia.chart.from.Compare(ib.chart.from); c != 0 {
			return c
		}
		return ia.chart.to.Compare(ib.chart.to)
	}

	if c := strings.Compare(fold(ia.sortName), fold(ib.sortName)); c != 0 {
		return c
	}
	for i := 0; i < len(ia.names) && i < len(ib.names); i++ {
		if c := strings.Compare(fold(ia.names[i]), fold(ib.names[i])); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Kind().Name, b.Kind().Name)
}

// Sort sorts items in place using Compare.
func Sort[T Entity](items []T) {
	slices.SortStableFunc(items, func(a, b T) int { return Compare(a, b) })
}
