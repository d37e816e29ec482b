// Package lazyseq provides a memoizing, demand-driven ordered sequence.
//
// A Seq wraps a step function that produces one element per call. Elements
// are produced only when a caller asks for a position that has not been
// reached yet, and every produced element is kept in an internal buffer, so
// a Seq can be indexed, sliced and iterated any number of times while the
// step function runs at most once per element.
//
// A Seq is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access themselves.
package lazyseq

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// State is the position of a Seq in its production lifecycle.
type State int

const (
	// NotStarted means the step function has never been called.
	NotStarted State = iota
	// Fetching means a step is running.
	Fetching
	// Buffering means at least one step has completed and more may follow.
	Buffering
	// Done means the step function signalled the end of the sequence.
	Done
	// Failed means the last step returned an error. The next force retries it.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Fetching:
		return "fetching"
	case Buffering:
		return "buffering"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrExhausted is returned when a position past the final element is requested.
	ErrExhausted = errors.New("lazyseq: sequence exhausted")

	// ErrUnbounded is returned when full materialization of an unbounded
	// sequence is requested.
	ErrUnbounded = errors.New("lazyseq: sequence is unbounded")

	// ErrReentrant is returned when a step function forces its own sequence.
	ErrReentrant = errors.New("lazyseq: re-entrant force")

	// ErrPanicked is recorded as the failure when a step panics. The panic
	// itself still propagates to the caller of Force.
	ErrPanicked = errors.New("lazyseq: step panicked")
)

// Step produces the next element. It returns ok=false once the sequence has
// ended; item is ignored in that case.
type Step[T any] func(ctx context.Context) (item T, ok bool, err error)

// Seq is a lazily produced, memoized sequence of T.
type Seq[T any] struct {
	step      Step[T]
	buf       []T
	state     State
	err       error
	unbounded bool
}

// New returns a finite sequence driven by step.
func New[T any](step Step[T]) *Seq[T] {
	return &Seq[T]{step: step}
}

// Unbounded returns a sequence that may never end. Len and open-ended
// slices are refused on it; it can only be indexed, sliced with an explicit
// bound, or iterated.
func Unbounded[T any](step Step[T]) *Seq[T] {
	return &Seq[T]{step: step, unbounded: true}
}

// FromSlice returns a sequence that is already fully materialized.
func FromSlice[T any](items []T) *Seq[T] {
	buf := make([]T, len(items))
	copy(buf, items)
	return &Seq[T]{buf: buf, state: Done}
}

// State reports the current lifecycle state.
func (s *Seq[T]) State() State {
	return s.state
}

// Err returns the error from the last failed step, if the sequence is in
// the Failed state.
func (s *Seq[T]) Err() error {
	if s.state == Failed {
		return s.err
	}
	return nil
}

// Buffered returns how many elements have been produced so far.
func (s *Seq[T]) Buffered() int {
	return len(s.buf)
}

// Force runs the step function until at least n elements are buffered or
// the sequence ends. A negative n forces the whole sequence.
func (s *Seq[T]) Force(ctx context.Context, n int) error {
	if n < 0 && s.unbounded {
		return ErrUnbounded
	}
	if s.state == Fetching {
		return ErrReentrant
	}

	for s.state != Done && (n < 0 || len(s.buf) < n) {
		item, ok, err := s.run(ctx)
		if err != nil {
			s.state = Failed
			s.err = err
			return err
		}
		s.err = nil
		if !ok {
			s.state = Done
			s.step = nil
			break
		}
		s.buf = append(s.buf, item)
		s.state = Buffering
	}

	return nil
}

// run calls the step once. A step that panics leaves the sequence Failed
// so that a later Force retries it.
func (s *Seq[T]) run(ctx context.Context) (item T, ok bool, err error) {
	s.state = Fetching
	returned := false
	defer func() {
		if !returned {
			s.state = Failed
			s.err = ErrPanicked
		}
	}()
	item, ok, err = s.step(ctx)
	returned = true
	return item, ok, err
}

// At returns the element at index i, producing elements up to it if
// needed. Indexes past the end return an error wrapping ErrExhausted.
func (s *Seq[T]) At(ctx context.Context, i int) (T, error) {
	var zero T
	if i < 0 {
		return zero, fmt.Errorf("%w: negative index %d", ErrExhausted, i)
	}
	if err := s.Force(ctx, i+1); err != nil {
		return zero, err
	}
	if i >= len(s.buf) {
		return zero, fmt.Errorf("%w: index %d, length %d", ErrExhausted, i, len(s.buf))
	}
	return s.buf[i], nil
}

// Slice returns a snapshot of elements [from, to). A negative to means
// "to the end". Bounds past the end are clamped, matching slice semantics
// of a finite list.
func (s *Seq[T]) Slice(ctx context.Context, from, to int) ([]T, error) {
	if from < 0 {
		from = 0
	}
	if err := s.Force(ctx, to); err != nil {
		return nil, err
	}

	end := len(s.buf)
	if to >= 0 && to < end {
		end = to
	}
	if from >= end {
		return []T{}, nil
	}

	out := make([]T, end-from)
	copy(out, s.buf[from:end])
	return out, nil
}

// Len forces the whole sequence and returns its length.
func (s *Seq[T]) Len(ctx context.Context) (int, error) {
	if err := s.Force(ctx, -1); err != nil {
		return 0, err
	}
	return len(s.buf), nil
}

// Empty reports whether the sequence has no elements. It produces at most
// one element.
func (s *Seq[T]) Empty(ctx context.Context) (bool, error) {
	if err := s.Force(ctx, 1); err != nil {
		return false, err
	}
	return len(s.buf) == 0, nil
}

// All returns an iterator over the sequence. Already-buffered elements are
// replayed; further elements are produced on demand. If a step fails, the
// iterator yields the zero value with the error and stops.
func (s *Seq[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := 0; ; i++ {
			if err := s.Force(ctx, i+1); err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if i >= len(s.buf) {
				return
			}
			if !yield(s.buf[i], nil) {
				return
			}
		}
	}
}

// Each calls fn for every element in order. Iteration stops at the first
// error from a step or from fn.
func (s *Seq[T]) Each(ctx context.Context, fn func(int, T) error) error {
	i := 0
	for item, err := range s.All(ctx) {
		if err != nil {
			return err
		}
		if err := fn(i, item); err != nil {
			return err
		}
		i++
	}
	return nil
}

// Take is a convenience for Slice(ctx, 0, n).
func (s *Seq[T]) Take(ctx context.Context, n int) ([]T, error) {
	if n < 0 {
		n = 0
	}
	return s.Slice(ctx, 0, n)
}
