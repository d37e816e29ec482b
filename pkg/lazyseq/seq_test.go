package lazyseq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStep yields 0..n-1 and records how many times it ran.
func countingStep(n int, calls *int) Step[int] {
	next := 0
	return func(ctx context.Context) (int, bool, error) {
		*calls++
		if next >= n {
			return 0, false, nil
		}
		v := next
		next++
		return v, true, nil
	}
}

func collect(t *testing.T, s *Seq[int]) []int {
	t.Helper()
	var out []int
	for v, err := range s.All(context.Background()) {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestSeq_ReiterationRunsStepOncePerElement(t *testing.T) {
	calls := 0
	s := New(countingStep(5, &calls))

	first := collect(t, s)
	second := collect(t, s)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 6, calls, "five elements plus one terminal step")
	assert.Equal(t, Done, s.State())
}

func TestSeq_At(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := New(countingStep(5, &calls))

	v, err := s.At(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, Buffering, s.State())

	v, err = s.At(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, 3, calls, "buffered index must not step")

	_, err = s.At(ctx, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)

	_, err = s.At(ctx, -1)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestSeq_Slice(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := New(countingStep(10, &calls))

	got, err := s.Slice(ctx, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)
	assert.Equal(t, 4, calls)

	got, err = s.Slice(ctx, 8, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9}, got)

	got, err = s.Slice(ctx, 12, 20)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Snapshots are detached from the buffer.
	got, err = s.Slice(ctx, 0, 1)
	require.NoError(t, err)
	got[0] = 99
	v, err := s.At(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestSeq_LenAndEmpty(t *testing.T) {
	ctx := context.Background()

	calls := 0
	s := New(countingStep(3, &calls))
	empty, err := s.Empty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, 1, calls)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	calls = 0
	none := New(countingStep(0, &calls))
	empty, err = none.Empty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestSeq_FailedStepIsRetried(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	attempts := 0

	s := New(func(ctx context.Context) (int, bool, error) {
		attempts++
		switch attempts {
		case 1:
			return 1, true, nil
		case 2:
			return 0, false, boom
		case 3:
			return 2, true, nil
		default:
			return 0, false, nil
		}
	})

	_, err := s.At(ctx, 1)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Failed, s.State())
	assert.ErrorIs(t, s.Err(), boom)
	assert.Equal(t, 1, s.Buffered(), "partial results survive a failure")

	v, err := s.At(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.NoError(t, s.Err())
}

func TestSeq_IteratorSurfacesError(t *testing.T) {
	boom := errors.New("boom")
	s := New(func(ctx context.Context) (int, bool, error) {
		return 0, false, boom
	})

	var gotErr error
	for _, err := range s.All(context.Background()) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, boom)
}

func TestSeq_Each(t *testing.T) {
	calls := 0
	s := New(countingStep(4, &calls))
	stop := errors.New("stop")

	var seen []int
	err := s.Each(context.Background(), func(i, v int) error {
		seen = append(seen, v)
		if i == 1 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1}, seen)
}

func TestSeq_Reentrant(t *testing.T) {
	ctx := context.Background()
	var s *Seq[int]
	var inner error
	s = New(func(ctx context.Context) (int, bool, error) {
		inner = s.Force(ctx, 5)
		return 0, false, nil
	})

	require.NoError(t, s.Force(ctx, 1))
	assert.ErrorIs(t, inner, ErrReentrant)
}

func TestSeq_PanickingStepIsRetried(t *testing.T) {
	ctx := context.Background()
	calls := 0
	s := New(func(ctx context.Context) (int, bool, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		if calls > 3 {
			return 0, false, nil
		}
		return calls, true, nil
	})

	assert.PanicsWithValue(t, "boom", func() { _ = s.Force(ctx, 1) })
	assert.Equal(t, Failed, s.State())
	assert.ErrorIs(t, s.Err(), ErrPanicked)

	require.NoError(t, s.Force(ctx, -1))
	assert.Equal(t, Done, s.State())
	got, err := s.Slice(ctx, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)
}

func TestUnbounded(t *testing.T) {
	ctx := context.Background()
	n := 0
	s := Unbounded(func(ctx context.Context) (int, bool, error) {
		n++
		return n, true, nil
	})

	_, err := s.Len(ctx)
	assert.ErrorIs(t, err, ErrUnbounded)

	_, err = s.Slice(ctx, 0, -1)
	assert.ErrorIs(t, err, ErrUnbounded)

	got, err := s.Take(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	var seen []int
	for v, err := range s.All(ctx) {
		require.NoError(t, err)
		seen = append(seen, v)
		if len(seen) == 5 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestFromSlice(t *testing.T) {
	items := []string{"a", "b"}
	s := FromSlice(items)
	items[0] = "z"

	assert.Equal(t, Done, s.State())
	n, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := s.At(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "buffering", Buffering.String())
	assert.Equal(t, "state(42)", State(42).String())
}
