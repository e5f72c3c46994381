package mapper

import (
	"context"
	"iter"
)

// Iterator maps the elements of a Source on demand.
//
// The Source is closed once the iterator is exhausted, fails or is closed by the caller.
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	src    Source
	mapper *Mapper[T]

	current T
	err     error
	closed  bool
}

func NewIterator[T any](src Source, m *Mapper[T]) *Iterator[T] {
	return &Iterator[T]{src: src, mapper: m}
}

// Next advances to the next element and maps it. It returns false at the end of the
// results or on the first error, which Err then reports.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	if it.closed {
		return false
	}

	if !it.src.Next(ctx) {
		it.err = it.src.Err()
		it.finish(ctx)
		return false
	}

	v, err := it.mapper.Map(it.src.Current())
	if err != nil {
		it.err = err
		it.finish(ctx)
		return false
	}

	it.current = v
	return true
}

// Value returns the element mapped by the last successful Next.
func (it *Iterator[T]) Value() T {
	return it.current
}

func (it *Iterator[T]) Err() error {
	return it.err
}

// Close releases the Source. It is safe to call more than once.
func (it *Iterator[T]) Close(ctx context.Context) error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.src.Close(ctx)
}

func (it *Iterator[T]) finish(ctx context.Context) {
	if err := it.Close(ctx); err != nil && it.err == nil {
		it.err = err
	}
}

// All drains the iterator. The result is empty, not nil, when nothing matched.
func (it *Iterator[T]) All(ctx context.Context) ([]T, error) {
	out := []T{}
	for it.Next(ctx) {
		out = append(out, it.current)
	}
	return out, it.err
}

// Seq returns the remaining elements as a range-over-func sequence.
// Breaking out of the loop closes the iterator. A failure is yielded once as the last pair.
func (it *Iterator[T]) Seq(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer it.Close(ctx)

		for it.Next(ctx) {
			if !yield(it.current, nil) {
				return
			}
		}
		if it.err != nil {
			var zero T
			yield(zero, it.err)
		}
	}
}
