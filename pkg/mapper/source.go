package mapper

import (
	"context"

	"github.com/jongo-go/jongo/pkg/driver"
)

// Source yields raw results one at a time.
type Source interface {
	Next(ctx context.Context) bool
	Current() any
	Err() error
	Close(ctx context.Context) error
}

type cursorSource struct {
	cursor driver.Cursor
}

// FromCursor adapts a driver cursor to a Source.
func FromCursor(c driver.Cursor) Source {
	return &cursorSource{cursor: c}
}

func (s *cursorSource) Next(ctx context.Context) bool {
	return s.cursor.Next(ctx)
}

func (s *cursorSource) Current() any {
	return s.cursor.Current()
}

func (s *cursorSource) Err() error {
	return s.cursor.Err()
}

func (s *cursorSource) Close(ctx context.Context) error {
	return s.cursor.Close(ctx)
}

// SliceSource yields the elements of an in-memory result.
type SliceSource struct {
	values []any
	pos    int
	err    error
}

func NewSliceSource(values []any) *SliceSource {
	return &SliceSource{values: values, pos: -1}
}

// Next advances to the next element. A done ctx stops the source and is reported by Err.
func (s *SliceSource) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		s.pos = len(s.values)
		if s.err == nil {
			s.err = err
		}
		return false
	}
	if s.pos+1 >= len(s.values) {
		s.pos = len(s.values)
		return false
	}
	s.pos++
	return true
}

func (s *SliceSource) Current() any {
	if s.pos < 0 || s.pos >= len(s.values) {
		return nil
	}
	return s.values[s.pos]
}

func (s *SliceSource) Err() error {
	return s.err
}

func (s *SliceSource) Close(context.Context) error {
	s.pos = len(s.values)
	return nil
}
