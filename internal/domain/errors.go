package domain

import (
	"fmt"
	"strings"
)

// SchemaError is returned when required logical fields cannot be located
// under any accepted alias. It aborts the whole batch.
type SchemaError struct {
	Missing []Field
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "could not find required columns: " + strings.Join(names, ", ")
}

// ParseError records a cell that could not be coerced to its expected type.
// It is never fatal: the field's default is substituted and the error is
// reported alongside the import result.
type ParseError struct {
	Row   int    `json:"row"`
	Field Field  `json:"field"`
	Value string `json:"value"`
	Err   error  `json:"-"`
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("row %d: cannot parse %s %q", e.Row, e.Field, e.Value)
	}
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownSegmentError means a record reached pricing with a segment that has
// no rule. Segmentation and pricing tables have diverged; the batch is aborted.
type UnknownSegmentError struct {
	Row     int
	Segment Segment
}

func (e *UnknownSegmentError) Error() string {
	return fmt.Sprintf("row %d: unknown segment %q", e.Row, e.Segment)
}
