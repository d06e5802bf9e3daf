package sqlexec

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/spf13/cast"
)

// Record is one result row keyed by the label each expression was selected under.
//
// The typed getters never fail on their own. The first problem they meet
// (a label that was not selected, or a value that cannot be converted) is kept
// and reported by Err, so a row mapper can read every field and check once.
type Record struct {
	values map[string]any
	err    error
}

// NewRecord builds a record from label/value pairs. Labels are case-insensitive.
func NewRecord(values map[string]any) *Record {
	r := &Record{values: make(map[string]any, len(values))}
	for k, v := range values {
		r.values[strings.ToLower(k)] = v
	}
	return r
}

func scanRecord(rows *sql.Rows, labels []string) (*Record, error) {
	dest := make([]any, len(labels))
	ptrs := make([]any, len(labels))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	r := &Record{values: make(map[string]any, len(labels))}
	for i, l := range labels {
		r.values[l] = dest[i]
	}
	return r, nil
}

// Err returns the first error met by a getter.
func (r *Record) Err() error { return r.err }

// Has reports whether the label was selected.
func (r *Record) Has(l query.Labeled) bool {
	_, ok := r.values[strings.ToLower(l.Alias())]
	return ok
}

// Value returns the raw driver value.
func (r *Record) Value(l query.Labeled) any {
	v, ok := r.values[strings.ToLower(l.Alias())]
	if !ok {
		r.fail(fmt.Errorf("%w: column %s not present in result", store.ErrMapping, l.Alias()))
		return nil
	}
	if b, isBytes := v.([]byte); isBytes {
		return string(b)
	}
	return v
}

// IsNull reports whether the value is SQL NULL.
func (r *Record) IsNull(l query.Labeled) bool {
	return r.Value(l) == nil
}

// String returns the value as a string; NULL becomes "".
func (r *Record) String(l query.Labeled) string {
	v := r.Value(l)
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		r.fail(r.convErr(l, "string", err))
	}
	return s
}

// Int64 returns the value as an int64; NULL becomes 0.
func (r *Record) Int64(l query.Labeled) int64 {
	v := r.Value(l)
	if v == nil {
		return 0
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		r.fail(r.convErr(l, "int64", err))
	}
	return n
}

// Int returns the value as an int; NULL becomes 0.
func (r *Record) Int(l query.Labeled) int {
	v := r.Value(l)
	if v == nil {
		return 0
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		r.fail(r.convErr(l, "int", err))
	}
	return n
}

// Bool returns the value as a bool; NULL becomes false. Integer columns holding 1/0 are accepted.
func (r *Record) Bool(l query.Labeled) bool {
	v := r.Value(l)
	switch n := v.(type) {
	case nil:
		return false
	case int64:
		return n != 0
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		r.fail(r.convErr(l, "bool", err))
	}
	return b
}

// Time returns the value as a UTC time; NULL becomes the zero time.
func (r *Record) Time(l query.Labeled) time.Time {
	v := r.Value(l)
	if v == nil {
		return time.Time{}
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		r.fail(r.convErr(l, "time", err))
		return time.Time{}
	}
	return t.UTC()
}

func (r *Record) convErr(l query.Labeled, kind string, err error) error {
	return fmt.Errorf("%w: column %s: cannot convert to %s: %w", store.ErrMapping, l.Alias(), kind, err)
}

func (r *Record) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
