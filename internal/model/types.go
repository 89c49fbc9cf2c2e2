package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on the wire and in
// the database.
const DateLayout = "2006-01-02"

// dateInputLayouts lists the accepted inputs; anything carrying a time part
// is truncated to its calendar date.
var dateInputLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
}

// ErrInvalidDate is returned by ParseDate for unparsable input.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date without a time zone. The zero value is not a
// valid date; optional columns use *Date.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC date.
func Today() Date { return NewDate(time.Now().UTC()) }

// ParseDate parses an ISO-8601 date or date-time.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// AddDays returns the date n days later (or earlier when n is negative).
func (d Date) AddDays(n int) Date { return Date{d.Time.AddDate(0, 0, n)} }

func (d Date) String() string { return d.Format(DateLayout) }

// Ptr returns a pointer to a copy of d.
func (d Date) Ptr() *Date { return &d }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as YYYY-MM-DD so both MySQL DATE and SQLite text
// columns compare lexically and chronologically the same way.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts the representations returned by the mysql and sqlite3 drivers.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("model.Date: cannot scan %T", src)
	}
}

// NullDate scans a nullable date column.
type NullDate struct {
	Date  Date
	Valid bool
}

func (n *NullDate) Scan(src any) error {
	if src == nil {
		n.Date, n.Valid = Date{}, false
		return nil
	}
	n.Valid = true
	return n.Date.Scan(src)
}

// Ptr returns nil for NULL.
func (n NullDate) Ptr() *Date {
	if !n.Valid {
		return nil
	}
	return n.Date.Ptr()
}

// StringList is an ordered list of strings persisted as a JSON array.
type StringList []string

// NormalizeStrings trims every element and drops blanks. A nil input yields
// an empty, non-nil list.
func NormalizeStrings(in []string) StringList {
	out := make(StringList, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("model.StringList: cannot scan %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Contains reports exact membership.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// JSONObject is a free-form JSON object column (user preferences).
type JSONObject map[string]any

func (o JSONObject) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(o))
}

func (o JSONObject) Value() (driver.Value, error) {
	if o == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(o))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *JSONObject) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = JSONObject{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("model.JSONObject: cannot scan %T", src)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*o = JSONObject{}
		return nil
	}
	out := JSONObject{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*o = out
	return nil
}

// Optional records whether a JSON field was present in a request body and
// whether it was an explicit null. It lets partial updates tell "leave
// unchanged" apart from "clear".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(bytes.TrimSpace(b)) == "null" {
		var zero T
		o.Null, o.Value = true, zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// Ptr returns nil when the field was absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// Present reports whether the field carries a non-null value.
func (o Optional[T]) Present() bool { return o.Set && !o.Null }
