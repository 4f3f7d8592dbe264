package airtable

import (
	"fmt"
	"time"

	"schallwerk/apperr"
)

// Typed field decoders. Airtable hands every field back as interface{}; each
// accessor either produces the declared type or fails fast with a decode
// error so a schema drift never propagates as a zero value.

// DecodeError builds the error all decoders return.
func decodeError(field string, want string, got interface{}) error {
	return apperr.Ef(apperr.KindUnavailable, "airtable field %q: expected %s, got %T", field, want, got)
}

// String decodes a text field. Missing fields decode to "".
func (r *Record) String(field string) (string, error) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", decodeError(field, "string", v)
	}
	return s, nil
}

// Strings decodes a linked-record or multi-select field. Missing fields
// decode to nil.
func (r *Record) Strings(field string) ([]string, error) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, decodeError(field, "array", v)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, decodeError(field, "array of strings", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// FirstString decodes the first element of a linked-record field, or "".
func (r *Record) FirstString(field string) (string, error) {
	items, err := r.Strings(field)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}
	return items[0], nil
}

// Float decodes a number field. Missing fields decode to 0.
func (r *Record) Float(field string) (float64, error) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, decodeError(field, "number", v)
	}
	return f, nil
}

// Int decodes a number field as int.
func (r *Record) Int(field string) (int, error) {
	f, err := r.Float(field)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Bool decodes a checkbox field. Missing fields decode to false, matching
// Airtable's behavior of omitting unchecked boxes.
func (r *Record) Bool(field string) (bool, error) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, decodeError(field, "bool", v)
	}
	return b, nil
}

// Time decodes an ISO 8601 date or datetime field. Missing fields decode to
// the zero time.
func (r *Record) Time(field string) (time.Time, error) {
	v, ok := r.Fields[field]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, decodeError(field, "datetime string", v)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Ef(apperr.KindUnavailable, "airtable field %q: cannot parse %q as time", field, s)
	}
	return t, nil
}

// Escape quotes a value for use inside an Airtable formula string literal.
func Escape(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r == '\'' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// EqualsFormula builds a {Field} = 'value' formula.
func EqualsFormula(field, value string) string {
	return fmt.Sprintf("{%s} = '%s'", field, Escape(value))
}

// LinkedToFormula matches rows whose linked-record field contains the given
// record, the way Airtable formulas see links (as a joined string).
func LinkedToFormula(field, recordID string) string {
	return fmt.Sprintf("FIND('%s', ARRAYJOIN({%s})) > 0", Escape(recordID), field)
}
