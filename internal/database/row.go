package database

// Row is a string mapping that remembers key insertion order. Setting an
// existing key updates its value in place without moving it.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// RowFrom builds a row from alternating key/value pairs. A trailing key
// without a value is ignored.
func RowFrom(pairs ...string) *Row {
	r := NewRow()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set assigns value to key.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it is present.
func (r *Row) Get(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (r *Row) Value(key string) string {
	v, _ := r.Get(key)
	return v
}

// Keys returns the keys in insertion order.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns an independent copy.
func (r *Row) Clone() *Row {
	out := &Row{
		keys:   make([]string, 0, r.Len()),
		values: make(map[string]string, r.Len()),
	}
	if r == nil {
		return out
	}
	for _, k := range r.keys {
		out.keys = append(out.keys, k)
		out.values[k] = r.values[k]
	}
	return out
}

// Overlay returns a new row holding every key of r followed by the keys of
// other that r lacks. When both rows carry a key, other's value wins and the
// key keeps r's position. Neither input is modified.
func (r *Row) Overlay(other *Row) *Row {
	out := r.Clone()
	if other == nil {
		return out
	}
	for _, k := range other.keys {
		out.Set(k, other.values[k])
	}
	return out
}

// Columns shared by the extractor, the matcher, and the merger.
const (
	ColumnSourceHTML      = "Source_HTML"
	ColumnProcessedDate   = "Processed_Date"
	ColumnMatchConfidence = "Match_Confidence"
)

var (
	artistColumns = []string{"Artist", "Artists"}
	titleColumns  = []string{"Title", "Track", "Name"}
)

// Artist returns the first non-empty of the "Artist" and "Artists" cells.
func (r *Row) Artist() string {
	return r.first(artistColumns)
}

// Title returns the first non-empty title cell, checking "Title" before
// "Track" and "Name".
func (r *Row) Title() string {
	return r.first(titleColumns)
}

func (r *Row) first(cols []string) string {
	for _, col := range cols {
		if v := r.Value(col); v != "" {
			return v
		}
	}
	return ""
}
