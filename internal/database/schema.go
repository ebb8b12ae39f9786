package database

// Schema is an ordered set of column names. Columns are never removed or
// reordered; Extend only appends names that are not yet present.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a schema from cols, dropping repeats.
func NewSchema(cols ...string) *Schema {
	s := &Schema{index: make(map[string]int, len(cols))}
	s.Extend(cols...)
	return s
}

// Extend appends every column in cols that the schema does not already hold,
// in the order given, and reports how many were added.
func (s *Schema) Extend(cols ...string) int {
	if s.index == nil {
		s.index = make(map[string]int, len(cols))
	}
	added := 0
	for _, col := range cols {
		if _, ok := s.index[col]; ok {
			continue
		}
		s.index[col] = len(s.columns)
		s.columns = append(s.columns, col)
		added++
	}
	return added
}

// Has reports whether col is part of the schema.
func (s *Schema) Has(col string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[col]
	return ok
}

// Columns returns a copy of the column names in order.
func (s *Schema) Columns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

// Clone returns an independent copy.
func (s *Schema) Clone() *Schema {
	return NewSchema(s.Columns()...)
}
