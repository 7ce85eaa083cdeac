package dataset

import "sort"

// Schema is the capability set of a table: which logical columns are present
// and where. It is computed once when a table is ingested and consulted by
// the cleaning stages instead of probing the header repeatedly.
type Schema struct {
	index map[Column]int
}

// DetectSchema maps header names onto logical columns. Canonical names win
// over aliases when both are present.
func DetectSchema(header []string) Schema {
	s := Schema{index: make(map[Column]int)}

	for i, h := range header {
		key := normalizeHeader(h)
		for _, c := range KnownColumns {
			if string(c) == key {
				s.index[c] = i
			}
		}
	}
	for i, h := range header {
		if c, ok := aliases[normalizeHeader(h)]; ok {
			if _, taken := s.index[c]; !taken {
				s.index[c] = i
			}
		}
	}
	return s
}

// Has reports whether c is present
func (s Schema) Has(c Column) bool {
	_, ok := s.index[c]
	return ok
}

// HasAll reports whether every column in cols is present
func (s Schema) HasAll(cols ...Column) bool {
	for _, c := range cols {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Missing returns the columns of cols that are absent
func (s Schema) Missing(cols ...Column) []Column {
	var out []Column
	for _, c := range cols {
		if !s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of c in the row, or -1
func (s Schema) Index(c Column) int {
	if i, ok := s.index[c]; ok {
		return i
	}
	return -1
}

// Columns returns the present logical columns in canonical order
func (s Schema) Columns() []Column {
	out := make([]Column, 0, len(s.index))
	for _, c := range KnownColumns {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Positions returns the present logical columns sorted by row position
func (s Schema) Positions() []Column {
	out := s.Columns()
	sort.Slice(out, func(i, j int) bool { return s.index[out[i]] < s.index[out[j]] })
	return out
}
