package rowparse

import (
	"strings"

	"github.com/Veraticus/policy-sync/internal/normalize"
	"github.com/Veraticus/policy-sync/internal/tabular"
)

// Columns maps each logical field to the header indexes that carry it.
type Columns struct {
	byField map[Field][]int
	headers []string
}

// ResolveColumns matches a file's headers against an alias table.
// Exact normalized matches are assigned first for every field; fields still
// unresolved then take the first unclaimed header that contains one of their
// aliases. A header is claimed by at most one field.
func ResolveColumns(headers []string, table AliasTable) *Columns {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize.Normalize(h)
	}

	cols := &Columns{
		byField: make(map[Field][]int, len(table)),
		headers: headers,
	}
	claimed := make(map[int]bool, len(headers))

	for _, alias := range table {
		for _, name := range alias.Headers {
			want := normalize.Normalize(name)
			for i, h := range normalized {
				if h == want && !claimed[i] {
					cols.byField[alias.Field] = append(cols.byField[alias.Field], i)
					claimed[i] = true
				}
			}
		}
	}

	for _, alias := range table {
		if len(cols.byField[alias.Field]) > 0 {
			continue
		}
	search:
		for _, name := range alias.Headers {
			want := normalize.Normalize(name)
			if len(want) < 3 {
				continue
			}
			for i, h := range normalized {
				if !claimed[i] && h != "" && strings.Contains(h, want) {
					cols.byField[alias.Field] = []int{i}
					claimed[i] = true
					break search
				}
			}
		}
	}

	return cols
}

// Has reports whether the file has any column for field.
func (c *Columns) Has(field Field) bool {
	return len(c.byField[field]) > 0
}

// Header returns the original header text the field resolved to.
func (c *Columns) Header(field Field) string {
	idx := c.byField[field]
	if len(idx) == 0 {
		return ""
	}
	return c.headers[idx[0]]
}

// Get returns the first non-empty cell among the field's columns.
func (c *Columns) Get(row tabular.Row, field Field) string {
	for _, i := range c.byField[field] {
		if v := row.Value(i); v != "" {
			return v
		}
	}
	return ""
}

// Missing returns the fields from want that the file has no column for.
func (c *Columns) Missing(want ...Field) []Field {
	var out []Field
	for _, f := range want {
		if !c.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
