package annotate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// ColumnRule declares how one reference column is found in the header row.
type ColumnRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Required bool     `yaml:"required"`
}

// Schema describes the reference sheet columns.
type Schema struct {
	Code    ColumnRule `yaml:"code"`
	Base    ColumnRule `yaml:"base"`
	LumpSum ColumnRule `yaml:"lump_sum"`
}

// DefaultSchema matches the monthly premium workbooks: a code column,
// the monthly premium (월초P) and an optional lump-sum premium (일시납).
func DefaultSchema() Schema {
	return Schema{
		Code: ColumnRule{
			Name:     "code",
			Patterns: []string{"code", "코드"},
			Required: true,
		},
		Base: ColumnRule{
			Name:     "base",
			Patterns: []string{"월초P"},
			Required: true,
		},
		LumpSum: ColumnRule{
			Name:     "lump_sum",
			Patterns: []string{"일시납"},
		},
	}
}

// Columns holds zero-based header indexes; -1 means the column is absent.
type Columns struct {
	Code    int
	Base    int
	LumpSum int
}

// Resolve locates every rule in headers. All missing required rules are
// reported together in a *MissingColumnsError.
func (s Schema) Resolve(sheet string, headers []string) (Columns, error) {
	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = foldHeader(h)
	}

	cols := Columns{
		Code:    s.Code.match(folded),
		Base:    s.Base.match(folded),
		LumpSum: s.LumpSum.match(folded),
	}

	var missing []ColumnRule
	for _, p := range []struct {
		rule ColumnRule
		idx  int
	}{
		{s.Code, cols.Code},
		{s.Base, cols.Base},
		{s.LumpSum, cols.LumpSum},
	} {
		if p.rule.Required && p.idx < 0 {
			missing = append(missing, p.rule)
		}
	}
	if len(missing) > 0 {
		return cols, &MissingColumnsError{Sheet: sheet, Columns: missing}
	}

	return cols, nil
}

// match returns the first exact folded match, else the first header containing a pattern.
func (r ColumnRule) match(folded []string) int {
	patterns := make([]string, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		if p = foldHeader(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return -1
	}

	for i, h := range folded {
		for _, p := range patterns {
			if h == p {
				return i
			}
		}
	}

	for i, h := range folded {
		for _, p := range patterns {
			if strings.Contains(h, p) {
				return i
			}
		}
	}

	return -1
}

// foldHeader folds full-width forms and case so "ＣＯＤＥ", "Code" and "code" compare equal.
func foldHeader(s string) string {
	s = width.Fold.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}
