package annotate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Record is one row of the reference sheet.
type Record struct {
	Code    string
	Base    decimal.Decimal
	LumpSum decimal.Decimal
	Bonus   decimal.Decimal
	Total   decimal.Decimal
}

// Reference maps a normalized code to its record.
type Reference map[string]Record

// LoadReference indexes the reference sheet named by layout. The first row is the header.
func LoadReference(f *excelize.File, layout Layout) (Reference, error) {
	sheet := layout.ReferenceSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &SheetNotFoundError{Sheet: sheet, Role: "reference"}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read reference sheet: %w", err)
	}

	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
	}
	cols, err := layout.Schema.Resolve(sheet, headers)
	if err != nil {
		return nil, err
	}

	ref := make(Reference, len(rows))
	if len(rows) < 2 {
		return ref, nil
	}

	divisor := decimal.NewFromInt(layout.BonusDivisor)
	for _, row := range rows[1:] {
		code := NormalizeCode(at(row, cols.Code))
		if code == "" {
			continue
		}
		base, ok := parseAmount(at(row, cols.Base))
		if !ok {
			continue
		}

		var lump decimal.Decimal
		if cols.LumpSum >= 0 {
			lump, _ = parseAmount(at(row, cols.LumpSum))
		}

		bonus := lump.Div(divisor)
		ref[code] = Record{
			Code:    code,
			Base:    base,
			LumpSum: lump,
			Bonus:   bonus,
			Total:   base.Add(bonus),
		}
	}

	return ref, nil
}

// parseAmount reads a numeric cell, tolerating thousands separators.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func at(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
