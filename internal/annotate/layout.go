package annotate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Mode string

const (
	// ModeFixed reads one comparison row per worksheet row with fixed block columns.
	ModeFixed Mode = "fixed"
	// ModeScan finds codes and Total labels by scanning row contents.
	ModeScan Mode = "scan"
)

// ColumnDisabled turns off an optional column (bonus, winner or note) in a layout file.
const ColumnDisabled = "-"

// Block is one person block of a comparison row, addressed by column letters.
type Block struct {
	Code  string `yaml:"code"`
	Total string `yaml:"total"`
	Bonus string `yaml:"bonus"`
}

// Layout pins the workbook shape the annotator works against.
type Layout struct {
	ReferenceSheet  string `yaml:"reference_sheet"`
	ComparisonSheet string `yaml:"comparison_sheet"`
	Mode            Mode   `yaml:"mode"`

	// HeaderRow is the 1-based row number of the comparison header.
	// Data starts on the row below it.
	HeaderRow int `yaml:"header_row"`

	Left         Block  `yaml:"left"`
	Right        Block  `yaml:"right"`
	WinnerColumn string `yaml:"winner_column"`
	NoteColumn   string `yaml:"note_column"`

	BlockMarker string `yaml:"block_marker"`
	TotalLabel  string `yaml:"total_label"`

	HighlightColor  string `yaml:"highlight_color"`
	WinnerFontColor string `yaml:"winner_font_color"`
	BonusDivisor    int64  `yaml:"bonus_divisor"`

	Schema Schema `yaml:"reference_columns"`
}

// DefaultLayout is the layout of the monthly premium rival workbook.
func DefaultLayout() Layout {
	return Layout{
		ReferenceSheet:  "Sheet1",
		ComparisonSheet: "Rival",
		Mode:            ModeFixed,
		HeaderRow:       27,
		Left:            Block{Code: "B", Total: "F", Bonus: "G"},
		Right:           Block{Code: "I", Total: "O", Bonus: "P"},
		WinnerColumn:    "Q",
		NoteColumn:      "R",
		BlockMarker:     "본부",
		TotalLabel:      "Total",
		HighlightColor:  "FFFF00",
		WinnerFontColor: "FF0000",
		BonusDivisor:    200,
		Schema:          DefaultSchema(),
	}
}

// WithDefaults fills unset fields from DefaultLayout. A block is defaulted only
// when it is entirely empty. Winner and note columns default like the rest;
// set them to ColumnDisabled to turn those writes off.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()

	if l.ReferenceSheet == "" {
		l.ReferenceSheet = d.ReferenceSheet
	}
	if l.ComparisonSheet == "" {
		l.ComparisonSheet = d.ComparisonSheet
	}
	if l.Mode == "" {
		l.Mode = d.Mode
	}
	if l.HeaderRow == 0 {
		l.HeaderRow = d.HeaderRow
	}
	if l.Left == (Block{}) {
		l.Left = d.Left
	}
	if l.Right == (Block{}) {
		l.Right = d.Right
	}
	if l.WinnerColumn == "" {
		l.WinnerColumn = d.WinnerColumn
	}
	if l.NoteColumn == "" {
		l.NoteColumn = d.NoteColumn
	}
	if l.BlockMarker == "" {
		l.BlockMarker = d.BlockMarker
	}
	if l.TotalLabel == "" {
		l.TotalLabel = d.TotalLabel
	}
	if l.HighlightColor == "" {
		l.HighlightColor = d.HighlightColor
	}
	if l.WinnerFontColor == "" {
		l.WinnerFontColor = d.WinnerFontColor
	}
	if l.BonusDivisor == 0 {
		l.BonusDivisor = d.BonusDivisor
	}
	if len(l.Schema.Code.Patterns) == 0 {
		l.Schema.Code = d.Schema.Code
	}
	if len(l.Schema.Base.Patterns) == 0 {
		l.Schema.Base = d.Schema.Base
	}
	if len(l.Schema.LumpSum.Patterns) == 0 {
		l.Schema.LumpSum = d.Schema.LumpSum
	}

	return l
}

// Validate checks the layout is usable.
func (l Layout) Validate() error {
	var errs []error

	if strings.TrimSpace(l.ReferenceSheet) == "" {
		errs = append(errs, errors.New("reference sheet must not be empty"))
	}
	if strings.TrimSpace(l.ComparisonSheet) == "" {
		errs = append(errs, errors.New("comparison sheet must not be empty"))
	}
	switch l.Mode {
	case ModeFixed, ModeScan:
	default:
		errs = append(errs, fmt.Errorf("unknown layout mode %q", l.Mode))
	}
	if l.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("header row must be 1 or greater, got %d", l.HeaderRow))
	}
	if l.BonusDivisor <= 0 {
		errs = append(errs, fmt.Errorf("bonus divisor must be positive, got %d", l.BonusDivisor))
	}
	columns := []struct {
		name, col string
		fixed     bool
	}{
		{"left.code", l.Left.Code, true},
		{"left.total", l.Left.Total, true},
		{"left.bonus", l.Left.Bonus, false},
		{"right.code", l.Right.Code, true},
		{"right.total", l.Right.Total, true},
		{"right.bonus", l.Right.Bonus, false},
		{"winner_column", l.WinnerColumn, false},
		{"note_column", l.NoteColumn, false},
	}
	for _, c := range columns {
		if !enabled(c.col) {
			if c.fixed && l.Mode == ModeFixed {
				errs = append(errs, fmt.Errorf("%s column must be set in fixed mode", c.name))
			}
			continue
		}
		if _, err := excelize.ColumnNameToNumber(c.col); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid column %q", c.name, c.col))
		}
	}
	if l.Mode == ModeScan && strings.TrimSpace(l.TotalLabel) == "" {
		errs = append(errs, errors.New("total label must be set in scan mode"))
	}

	return errors.Join(errs...)
}

// Disabled lists the optional columns that are turned off.
func (l Layout) Disabled() []string {
	var off []string
	for _, c := range []struct{ name, col string }{
		{"left.bonus", l.Left.Bonus},
		{"right.bonus", l.Right.Bonus},
		{"winner_column", l.WinnerColumn},
		{"note_column", l.NoteColumn},
	} {
		if !enabled(c.col) {
			off = append(off, c.name)
		}
	}
	return off
}

func enabled(col string) bool {
	return col != "" && col != ColumnDisabled
}

// cell returns the address of col on row; col must already be validated.
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(col), row)
}

func columnIndex(col string) int {
	n, err := excelize.ColumnNameToNumber(col)
	if err != nil {
		return -1
	}
	return n - 1
}
