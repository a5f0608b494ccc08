package annotate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Winner labels written into the winner column.
const (
	WinnerLeft  = "LEFT"
	WinnerRight = "RIGHT"
	WinnerTie   = "TIE"
)

// Report summarizes one annotation run.
type Report struct {
	Rows      int `json:"rows"`
	Matched   int `json:"matched"`
	Skipped   int `json:"skipped"`
	LeftWins  int `json:"leftWins"`
	RightWins int `json:"rightWins"`
	Ties      int `json:"ties"`
}

// Annotator writes reference totals into the comparison sheet of a workbook.
type Annotator struct {
	layout Layout
	zlog   *zap.Logger
}

func NewAnnotator(layout Layout, zlog *zap.Logger) (*Annotator, error) {
	if zlog == nil {
		return nil, errors.New("logger is nil")
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	return &Annotator{
		layout: layout,
		zlog:   zlog,
	}, nil
}

// Layout returns the layout the annotator was built with.
func (a *Annotator) Layout() Layout {
	return a.layout
}

// Annotate mutates f in memory. On error f must be discarded: cells written
// before the failure are not rolled back.
func (a *Annotator) Annotate(f *excelize.File) (*Report, error) {
	for _, s := range []struct{ name, role string }{
		{a.layout.ReferenceSheet, "reference"},
		{a.layout.ComparisonSheet, "comparison"},
	} {
		if idx, err := f.GetSheetIndex(s.name); err != nil || idx < 0 {
			return nil, &SheetNotFoundError{Sheet: s.name, Role: s.role}
		}
	}

	ref, err := LoadReference(f, a.layout)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(a.layout.ComparisonSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read comparison sheet: %w", err)
	}

	w := &run{
		Annotator: a,
		f:         f,
		ref:       ref,
		styler:    newStyler(f, a.layout),
		report:    new(Report),
	}

	switch a.layout.Mode {
	case ModeScan:
		err = w.scan(rows)
	default:
		err = w.fixed(rows)
	}
	if err != nil {
		return nil, err
	}

	return w.report, nil
}

type run struct {
	*Annotator
	f      *excelize.File
	ref    Reference
	styler *styler
	report *Report
}

type hit struct {
	addr string
	rec  Record
}

// fixed handles one left/right pair per row below the header row.
func (r *run) fixed(rows [][]string) error {
	sheet := r.layout.ComparisonSheet
	leftCol, rightCol := columnIndex(r.layout.Left.Code), columnIndex(r.layout.Right.Code)

	for i := r.layout.HeaderRow; i < len(rows); i++ {
		rowNum := i + 1
		leftCode := NormalizeCode(at(rows[i], leftCol))
		rightCode := NormalizeCode(at(rows[i], rightCol))
		if leftCode == "" && rightCode == "" {
			continue
		}
		r.report.Rows++

		left, leftOK, err := r.fill(r.layout.Left, leftCode, rowNum)
		if err != nil {
			return err
		}
		right, rightOK, err := r.fill(r.layout.Right, rightCode, rowNum)
		if err != nil {
			return err
		}
		if !leftOK || !rightOK {
			continue
		}

		winner, err := r.compare(left, right)
		if err != nil {
			return err
		}

		if col := r.layout.WinnerColumn; enabled(col) {
			if err := r.f.SetCellValue(sheet, cell(col, rowNum), winner); err != nil {
				return fmt.Errorf("failed to write winner on row %d: %w", rowNum, err)
			}
		}
		if col := r.layout.NoteColumn; enabled(col) {
			note := fmt.Sprintf("L %s=%s vs R %s=%s", left.rec.Code, left.rec.Total.String(), right.rec.Code, right.rec.Total.String())
			if err := r.f.SetCellValue(sheet, cell(col, rowNum), note); err != nil {
				return fmt.Errorf("failed to write note on row %d: %w", rowNum, err)
			}
		}
	}

	return nil
}

// fill writes the total (and bonus) of code into block on rowNum.
func (r *run) fill(block Block, code string, rowNum int) (hit, bool, error) {
	if code == "" {
		return hit{}, false, nil
	}

	rec, ok := r.ref[code]
	if !ok {
		r.report.Skipped++
		r.zlog.Debug("code not in reference", zap.String("code", code), zap.Int("row", rowNum))
		return hit{}, false, nil
	}

	h := hit{addr: cell(block.Total, rowNum), rec: rec}
	if err := r.write(h.addr, rec.Total.InexactFloat64()); err != nil {
		return hit{}, false, err
	}
	if enabled(block.Bonus) {
		if err := r.write(cell(block.Bonus, rowNum), rec.Bonus.InexactFloat64()); err != nil {
			return hit{}, false, err
		}
	}
	r.report.Matched++

	return h, true, nil
}

func (r *run) write(addr string, v float64) error {
	sheet := r.layout.ComparisonSheet
	if err := r.f.SetCellValue(sheet, addr, v); err != nil {
		return fmt.Errorf("failed to write %s: %w", addr, err)
	}
	return r.styler.highlight(sheet, addr)
}

// compare marks the strictly greater total; a tie changes no font.
func (r *run) compare(left, right hit) (string, error) {
	sheet := r.layout.ComparisonSheet

	switch left.rec.Total.Cmp(right.rec.Total) {
	case 1:
		r.report.LeftWins++
		return WinnerLeft, r.styler.markWinner(sheet, left.addr)

	case -1:
		r.report.RightWins++
		return WinnerRight, r.styler.markWinner(sheet, right.addr)

	default:
		r.report.Ties++
		return WinnerTie, nil
	}
}

// scan walks person blocks: the block marker starts a block, digit-only cells
// are its codes, and the k-th Total label cell of the closing row takes the
// k-th code's total. This differs from filling only the first Total cell with
// the first code: a row holding two side-by-side blocks gets both totals and a
// winner. With a single collected code the result is the same.
func (r *run) scan(rows [][]string) error {
	var codes []string

	for i := r.layout.HeaderRow; i < len(rows); i++ {
		rowNum := i + 1
		row := rows[i]

		if containsAny(row, r.layout.BlockMarker) {
			codes = codes[:0]
		}

		var totals []int
		closing := false
		for col, v := range row {
			t := strings.TrimSpace(v)
			if isDigits(t) {
				codes = append(codes, NormalizeCode(t))
			}
			if strings.Contains(v, r.layout.TotalLabel) {
				closing = true
			}
			if t == r.layout.TotalLabel {
				totals = append(totals, col)
			}
		}
		if !closing || len(codes) == 0 {
			continue
		}
		r.report.Rows++

		var hits []hit
		for k, col := range totals {
			if k >= len(codes) {
				break
			}
			rec, ok := r.ref[codes[k]]
			if !ok {
				r.report.Skipped++
				r.zlog.Debug("code not in reference", zap.String("code", codes[k]), zap.Int("row", rowNum))
				continue
			}

			addr, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return fmt.Errorf("failed to address column %d on row %d: %w", col+1, rowNum, err)
			}
			if err := r.write(addr, rec.Total.InexactFloat64()); err != nil {
				return err
			}
			r.report.Matched++
			hits = append(hits, hit{addr: addr, rec: rec})
		}

		if len(hits) == 2 {
			if _, err := r.compare(hits[0], hits[1]); err != nil {
				return err
			}
		}
		codes = codes[:0]
	}

	return nil
}

func containsAny(row []string, marker string) bool {
	if marker == "" {
		return false
	}
	for _, v := range row {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}
