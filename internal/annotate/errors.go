package annotate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreadableWorkbook is returned when excelize cannot open the uploaded file.
var ErrUnreadableWorkbook = errors.New("unreadable workbook")

// SheetNotFoundError reports a sheet the layout requires but the workbook lacks.
type SheetNotFoundError struct {
	Sheet string
	Role  string // "reference" or "comparison"
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("%s sheet %q does not exist", e.Role, e.Sheet)
}

// MissingColumnsError lists every required reference column that no header satisfied.
type MissingColumnsError struct {
	Sheet   string
	Columns []ColumnRule
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		names = append(names, fmt.Sprintf("%s (%s)", c.Name, strings.Join(c.Patterns, "|")))
	}
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(names, ", "))
}
