package annotate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// testLayout is the default layout with the comparison header on row 1.
func testLayout() Layout {
	l := DefaultLayout()
	l.HeaderRow = 1
	return l
}

// newWorkbook builds a workbook with a reference sheet from rows (header first)
// and a Rival sheet from cell values keyed by address.
func newWorkbook(t *testing.T, reference [][]any, rival map[string]any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	for i, row := range reference {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}

	if rival != nil {
		_, err := f.NewSheet("Rival")
		require.NoError(t, err)
		for addr, v := range rival {
			require.NoError(t, f.SetCellValue("Rival", addr, v))
		}
	}

	return f
}

func referenceRows(rows ...[]any) [][]any {
	return append([][]any{{"코드", "월초P", "일시납"}}, rows...)
}

func cellValue(t *testing.T, f *excelize.File, addr string) string {
	t.Helper()

	v, err := f.GetCellValue("Rival", addr)
	require.NoError(t, err)
	return v
}

func cellStyle(t *testing.T, f *excelize.File, addr string) *excelize.Style {
	t.Helper()

	id, err := f.GetCellStyle("Rival", addr)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	return style
}

func isBold(s *excelize.Style) bool {
	return s != nil && s.Font != nil && s.Font.Bold
}

func isHighlighted(s *excelize.Style) bool {
	return s != nil && s.Fill.Type == "pattern" && s.Fill.Pattern == 1
}
