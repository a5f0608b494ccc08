package annotate

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type effect int

const (
	effectHighlight effect = iota + 1
	effectWinner
)

type styleKey struct {
	base   int
	effect effect
}

// styler applies fills and fonts on top of a cell's current style so number
// formats, borders and alignment survive. Derived ids are cached per workbook.
type styler struct {
	f               *excelize.File
	highlightColor  string
	winnerFontColor string
	cache           map[styleKey]int
}

func newStyler(f *excelize.File, layout Layout) *styler {
	return &styler{
		f:               f,
		highlightColor:  layout.HighlightColor,
		winnerFontColor: layout.WinnerFontColor,
		cache:           make(map[styleKey]int),
	}
}

func (s *styler) highlight(sheet, addr string) error {
	return s.apply(sheet, addr, effectHighlight)
}

func (s *styler) markWinner(sheet, addr string) error {
	return s.apply(sheet, addr, effectWinner)
}

func (s *styler) apply(sheet, addr string, e effect) error {
	base, err := s.f.GetCellStyle(sheet, addr)
	if err != nil {
		return fmt.Errorf("failed to get style of %s!%s: %w", sheet, addr, err)
	}

	key := styleKey{base: base, effect: e}
	id, ok := s.cache[key]
	if !ok {
		id, err = s.derive(base, e)
		if err != nil {
			return err
		}
		s.cache[key] = id
	}

	if err := s.f.SetCellStyle(sheet, addr, addr, id); err != nil {
		return fmt.Errorf("failed to set style of %s!%s: %w", sheet, addr, err)
	}
	return nil
}

func (s *styler) derive(base int, e effect) (int, error) {
	style, err := s.f.GetStyle(base)
	if err != nil || style == nil {
		style = &excelize.Style{}
	}

	switch e {
	case effectHighlight:
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{s.highlightColor},
			Pattern: 1,
		}

	case effectWinner:
		font := excelize.Font{}
		if style.Font != nil {
			font = *style.Font
		}
		font.Bold = true
		font.Color = s.winnerFontColor
		font.ColorTheme, font.ColorIndexed, font.ColorTint = nil, 0, 0
		style.Font = &font
	}

	id, err := s.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	return id, nil
}
