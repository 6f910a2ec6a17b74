package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/papyrus-table/binding"
)

// WidthCalculator 根据列定义与内容计算列宽。
type WidthCalculator struct {
	Measurer Measurer
	// Style 提供度量时的字号与内边距（通常为 base 样式）。
	Style StyleSet
	// OnMeasureError 在某个字符串度量失败时被调用，row 为 -1 表示表头。
	OnMeasureError func(row, col int, err error)
}

// ColumnWidths 是 WidthCalculator.Compute 的便捷写法，忽略度量失败。
func ColumnWidths(m Measurer, columns []ColumnSpec, rows []Row, available float64, mode WidthMode, base StyleSet) []float64 {
	return WidthCalculator{Measurer: m, Style: base}.Compute(columns, rows, available, mode)
}

// Compute 按列顺序返回每列宽度。
func (c WidthCalculator) Compute(columns []ColumnSpec, rows []Row, available float64, mode WidthMode) []float64 {
	if len(columns) == 0 {
		return nil
	}
	if mode == WidthModeEqual {
		return equalWidths(len(columns), available)
	}

	widths := c.contentWidths(columns, rows, available)
	if mode == WidthModeContent {
		return widths
	}

	// auto 与 fixed：无论内容超出还是不足，都按同一比例整体缩放。
	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return equalWidths(len(columns), available)
	}
	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

func (c WidthCalculator) contentWidths(columns []ColumnSpec, rows []Row, available float64) []float64 {
	widths := make([]float64, len(columns))
	for i, col := range columns {
		w := c.measure(-1, i, col.Header)
		for r, row := range rows {
			if dw := c.measure(r, i, CellText(row, col.DataKey)); dw > w {
				w = dw
			}
		}
		w += 2 * c.Style.CellPadding
		if declared, ok := col.Width.Resolve(available); ok {
			w = declared
		}
		widths[i] = clampWidth(col, w)
	}
	return widths
}

func (c WidthCalculator) measure(row, col int, s string) float64 {
	if s == "" {
		return 0
	}
	if c.Measurer == nil {
		return EstimateWidth(s, c.Style.FontSize)
	}
	w, err := measureOr(c.Measurer, s, c.Style.FontSize)
	if err != nil && c.OnMeasureError != nil {
		c.OnMeasureError(row, col, err)
	}
	return w
}

func equalWidths(n int, available float64) []float64 {
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = available / float64(n)
	}
	return widths
}

func clampWidth(col ColumnSpec, w float64) float64 {
	if col.MinWidth > 0 && w < col.MinWidth {
		w = col.MinWidth
	}
	if col.MaxWidth > 0 && w > col.MaxWidth {
		w = col.MaxWidth
	}
	return w
}

// CellText 取出单元格的字符串值；缺失或 nil 时为空串。DataKey 支持 a.b[0].c 路径。
func CellText(row Row, key string) string {
	if row == nil {
		return ""
	}
	v, ok := row[key]
	if !ok {
		v, ok = binding.Lookup(map[string]any(row), key)
	}
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
