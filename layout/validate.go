package layout

import (
	"fmt"
	"math"
)

// Validate 检查列、行与选项的前置条件，失败时返回 validation 类错误。
// 该函数不会调用任何绘图方法。
func Validate(columns []ColumnSpec, rows []Row, opts RenderOptions) error {
	if len(columns) == 0 {
		return validationErr(CodeInvalidColumns, "columns", "至少需要一列")
	}
	for i, col := range columns {
		field := fmt.Sprintf("columns[%d]", i)
		if col.Header == "" {
			return validationErr(CodeInvalidColumns, field+".header", "不能为空")
		}
		if col.DataKey == "" {
			return validationErr(CodeInvalidColumns, field+".dataKey", "不能为空")
		}
		if err := checkWidth(field+".width", col.Width); err != nil {
			return err
		}
		if col.MinWidth < 0 || col.MaxWidth < 0 {
			return validationErr(CodeInvalidColumns, field, "minWidth/maxWidth 不能为负")
		}
		if col.MinWidth > 0 && col.MaxWidth > 0 && col.MinWidth > col.MaxWidth {
			return validationErr(CodeInvalidColumns, field, "minWidth %g 大于 maxWidth %g", col.MinWidth, col.MaxWidth)
		}
		if !validAlign(col.Align) {
			return validationErr(CodeInvalidColumns, field+".align", "未知取值 %q", col.Align)
		}
		if !validAlign(col.HeaderAlign) {
			return validationErr(CodeInvalidColumns, field+".headerAlign", "未知取值 %q", col.HeaderAlign)
		}
	}
	for i, row := range rows {
		if row == nil {
			return validationErr(CodeInvalidRows, fmt.Sprintf("rows[%d]", i), "行不能为 nil")
		}
	}
	return validateOptions(opts)
}

func validateOptions(opts RenderOptions) error {
	if opts.StartY != nil && !nonNegative(*opts.StartY) {
		return validationErr(CodeInvalidOption, "startY", "不能为负：%g", *opts.StartY)
	}
	m := opts.Margin
	for _, side := range []struct {
		name string
		v    float64
	}{{"margin.top", m.Top}, {"margin.right", m.Right}, {"margin.bottom", m.Bottom}, {"margin.left", m.Left}} {
		if !nonNegative(side.v) {
			return validationErr(CodeInvalidOption, side.name, "不能为负：%g", side.v)
		}
	}
	switch opts.PageBreak {
	case PageBreakAuto, PageBreakAvoid, PageBreakAlways:
	default:
		return validationErr(CodeInvalidOption, "pageBreak", "未知取值 %q", opts.PageBreak)
	}
	switch opts.Theme {
	case ThemeStriped, ThemeGrid, ThemePlain, ThemeMinimal:
	default:
		return validationErr(CodeInvalidOption, "theme", "未知取值 %q", opts.Theme)
	}
	switch opts.ColumnWidthMode {
	case WidthModeAuto, WidthModeFixed, WidthModeContent, WidthModeEqual:
	default:
		return validationErr(CodeInvalidOption, "columnWidthMode", "未知取值 %q", opts.ColumnWidthMode)
	}
	if err := checkWidth("tableWidth", opts.TableWidth); err != nil {
		return err
	}
	if !nonNegative(opts.RowHeight) {
		return validationErr(CodeInvalidOption, "rowHeight", "不能为负：%g", opts.RowHeight)
	}
	if !nonNegative(opts.HeaderHeight) {
		return validationErr(CodeInvalidOption, "headerHeight", "不能为负：%g", opts.HeaderHeight)
	}
	for _, s := range []struct {
		name string
		o    StyleOverride
	}{
		{"styles", opts.Styles},
		{"headerStyles", opts.HeaderStyles},
		{"bodyStyles", opts.BodyStyles},
		{"alternateRowStyles", opts.AlternateRowStyles},
	} {
		if err := checkStyle(s.name, s.o); err != nil {
			return err
		}
	}
	b := opts.BorderStyles
	for _, e := range []struct {
		name string
		v    *Edge
	}{
		{"top", b.Top}, {"right", b.Right}, {"bottom", b.Bottom},
		{"left", b.Left}, {"horizontal", b.Horizontal}, {"vertical", b.Vertical},
	} {
		if e.v != nil && e.v.On && e.v.Width < 0 {
			return validationErr(CodeInvalidOption, "borderStyles."+e.name, "线宽不能为负：%g", e.v.Width)
		}
	}
	return nil
}

func checkStyle(name string, o StyleOverride) error {
	if o.FontStyle != nil {
		switch *o.FontStyle {
		case FontNormal, FontBold, FontItalic, FontBoldItalic:
		default:
			return validationErr(CodeInvalidOption, name+".fontStyle", "未知取值 %q", *o.FontStyle)
		}
	}
	if o.FontSize != nil && !(*o.FontSize > 0) {
		return validationErr(CodeInvalidOption, name+".fontSize", "必须大于 0：%g", *o.FontSize)
	}
	if o.CellPadding != nil && !nonNegative(*o.CellPadding) {
		return validationErr(CodeInvalidOption, name+".cellPadding", "不能为负：%g", *o.CellPadding)
	}
	if o.LineHeight != nil && !(*o.LineHeight > 0) {
		return validationErr(CodeInvalidOption, name+".lineHeight", "必须大于 0：%g", *o.LineHeight)
	}
	for _, c := range []struct {
		field string
		v     *Color
	}{{"fillColor", o.FillColor}, {"textColor", o.TextColor}, {"borderColor", o.BorderColor}} {
		if c.v != nil && !c.v.valid() {
			return validationErr(CodeInvalidOption, name+"."+c.field, "颜色通道超出 [0,255]：%v", *c.v)
		}
	}
	return nil
}

func checkWidth(field string, w Width) error {
	switch w.Kind {
	case WidthAuto:
		return nil
	case WidthAbsolute, WidthPercent:
		if !nonNegative(w.Value) {
			return validationErr(CodeInvalidOption, field, "宽度不能为负：%s", w)
		}
		return nil
	default:
		return validationErr(CodeInvalidOption, field, "未知宽度类型 %d", w.Kind)
	}
}

func validAlign(a Align) bool {
	switch a {
	case "", AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
