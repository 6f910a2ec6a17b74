package layout

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// LayoutState 是单次渲染中唯一的可变状态。表头步骤与行步骤接收当前状态并返回更新后的状态。
type LayoutState struct {
	CursorY      float64
	ColumnWidths []float64 // 渲染开始时计算一次，之后不再改变
	StartX       float64
	PageTop      float64
	PageBottom   float64
	// PageFresh 表示当前页由分页产生且尚未绘制任何数据行。
	PageFresh bool
}

type engine struct {
	surface Surface
	columns []ColumnSpec
	rows    []Row
	opts    RenderOptions
	styles  Styles
	borders BorderSpec
	log     logrus.FieldLogger
	diags   []Diagnostic
}

// LayoutTable 在 surface 上排版并绘制整张表格，必要时分页。
// 校验失败时不会进行任何绘制；只有表头绘制失败与新增页面失败会中止渲染。
func LayoutTable(surface Surface, columns []ColumnSpec, rows []Row, opts RenderOptions) (res *RenderResult, err error) {
	if surface == nil {
		return nil, validationErr(CodeInvalidOption, "surface", "绘图面不能为空")
	}
	if err := Validate(columns, rows, opts); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = wrapUnexpected(fmt.Errorf("panic: %v", r))
		}
	}()

	e := &engine{
		surface: surface,
		columns: columns,
		rows:    rows,
		opts:    opts,
		styles:  ResolveStyles(opts),
		borders: ResolveBorders(opts.ShowBorders, opts.BorderStyles),
		log:     opts.logger(),
	}

	state := e.initialState()
	if opts.ShowHeader {
		if state, err = e.headerStep(state); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		if state, err = e.rowStep(state, i, row); err != nil {
			return nil, err
		}
	}
	return e.result(state), nil
}

// initialState 计算列宽与表格起点，此后列宽固定。
func (e *engine) initialState() LayoutState {
	pageW, pageH := e.surface.PageSize()
	m := e.opts.Margin
	contentWidth := math.Max(pageW-m.Left-m.Right, 0)
	available := contentWidth
	// 表格宽度不超过页面内容区。
	if w, ok := e.opts.TableWidth.Resolve(contentWidth); ok {
		available = math.Min(w, contentWidth)
	}

	base := e.styles.Base
	if err := e.applyFont(base); err != nil {
		e.report(-1, -1, "font", err)
	}
	calc := WidthCalculator{
		Measurer: e.surface,
		Style:    base,
		OnMeasureError: func(row, col int, err error) {
			e.report(row, col, "measure", err)
		},
	}
	widths := calc.Compute(e.columns, e.rows, available, e.opts.ColumnWidthMode)

	startX := m.Left
	if total := sum(widths); total < available {
		startX = m.Left + (available-total)/2
	}
	return LayoutState{
		CursorY:      e.opts.startY(),
		ColumnWidths: widths,
		StartX:       startX,
		PageTop:      m.Top,
		PageBottom:   pageH - m.Bottom,
	}
}

// headerStep 绘制表头并把游标下移表头高度。表头不折行。
func (e *engine) headerStep(state LayoutState) (LayoutState, error) {
	style := e.styles.Header
	height := math.Max(e.opts.HeaderHeight, baselineHeight(style))
	err := guard(func() error {
		x := state.StartX
		for i, col := range e.columns {
			w := state.ColumnWidths[i]
			align := col.HeaderAlign
			if align == "" {
				align = col.Align
			}
			if err := e.drawCell(-1, i, x, state.CursorY, w, height, style, []string{col.Header}, align); err != nil {
				return fmt.Errorf("列 %d (%s): %w", i, col.Header, err)
			}
			x += w
		}
		return nil
	})
	if err != nil {
		return state, renderErr(CodeHeaderDraw, err)
	}
	state.CursorY += height
	return state, nil
}

// rowStep 测量、必要时分页，然后绘制一行。单元格失败只记录诊断；整行失败时按兜底高度推进游标。
func (e *engine) rowStep(state LayoutState, index int, row Row) (LayoutState, error) {
	style := rowStyle(e.styles, e.opts.Theme, e.opts.AlternateRowColors, index)
	fallback := math.Max(e.opts.RowHeight, baselineHeight(style))

	var (
		texts  []string
		lines  [][]string
		height float64
	)
	if err := guard(func() error {
		texts, lines, height = e.measureRow(state, index, row, style)
		return nil
	}); err != nil {
		e.report(index, -1, "measure", err)
		state.CursorY += fallback
		state.PageFresh = false
		return state, nil
	}

	if e.shouldBreak(state, height) {
		var err error
		if state, err = e.pageBreak(state); err != nil {
			return state, err
		}
	}

	if err := guard(func() error {
		x := state.StartX
		for i, col := range e.columns {
			w := state.ColumnWidths[i]
			if err := e.drawCell(index, i, x, state.CursorY, w, height, style, lines[i], col.Align); err != nil {
				e.report(index, i, "draw", fmt.Errorf("%q: %w", texts[i], err))
			}
			x += w
		}
		return nil
	}); err != nil {
		e.report(index, -1, "draw", err)
	}
	state.CursorY += height
	state.PageFresh = false
	return state, nil
}

// measureRow 返回每个单元格的原文、折行结果与行高。
func (e *engine) measureRow(state LayoutState, index int, row Row, style StyleSet) ([]string, [][]string, float64) {
	height := baselineHeight(style)
	if e.opts.RowHeight > 0 {
		height = e.opts.RowHeight
	}
	lineHeight := style.LineHeight * style.FontSize
	fontReady := false

	texts := make([]string, len(e.columns))
	lines := make([][]string, len(e.columns))
	for i, col := range e.columns {
		texts[i] = CellText(row, col.DataKey)
		if !col.Wrap {
			lines[i] = []string{texts[i]}
			continue
		}
		if !fontReady {
			if err := e.applyFont(style); err != nil {
				e.report(index, i, "font", err)
			}
			fontReady = true
		}
		maxWidth := state.ColumnWidths[i] - 2*style.CellPadding
		lines[i] = wrapText(e.surface, texts[i], maxWidth, style.FontSize, func(err error) {
			e.report(index, i, "measure", err)
		})
		if n := len(lines[i]); n > 1 {
			height = math.Max(height, float64(n)*lineHeight+2*style.CellPadding)
		}
	}
	return texts, lines, height
}

func (e *engine) shouldBreak(state LayoutState, height float64) bool {
	if e.opts.PageBreak != PageBreakAuto || state.PageFresh {
		return false
	}
	return state.CursorY+height > state.PageBottom
}

// pageBreak 新增一页，游标回到上边距，并在开启表头时重绘表头。
func (e *engine) pageBreak(state LayoutState) (LayoutState, error) {
	e.log.WithField("page", e.surface.PageCount()+1).Debug("table: page break")
	if err := guard(e.surface.AddPage); err != nil {
		return state, renderErr(CodeAddPage, err)
	}
	_, pageH := e.surface.PageSize()
	state.PageTop = e.opts.Margin.Top
	state.PageBottom = pageH - e.opts.Margin.Bottom
	state.CursorY = state.PageTop
	if e.opts.ShowHeader {
		var err error
		if state, err = e.headerStep(state); err != nil {
			return state, err
		}
	}
	state.PageFresh = true
	return state, nil
}

// drawCell 绘制一个单元格：背景、四条外框与垂直居中的文本。
func (e *engine) drawCell(row, col int, x, y, w, h float64, style StyleSet, lines []string, align Align) error {
	s := e.surface
	if c := style.FillColor; c != nil {
		s.SetFillColor(c.R, c.G, c.B)
		if err := s.FillRect(x, y, w, h); err != nil {
			return fmt.Errorf("fill: %w", err)
		}
	}

	border := Color{}
	if style.BorderColor != nil {
		border = *style.BorderColor
	}
	edges := []struct {
		edge           Edge
		x1, y1, x2, y2 float64
	}{
		{e.borders.Top, x, y, x + w, y},
		{e.borders.Right, x + w, y, x + w, y + h},
		{e.borders.Bottom, x, y + h, x + w, y + h},
		{e.borders.Left, x, y, x, y + h},
	}
	for _, ed := range edges {
		if !ed.edge.On {
			continue
		}
		s.SetDrawColor(border.R, border.G, border.B)
		s.SetLineWidth(ed.edge.width())
		if err := s.Line(ed.x1, ed.y1, ed.x2, ed.y2); err != nil {
			return fmt.Errorf("border: %w", err)
		}
	}

	if err := e.applyFont(style); err != nil {
		return err
	}
	text := Color{}
	if style.TextColor != nil {
		text = *style.TextColor
	}
	s.SetTextColor(text.R, text.G, text.B)

	lineHeight := style.LineHeight * style.FontSize
	top := y + (h-float64(len(lines))*lineHeight)/2
	for i, line := range lines {
		if line == "" {
			continue
		}
		tx := x + style.CellPadding
		if align == AlignCenter || align == AlignRight {
			tw, err := measureOr(s, line, style.FontSize)
			if err != nil {
				e.report(row, col, "measure", err)
			}
			if align == AlignCenter {
				tx = x + (w-tw)/2
			} else {
				tx = x + w - tw - style.CellPadding
			}
		}
		mid := top + lineHeight*(float64(i)+0.5)
		if err := s.Text(line, tx, mid); err != nil {
			return fmt.Errorf("text: %w", err)
		}
	}
	return nil
}

func (e *engine) applyFont(style StyleSet) error {
	if err := e.surface.SetFont(style.Font, style.FontStyle); err != nil {
		return fmt.Errorf("font %s/%s: %w", style.Font, style.FontStyle, err)
	}
	e.surface.SetFontSize(style.FontSize)
	return nil
}

// report 记录一次被吞掉的失败，并写入诊断列表。
func (e *engine) report(row, col int, op string, err error) {
	e.log.WithFields(logrus.Fields{
		"row":    row,
		"column": col,
		"op":     op,
	}).WithError(err).Warn("table: recovered from cell failure")
	e.diags = append(e.diags, Diagnostic{Row: row, Column: col, Op: op, Err: err.Error()})
}

func (e *engine) result(state LayoutState) *RenderResult {
	return &RenderResult{
		FinalY:       state.CursorY,
		TableWidth:   sum(state.ColumnWidths),
		TableHeight:  state.CursorY - e.opts.startY(),
		PageCount:    e.surface.PageCount(),
		ColumnWidths: state.ColumnWidths,
		Diagnostics:  e.diags,
	}
}

// baselineHeight 是单行文本加上下内边距的高度。
func baselineHeight(style StyleSet) float64 {
	return style.FontSize + 2*style.CellPadding
}

// guard 执行 fn，并把其中的 panic 转换为错误。
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
