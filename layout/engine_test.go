package layout_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ByLCY/papyrus-table/layout"
	"github.com/ByLCY/papyrus-table/renderer/record"
)

var errBoom = errors.New("boom")

func quietOptions() (layout.RenderOptions, *test.Hook) {
	logger, hook := test.NewNullLogger()
	opts := layout.DefaultOptions()
	opts.Logger = logger
	return opts, hook
}

func oneColumn() []layout.ColumnSpec {
	return []layout.ColumnSpec{{Header: "H", DataKey: "v"}}
}

func rowsOf(values ...string) []layout.Row {
	rows := make([]layout.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, layout.Row{"v": v})
	}
	return rows
}

func texts(calls []record.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		if c.Op == "text" {
			out = append(out, c.Text)
		}
	}
	return out
}

func TestLayoutTableSinglePage(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	res, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1"), opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	// 表头与数据行均为 10pt 字号 + 2×5pt 内边距 = 20pt。
	want := &layout.RenderResult{
		FinalY:       70,
		TableHeight:  60,
		PageCount:    1,
		TableWidth:   res.TableWidth,
		ColumnWidths: res.ColumnWidths,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"H", "r0", "r1"}, texts(s.Calls())); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
	if len(s.Ops("addPage")) != 0 {
		t.Errorf("unexpected page break")
	}
}

func TestLayoutTableStartY(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	start := 100.0
	opts.StartY = &start
	opts.ShowHeader = false
	res, err := layout.LayoutTable(s, oneColumn(), rowsOf("x"), opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	if res.FinalY != 120 || res.TableHeight != 20 {
		t.Errorf("FinalY/TableHeight = %g/%g", res.FinalY, res.TableHeight)
	}
}

func TestAutoPageBreak(t *testing.T) {
	// 页面高 100，上下边距 10：内容区 [10, 90]。表头 20 + 3 行 × 20 恰好填满，第 4 行换页。
	s := record.NewSize(200, 100)
	opts, hook := quietOptions()
	opts.Logger.(*logrus.Logger).SetLevel(logrus.DebugLevel)

	res, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1", "r2", "r3"), opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	if got := len(s.Ops("addPage")); got != 1 {
		t.Fatalf("expected exactly one AddPage, got %d", got)
	}
	if res.PageCount != 2 || res.FinalY != 50 {
		t.Errorf("PageCount/FinalY = %d/%g", res.PageCount, res.FinalY)
	}

	var page2 []record.Call
	for _, c := range s.Calls() {
		if c.Page == 2 && c.Op != "addPage" {
			page2 = append(page2, c)
		}
	}
	if diff := cmp.Diff([]string{"H", "r3"}, texts(page2)); diff != "" {
		t.Errorf("page 2 should redraw the header before the row (-want +got):\n%s", diff)
	}
	// 第二页的表头背景从上边距开始。
	rects := []record.Call{}
	for _, c := range page2 {
		if c.Op == "rect" {
			rects = append(rects, c)
		}
	}
	if len(rects) == 0 || rects[0].Args[1] != 10 {
		t.Errorf("header on page 2 should start at margin top: %+v", rects)
	}

	var sawBreak bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.DebugLevel && strings.Contains(e.Message, "page break") {
			sawBreak = true
		}
	}
	if !sawBreak {
		t.Errorf("expected a debug log entry for the page break")
	}
}

func TestOversizedRowOnFreshPageDoesNotLoop(t *testing.T) {
	s := record.NewSize(200, 100)
	opts, _ := quietOptions()
	opts.RowHeight = 75 // 表头 20 + 75 超出内容区
	res, err := layout.LayoutTable(s, oneColumn(), rowsOf("a", "b"), opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	// 每行都会触发一次换页，但新页上的第一行直接绘制。
	if got := len(s.Ops("addPage")); got != 2 {
		t.Errorf("expected 2 page breaks, got %d", got)
	}
	if res.PageCount != 3 {
		t.Errorf("PageCount = %d", res.PageCount)
	}
}

func TestPageBreakPoliciesOtherThanAutoNeverBreak(t *testing.T) {
	for _, policy := range []layout.PageBreak{layout.PageBreakAvoid, layout.PageBreakAlways} {
		s := record.NewSize(200, 100)
		opts, _ := quietOptions()
		opts.PageBreak = policy
		res, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1", "r2", "r3", "r4"), opts)
		if err != nil {
			t.Fatalf("%s: %v", policy, err)
		}
		if res.PageCount != 1 || len(s.Ops("addPage")) != 0 {
			t.Errorf("%s: expected no page breaks, got %d pages", policy, res.PageCount)
		}
		if res.FinalY <= 90 {
			t.Errorf("%s: rows should overflow the page, FinalY=%g", policy, res.FinalY)
		}
	}
}

func TestWrappedRowHeight(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	opts.ShowHeader = false
	opts.ColumnWidthMode = layout.WidthModeContent
	columns := []layout.ColumnSpec{{Header: "T", DataKey: "t", Width: layout.Points(60), Wrap: true}}

	// 可用文本宽度 60-2×5=50；"aaa bbb" 为 35pt，再加 " ccc" 为 55pt。
	res, err := layout.LayoutTable(s, columns, []layout.Row{{"t": "aaa bbb ccc"}}, opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	if diff := cmp.Diff([]string{"aaa bbb", "ccc"}, texts(s.Calls())); diff != "" {
		t.Errorf("wrapped lines (-want +got):\n%s", diff)
	}
	// 2 行 × 1.2 × 10pt + 2 × 5pt
	if res.FinalY != 10+34 {
		t.Errorf("FinalY = %g, want 44", res.FinalY)
	}
	var ys []float64
	for _, c := range s.Ops("text") {
		ys = append(ys, c.Args[1])
	}
	if diff := cmp.Diff([]float64{21, 33}, ys, approx); diff != "" {
		t.Errorf("line midlines (-want +got):\n%s", diff)
	}
}

func TestMissingKeyRendersEmptyCell(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	columns := []layout.ColumnSpec{{Header: "A", DataKey: "a"}, {Header: "B", DataKey: "b"}}
	res, err := layout.LayoutTable(s, columns, []layout.Row{{"a": "only"}}, opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("missing key should not be a failure: %+v", res.Diagnostics)
	}
	if diff := cmp.Diff([]string{"A", "B", "only"}, texts(s.Calls())); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}
}

func TestStripedThemeFillsOddRows(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	opts.ShowHeader = false
	if _, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1", "r2", "r3"), opts); err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	var fills [][]float64
	var rectYs []float64
	for _, c := range s.Calls() {
		switch c.Op {
		case "fillColor":
			fills = append(fills, c.Args)
		case "rect":
			rectYs = append(rectYs, c.Args[1])
		}
	}
	want := [][]float64{{245, 245, 245}, {245, 245, 245}}
	if diff := cmp.Diff(want, fills); diff != "" {
		t.Errorf("fills (-want +got):\n%s", diff)
	}
	// 第 1、3 行（从 0 开始）
	if diff := cmp.Diff([]float64{30, 70}, rectYs); diff != "" {
		t.Errorf("filled rows (-want +got):\n%s", diff)
	}
}

func TestMinimalThemeOverridesFillAndBorder(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	opts.ShowHeader = false
	opts.Theme = layout.ThemeMinimal
	opts.BodyStyles.FillColor = layout.RGB(1, 2, 3)
	if _, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1"), opts); err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	for _, c := range s.Ops("fillColor") {
		if diff := cmp.Diff([]float64{255, 255, 255}, c.Args); diff != "" {
			t.Errorf("fill (-want +got):\n%s", diff)
		}
	}
	for _, c := range s.Ops("drawColor") {
		if diff := cmp.Diff([]float64{230, 230, 230}, c.Args); diff != "" {
			t.Errorf("border (-want +got):\n%s", diff)
		}
	}
	if len(s.Ops("fillColor")) != 2 {
		t.Errorf("every row should be filled")
	}
}

func TestBordersDisabled(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	opts.ShowBorders = false
	if _, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0"), opts); err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	if n := len(s.Ops("line")); n != 0 {
		t.Errorf("expected no border lines, got %d", n)
	}

	s = record.New()
	opts.BorderStyles.Bottom = &layout.Edge{On: true, Width: 2}
	if _, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0"), opts); err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	lines := s.Ops("line")
	if len(lines) != 2 { // 表头与数据行各一条底边
		t.Fatalf("expected 2 bottom edges, got %d", len(lines))
	}
	widths := s.Ops("lineWidth")
	if len(widths) == 0 || widths[0].Args[0] != 2 {
		t.Errorf("bottom edge width should be 2: %+v", widths)
	}
}

func TestAlignment(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	opts.ShowHeader = false
	opts.ColumnWidthMode = layout.WidthModeFixed
	opts.TableWidth = layout.Points(300)
	columns := []layout.ColumnSpec{
		{Header: "L", DataKey: "v", Width: layout.Points(100)},
		{Header: "C", DataKey: "v", Width: layout.Points(100), Align: layout.AlignCenter},
		{Header: "R", DataKey: "v", Width: layout.Points(100), Align: layout.AlignRight},
	}
	if _, err := layout.LayoutTable(s, columns, rowsOf("abcd"), opts); err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	// 表格占满 tableWidth 300，不再居中，从左边距开始。文本宽 20。
	startX := 10.0
	var xs []float64
	for _, c := range s.Ops("text") {
		xs = append(xs, c.Args[0]-startX)
	}
	if diff := cmp.Diff([]float64{5, 100 + 40, 200 + 75}, xs, approx); diff != "" {
		t.Errorf("text x offsets (-want +got):\n%s", diff)
	}
}

func firstRectX(t *testing.T, s *record.Surface) float64 {
	t.Helper()
	rects := s.Ops("rect")
	if len(rects) == 0 {
		t.Fatalf("no rect drawn")
	}
	return rects[0].Args[0]
}

func TestTableWidthClampedToPage(t *testing.T) {
	s := record.NewSize(200, 100)
	opts, _ := quietOptions()
	opts.ColumnWidthMode = layout.WidthModeEqual
	opts.TableWidth = layout.Points(1000)
	columns := []layout.ColumnSpec{{Header: "A", DataKey: "a"}, {Header: "B", DataKey: "b"}}
	res, err := layout.LayoutTable(s, columns, nil, opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	// 内容区 200-2×10=180
	if res.TableWidth != 180 {
		t.Errorf("table width = %g, want 180", res.TableWidth)
	}
	if diff := cmp.Diff([]float64{90, 90}, res.ColumnWidths, approx); diff != "" {
		t.Errorf("widths (-want +got):\n%s", diff)
	}
	if x := firstRectX(t, s); x != 10 {
		t.Errorf("table should start at the left margin, got %g", x)
	}
}

func TestTableHorizontalStart(t *testing.T) {
	cases := []struct {
		name    string
		mode    layout.WidthMode
		columns []layout.ColumnSpec
		want    float64
	}{
		{
			name:    "fills table width",
			mode:    layout.WidthModeEqual,
			columns: []layout.ColumnSpec{{Header: "A", DataKey: "a"}, {Header: "B", DataKey: "b"}},
			want:    10,
		},
		{
			name:    "narrower than table width",
			mode:    layout.WidthModeContent,
			columns: []layout.ColumnSpec{{Header: "A", DataKey: "a", Width: layout.Points(40)}},
			want:    10 + (100-40)/2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := record.NewSize(200, 100)
			opts, _ := quietOptions()
			opts.ColumnWidthMode = tc.mode
			opts.TableWidth = layout.Points(100)
			if _, err := layout.LayoutTable(s, tc.columns, nil, opts); err != nil {
				t.Fatalf("LayoutTable: %v", err)
			}
			if x := firstRectX(t, s); x != tc.want {
				t.Errorf("header starts at %g, want %g", x, tc.want)
			}
		})
	}
}

func TestValidationErrorMakesNoCalls(t *testing.T) {
	s := record.New()
	opts, _ := quietOptions()
	_, err := layout.LayoutTable(s, nil, rowsOf("x"), opts)
	if !errors.Is(err, layout.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, &layout.Error{Kind: layout.KindValidation, Code: layout.CodeInvalidColumns}) {
		t.Errorf("expected invalid_columns code, got %v", err)
	}
	if n := len(s.Calls()); n != 0 {
		t.Errorf("validation failure should not draw, got %d calls", n)
	}

	if _, err := layout.LayoutTable(nil, oneColumn(), nil, opts); !errors.Is(err, layout.ErrValidation) {
		t.Errorf("nil surface should be a validation error, got %v", err)
	}
}

func TestHeaderDrawFailureIsFatal(t *testing.T) {
	s := record.New()
	s.DrawErr = func(op, text string) error {
		if op == "text" && text == "H" {
			return errBoom
		}
		return nil
	}
	opts, _ := quietOptions()
	res, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0"), opts)
	if res != nil {
		t.Errorf("expected nil result")
	}
	if !errors.Is(err, layout.ErrRender) || !errors.Is(err, errBoom) {
		t.Fatalf("expected render error wrapping the cause, got %v", err)
	}
	var te *layout.Error
	if !errors.As(err, &te) || te.Code != layout.CodeHeaderDraw {
		t.Errorf("expected header_draw_failed, got %v", err)
	}
	for _, text := range texts(s.Calls()) {
		if text == "r0" {
			t.Errorf("rows must not be drawn after a header failure")
		}
	}
}

func TestAddPageFailureIsFatal(t *testing.T) {
	s := record.NewSize(200, 100)
	s.AddPageErr = func(page int) error { return fmt.Errorf("page %d: %w", page, errBoom) }
	opts, _ := quietOptions()
	_, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1", "r2", "r3"), opts)
	if !errors.Is(err, &layout.Error{Kind: layout.KindRender, Code: layout.CodeAddPage}) {
		t.Fatalf("expected add_page_failed, got %v", err)
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("cause should be preserved: %v", err)
	}
}

func TestAddPagePanicIsRecovered(t *testing.T) {
	s := &panickySurface{Surface: record.NewSize(200, 100)}
	opts, _ := quietOptions()
	_, err := layout.LayoutTable(s, oneColumn(), rowsOf("r0", "r1", "r2", "r3"), opts)
	if !errors.Is(err, layout.ErrRender) {
		t.Fatalf("expected render error, got %v", err)
	}
}

type panickySurface struct {
	*record.Surface
}

func (p *panickySurface) AddPage() error { panic("no more paper") }

func TestCellFailuresBecomeDiagnostics(t *testing.T) {
	s := record.New()
	s.DrawErr = func(op, text string) error {
		if op == "text" && text == "bad" {
			return errBoom
		}
		return nil
	}
	opts, hook := quietOptions()
	columns := []layout.ColumnSpec{{Header: "A", DataKey: "a"}, {Header: "B", DataKey: "b"}}
	rows := []layout.Row{{"a": "ok", "b": "bad"}, {"a": "next", "b": "fine"}}

	res, err := layout.LayoutTable(s, columns, rows, opts)
	if err != nil {
		t.Fatalf("cell failures must not abort: %v", err)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Row != 0 || d.Column != 1 || d.Op != "draw" || !strings.Contains(d.Err, "boom") {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if diff := cmp.Diff([]string{"A", "B", "ok", "bad", "next", "fine"}, texts(s.Calls())); diff != "" {
		t.Errorf("rendering should continue (-want +got):\n%s", diff)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel || entry.Data["op"] != "draw" {
		t.Errorf("expected a warning log entry, got %+v", entry)
	}
}

func TestMeasureFailureIsReported(t *testing.T) {
	s := record.New()
	s.MeasureErr = func(text string) error {
		if text == "odd" {
			return errBoom
		}
		return nil
	}
	opts, _ := quietOptions()
	columns := []layout.ColumnSpec{{Header: "A", DataKey: "a", Align: layout.AlignRight}}
	res, err := layout.LayoutTable(s, columns, []layout.Row{{"a": "odd"}}, opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	// 列宽计算与右对齐定位各度量一次。
	if len(res.Diagnostics) != 2 {
		t.Fatalf("expected two measure diagnostics, got %+v", res.Diagnostics)
	}
	for _, d := range res.Diagnostics {
		if d.Op != "measure" || d.Row != 0 || d.Column != 0 {
			t.Errorf("unexpected diagnostic %+v", d)
		}
	}
}

func TestWrapMeasureFailureIsReported(t *testing.T) {
	s := record.New()
	s.MeasureErr = func(text string) error {
		if text == "aaa bbb" {
			return errBoom
		}
		return nil
	}
	opts, _ := quietOptions()
	opts.ShowHeader = false
	opts.ColumnWidthMode = layout.WidthModeContent
	columns := []layout.ColumnSpec{{Header: "T", DataKey: "t", Width: layout.Points(60), Wrap: true}}
	res, err := layout.LayoutTable(s, columns, []layout.Row{{"t": "aaa bbb ccc"}}, opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	// 估算宽度 7×10×0.6=42 仍放得下，折行结果不变。
	if diff := cmp.Diff([]string{"aaa bbb", "ccc"}, texts(s.Calls())); diff != "" {
		t.Errorf("wrapped lines (-want +got):\n%s", diff)
	}
	want := []layout.Diagnostic{{Row: 0, Column: 0, Op: "measure", Err: "boom"}}
	if diff := cmp.Diff(want, res.Diagnostics); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
}

func TestErrorFormatting(t *testing.T) {
	err := &layout.Error{Kind: layout.KindValidation, Code: layout.CodeInvalidOption, Field: "theme", Msg: "未知取值"}
	if got := err.Error(); got != "table validation error [invalid_option] theme: 未知取值" {
		t.Errorf("unexpected message %q", got)
	}
	wrapped := &layout.Error{Kind: layout.KindRender, Code: layout.CodeAddPage, Err: errBoom}
	if !errors.Is(wrapped, errBoom) || errors.Is(wrapped, layout.ErrValidation) {
		t.Errorf("errors.Is should follow Kind and the wrapped cause")
	}
	if layout.KindInternal.String() != "internal" {
		t.Errorf("unexpected kind name %s", layout.KindInternal)
	}
}
