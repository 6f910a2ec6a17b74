package layout_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ByLCY/papyrus-table/layout"
	"github.com/ByLCY/papyrus-table/renderer/record"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// zeroMeasurer 让所有文本宽度为 0，用于触发等分回退。
type zeroMeasurer struct{}

func (zeroMeasurer) MeasureText(string) (float64, error) { return 0, nil }

func baseStyle() layout.StyleSet {
	return layout.ResolveStyles(layout.DefaultOptions()).Base
}

func TestEqualWidthsExample(t *testing.T) {
	s := record.New()
	opts := layout.DefaultOptions()
	opts.ColumnWidthMode = layout.WidthModeEqual
	opts.TableWidth = layout.Points(100)
	columns := []layout.ColumnSpec{{Header: "A", DataKey: "a"}, {Header: "B", DataKey: "b"}}

	res, err := layout.LayoutTable(s, columns, []layout.Row{{"a": "1", "b": "2"}}, opts)
	if err != nil {
		t.Fatalf("LayoutTable: %v", err)
	}
	if diff := cmp.Diff([]float64{50, 50}, res.ColumnWidths, approx); diff != "" {
		t.Errorf("widths mismatch (-want +got):\n%s", diff)
	}
	if res.TableWidth != 100 {
		t.Errorf("table width = %g", res.TableWidth)
	}
}

func TestWidthsSumToAvailable(t *testing.T) {
	columns := []layout.ColumnSpec{
		{Header: "Name", DataKey: "name"},
		{Header: "Description", DataKey: "desc"},
		{Header: "Qty", DataKey: "qty"},
	}
	rows := []layout.Row{
		{"name": "bolt", "desc": "zinc plated hex bolt", "qty": 12},
		{"name": "washer", "desc": "flat", "qty": 400},
	}
	s := record.New()
	for _, mode := range []layout.WidthMode{layout.WidthModeEqual, layout.WidthModeAuto, layout.WidthModeFixed} {
		for _, available := range []float64{50, 300, 1200} {
			widths := layout.ColumnWidths(s, columns, rows, available, mode, baseStyle())
			total := 0.0
			for _, w := range widths {
				total += w
			}
			if math.Abs(total-available) > 1e-6 {
				t.Errorf("%s/%g: widths %v sum to %g", mode, available, widths, total)
			}
		}
	}
}

func TestContentWidths(t *testing.T) {
	s := record.New() // 10pt：每个半角字符 5pt
	columns := []layout.ColumnSpec{
		{Header: "a", DataKey: "a"},
		{Header: "bbb", DataKey: "b"},
		{Header: "pinned", DataKey: "c", MinWidth: 50, MaxWidth: 50},
		{Header: "half", DataKey: "d", Width: layout.Percent(50)},
	}
	rows := []layout.Row{{"a": "xxxxx", "c": "a very long value indeed"}}

	got := layout.ColumnWidths(s, columns, rows, 200, layout.WidthModeContent, baseStyle())
	want := []float64{25 + 10, 15 + 10, 50, 100}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("content widths mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoWidthsScaleProportionally(t *testing.T) {
	s := record.New()
	columns := []layout.ColumnSpec{{Header: "a", DataKey: "a"}, {Header: "bbb", DataKey: "b"}}
	// 内容宽度为 15 与 25，合计 40。
	cases := []struct {
		available float64
		want      []float64
	}{
		{80, []float64{30, 50}},
		{20, []float64{7.5, 12.5}},
		{40, []float64{15, 25}},
	}
	for _, tc := range cases {
		got := layout.ColumnWidths(s, columns, nil, tc.available, layout.WidthModeAuto, baseStyle())
		if diff := cmp.Diff(tc.want, got, approx); diff != "" {
			t.Errorf("available %g (-want +got):\n%s", tc.available, diff)
		}
	}
}

func TestAutoWidthsFallBackToEqual(t *testing.T) {
	style := baseStyle()
	style.CellPadding = 0
	calc := layout.WidthCalculator{Measurer: zeroMeasurer{}, Style: style}
	columns := []layout.ColumnSpec{{Header: "a", DataKey: "a"}, {Header: "b", DataKey: "b"}, {Header: "c", DataKey: "c"}}
	got := calc.Compute(columns, nil, 90, layout.WidthModeAuto)
	if diff := cmp.Diff([]float64{30, 30, 30}, got, approx); diff != "" {
		t.Errorf("zero content should split equally (-want +got):\n%s", diff)
	}
}

func TestFixedWidthsFollowAuto(t *testing.T) {
	s := record.New()
	columns := []layout.ColumnSpec{
		{Header: "A", DataKey: "a"},
		{Header: "Description", DataKey: "d"},
	}
	rows := []layout.Row{{"a": "x", "d": "a much longer description than the first column"}}
	auto := layout.ColumnWidths(s, columns, rows, 200, layout.WidthModeAuto, baseStyle())
	fixed := layout.ColumnWidths(s, columns, rows, 200, layout.WidthModeFixed, baseStyle())
	if diff := cmp.Diff(auto, fixed, approx); diff != "" {
		t.Errorf("fixed should match auto (-auto +fixed):\n%s", diff)
	}
	if fixed[0] >= fixed[1] {
		t.Errorf("widths should follow content, got %v", fixed)
	}

	declared := []layout.ColumnSpec{
		{Header: "a", DataKey: "a", Width: layout.Points(100)},
		{Header: "b", DataKey: "b", Width: layout.Points(50)},
	}
	got := layout.ColumnWidths(s, declared, nil, 300, layout.WidthModeFixed, baseStyle())
	if diff := cmp.Diff([]float64{200, 100}, got, approx); diff != "" {
		t.Errorf("declared widths scale to the available width (-want +got):\n%s", diff)
	}
}

func TestMeasureErrorsFallBackToEstimate(t *testing.T) {
	s := record.New()
	s.MeasureErr = func(text string) error {
		if text == "boom" {
			return errBoom
		}
		return nil
	}
	var reported []int
	calc := layout.WidthCalculator{
		Measurer:       s,
		Style:          baseStyle(),
		OnMeasureError: func(row, col int, err error) { reported = append(reported, row, col) },
	}
	columns := []layout.ColumnSpec{{Header: "h", DataKey: "v"}}
	got := calc.Compute(columns, []layout.Row{{"v": "boom"}}, 100, layout.WidthModeContent)
	// 估算：4 字符 × 10pt × 0.6 + 2 × 5pt 内边距
	if diff := cmp.Diff([]float64{34}, got, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 0}, reported); diff != "" {
		t.Errorf("reported (-want +got):\n%s", diff)
	}
}

func TestCellText(t *testing.T) {
	row := layout.Row{
		"name":  "Widget",
		"qty":   3,
		"price": 2.5,
		"none":  nil,
		"item":  map[string]any{"tags": []any{"new", "sale"}},
		"a.b":   "literal",
	}
	cases := map[string]string{
		"name":         "Widget",
		"qty":          "3",
		"price":        "2.5",
		"none":         "",
		"missing":      "",
		"item.tags[1]": "sale",
		"a.b":          "literal",
	}
	for key, want := range cases {
		if got := layout.CellText(row, key); got != want {
			t.Errorf("CellText(%q) = %q, want %q", key, got, want)
		}
	}
}
