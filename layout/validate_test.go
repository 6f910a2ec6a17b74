package layout

import (
	"errors"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	col := func(mut func(*ColumnSpec)) []ColumnSpec {
		c := ColumnSpec{Header: "A", DataKey: "a"}
		mut(&c)
		return []ColumnSpec{c}
	}
	opt := func(mut func(*RenderOptions)) RenderOptions {
		o := DefaultOptions()
		mut(&o)
		return o
	}
	neg := -1.0
	ok := col(func(*ColumnSpec) {})

	cases := []struct {
		name    string
		columns []ColumnSpec
		rows    []Row
		opts    RenderOptions
		code    string
		field   string
	}{
		{"no columns", nil, nil, DefaultOptions(), CodeInvalidColumns, "columns"},
		{"empty header", col(func(c *ColumnSpec) { c.Header = "" }), nil, DefaultOptions(), CodeInvalidColumns, "columns[0].header"},
		{"empty key", col(func(c *ColumnSpec) { c.DataKey = "" }), nil, DefaultOptions(), CodeInvalidColumns, "columns[0].dataKey"},
		{"negative width", col(func(c *ColumnSpec) { c.Width = Points(-5) }), nil, DefaultOptions(), CodeInvalidOption, "columns[0].width"},
		{"min above max", col(func(c *ColumnSpec) { c.MinWidth, c.MaxWidth = 60, 50 }), nil, DefaultOptions(), CodeInvalidColumns, "columns[0]"},
		{"bad align", col(func(c *ColumnSpec) { c.Align = "justify" }), nil, DefaultOptions(), CodeInvalidColumns, "columns[0].align"},
		{"nil row", ok, []Row{{"a": 1}, nil}, DefaultOptions(), CodeInvalidRows, "rows[1]"},
		{"negative startY", ok, nil, opt(func(o *RenderOptions) { o.StartY = &neg }), CodeInvalidOption, "startY"},
		{"negative margin", ok, nil, opt(func(o *RenderOptions) { o.Margin.Left = -1 }), CodeInvalidOption, "margin.left"},
		{"unknown theme", ok, nil, opt(func(o *RenderOptions) { o.Theme = "neon" }), CodeInvalidOption, "theme"},
		{"unknown page break", ok, nil, opt(func(o *RenderOptions) { o.PageBreak = "sometimes" }), CodeInvalidOption, "pageBreak"},
		{"unknown width mode", ok, nil, opt(func(o *RenderOptions) { o.ColumnWidthMode = "" }), CodeInvalidOption, "columnWidthMode"},
		{"infinite row height", ok, nil, opt(func(o *RenderOptions) { o.RowHeight = math.Inf(1) }), CodeInvalidOption, "rowHeight"},
		{"zero font size", ok, nil, opt(func(o *RenderOptions) { z := 0.0; o.HeaderStyles.FontSize = &z }), CodeInvalidOption, "headerStyles.fontSize"},
		{"color out of range", ok, nil, opt(func(o *RenderOptions) { o.BodyStyles.FillColor = RGB(0, 256, 0) }), CodeInvalidOption, "bodyStyles.fillColor"},
		{"bad font style", ok, nil, opt(func(o *RenderOptions) { s := FontStyle("oblique"); o.Styles.FontStyle = &s }), CodeInvalidOption, "styles.fontStyle"},
		{"negative border", ok, nil, opt(func(o *RenderOptions) { o.BorderStyles.Vertical = &Edge{On: true, Width: -2} }), CodeInvalidOption, "borderStyles.vertical"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.columns, tc.rows, tc.opts)
			var te *Error
			if !errors.As(err, &te) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if te.Kind != KindValidation || te.Code != tc.code || te.Field != tc.field {
				t.Fatalf("got %s/%s/%s, want validation/%s/%s", te.Kind, te.Code, te.Field, tc.code, tc.field)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	columns := []ColumnSpec{
		{Header: "A", DataKey: "a", Width: Percent(30), MinWidth: 10, MaxWidth: 100, Align: AlignRight, HeaderAlign: AlignCenter, Wrap: true},
		{Header: "B", DataKey: "b.c"},
	}
	if err := Validate(columns, []Row{{}, {"a": nil}}, DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
