package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义表格布局的输入与输出数据结构，供校验、布局计算与调试 JSON 共用。

// Align 表示单元格文本的水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// FontStyle 对应字体的字重/斜体组合。
type FontStyle string

const (
	FontNormal     FontStyle = "normal"
	FontBold       FontStyle = "bold"
	FontItalic     FontStyle = "italic"
	FontBoldItalic FontStyle = "bolditalic"
)

// PageBreak 是分页策略。
type PageBreak string

const (
	PageBreakAuto   PageBreak = "auto"
	PageBreakAvoid  PageBreak = "avoid"
	PageBreakAlways PageBreak = "always"
)

// Theme 决定行样式上的主题覆盖。
type Theme string

const (
	ThemeStriped Theme = "striped"
	ThemeGrid    Theme = "grid"
	ThemePlain   Theme = "plain"
	ThemeMinimal Theme = "minimal"
)

// WidthMode 选择列宽计算方式。
type WidthMode string

const (
	WidthModeAuto    WidthMode = "auto"
	WidthModeFixed   WidthMode = "fixed"
	WidthModeContent WidthMode = "content"
	WidthModeEqual   WidthMode = "equal"
)

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func (c Color) valid() bool {
	return inByte(c.R) && inByte(c.G) && inByte(c.B)
}

func inByte(v int) bool { return v >= 0 && v <= 255 }

// RGB is a small helper for building optional colors.
func RGB(r, g, b int) *Color { return &Color{R: r, G: g, B: b} }

// WidthKind 区分宽度的三种写法。
type WidthKind int

const (
	WidthAuto WidthKind = iota
	WidthAbsolute
	WidthPercent
)

// Width 是绝对值、百分比或自动宽度。
type Width struct {
	Kind  WidthKind `json:"kind"`
	Value float64   `json:"value,omitempty"`
}

// Points 返回绝对宽度。
func Points(v float64) Width { return Width{Kind: WidthAbsolute, Value: v} }

// Percent 返回百分比宽度，v 取 0-100。
func Percent(v float64) Width { return Width{Kind: WidthPercent, Value: v} }

// IsAuto reports whether no width was declared.
func (w Width) IsAuto() bool { return w.Kind == WidthAuto }

// Resolve 将宽度换算为绝对值；百分比相对 reference 计算。
func (w Width) Resolve(reference float64) (float64, bool) {
	switch w.Kind {
	case WidthAbsolute:
		return w.Value, true
	case WidthPercent:
		return reference * w.Value / 100, true
	default:
		return 0, false
	}
}

func (w Width) String() string {
	switch w.Kind {
	case WidthAbsolute:
		return strconv.FormatFloat(w.Value, 'f', -1, 64)
	case WidthPercent:
		return strconv.FormatFloat(w.Value, 'f', -1, 64) + "%"
	default:
		return "auto"
	}
}

// ParseWidth 解析 "auto"、"40%"、"120"、"30mm" 等写法。
func ParseWidth(value string) (Width, error) {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "auto") {
		return Width{}, nil
	}
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
		if err != nil {
			return Width{}, fmt.Errorf("无法解析百分比宽度 %q", value)
		}
		return Percent(f), nil
	}
	pt, err := ParsePoints(v)
	if err != nil {
		return Width{}, err
	}
	return Points(pt), nil
}

// ColumnSpec 描述一列：表头文字、取值键与宽度约束。
type ColumnSpec struct {
	Header      string  `json:"header"`
	DataKey     string  `json:"dataKey"`
	Width       Width   `json:"width"`
	MinWidth    float64 `json:"minWidth,omitempty"` // 0 表示不限制
	MaxWidth    float64 `json:"maxWidth,omitempty"` // 0 表示不限制
	Align       Align   `json:"align,omitempty"`
	HeaderAlign Align   `json:"headerAlign,omitempty"`
	Wrap        bool    `json:"wrap,omitempty"`
}

// Row 是一行数据，键与 ColumnSpec.DataKey 对应。
type Row map[string]any

// StyleSet 是某个角色解析完成后的完整样式。
type StyleSet struct {
	Font        string    `json:"font"`
	FontStyle   FontStyle `json:"fontStyle"`
	FontSize    float64   `json:"fontSize"`
	CellPadding float64   `json:"cellPadding"`
	LineHeight  float64   `json:"lineHeight"`
	FillColor   *Color    `json:"fillColor,omitempty"`
	TextColor   *Color    `json:"textColor,omitempty"`
	BorderColor *Color    `json:"borderColor,omitempty"`
}

// StyleOverride is a partial StyleSet; nil fields are left untouched by a merge.
type StyleOverride struct {
	Font        *string    `json:"font,omitempty" yaml:"font,omitempty"`
	FontStyle   *FontStyle `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty"`
	FontSize    *float64   `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	CellPadding *float64   `json:"cellPadding,omitempty" yaml:"cellPadding,omitempty"`
	LineHeight  *float64   `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	FillColor   *Color     `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	TextColor   *Color     `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	BorderColor *Color     `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
}

// Edge 是一条边框：关闭、默认线宽或指定线宽。
type Edge struct {
	On    bool    `json:"on"`
	Width float64 `json:"width,omitempty"` // <=0 时使用默认线宽
}

// EdgeOn 返回使用默认线宽的边。
func EdgeOn() Edge { return Edge{On: true} }

// EdgeWidth 返回指定线宽的边。
func EdgeWidth(w float64) Edge { return Edge{On: true, Width: w} }

// BorderSpec 记录六个独立的边框开关。Horizontal/Vertical 为内部网格线，目前仅保留配置。
type BorderSpec struct {
	Top        Edge `json:"top"`
	Right      Edge `json:"right"`
	Bottom     Edge `json:"bottom"`
	Left       Edge `json:"left"`
	Horizontal Edge `json:"horizontal"`
	Vertical   Edge `json:"vertical"`
}

// BorderOverride is a partial BorderSpec.
type BorderOverride struct {
	Top        *Edge `json:"top,omitempty"`
	Right      *Edge `json:"right,omitempty"`
	Bottom     *Edge `json:"bottom,omitempty"`
	Left       *Edge `json:"left,omitempty"`
	Horizontal *Edge `json:"horizontal,omitempty"`
	Vertical   *Edge `json:"vertical,omitempty"`
}

// Margins 以 pt 为单位。
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// MarginOverride 表示只给出部分边距的写法。
type MarginOverride struct {
	Top    *float64
	Right  *float64
	Bottom *float64
	Left   *float64
}

// Diagnostic 记录一次被吞掉的单元格或行级失败。Column 为 -1 表示整行。
type Diagnostic struct {
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Op     string `json:"op"`
	Err    string `json:"error"`
}

// RenderResult 是一次渲染结束后的快照。
type RenderResult struct {
	FinalY       float64      `json:"finalY"`
	TableWidth   float64      `json:"tableWidth"`
	TableHeight  float64      `json:"tableHeight"`
	PageCount    int          `json:"pageCount"`
	ColumnWidths []float64    `json:"columnWidths"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
}
