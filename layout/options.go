package layout

import "github.com/sirupsen/logrus"

// RenderOptions 配置一次表格渲染。零值不可直接使用，请从 DefaultOptions 开始修改。
type RenderOptions struct {
	// StartY 为 nil 时从 Margin.Top 开始。
	StartY *float64
	Margin Margins

	PageBreak       PageBreak
	Theme           Theme
	TableWidth      Width
	ColumnWidthMode WidthMode

	ShowHeader         bool
	ShowBorders        bool
	AlternateRowColors bool

	// RowHeight/HeaderHeight 为 0 时按字号与内边距推算。
	RowHeight    float64
	HeaderHeight float64

	Styles             StyleOverride
	HeaderStyles       StyleOverride
	BodyStyles         StyleOverride
	AlternateRowStyles StyleOverride
	BorderStyles       BorderOverride

	// Logger 接收被吞掉的单元格/行级失败；为 nil 时使用 logrus 标准 logger。
	Logger logrus.FieldLogger
}

// DefaultMargin 是未给出的边距取值。
const DefaultMargin = 10.0

// DefaultOptions 返回带默认值的渲染选项。
func DefaultOptions() RenderOptions {
	return RenderOptions{
		Margin:          UniformMargins(DefaultMargin),
		PageBreak:       PageBreakAuto,
		Theme:           ThemeStriped,
		ColumnWidthMode: WidthModeAuto,
		ShowHeader:      true,
		ShowBorders:     true,
	}
}

// UniformMargins 用同一个值填充四边。
func UniformMargins(v float64) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}

// NormalizeMargins 将部分边距补全，缺失的边取 DefaultMargin。
func NormalizeMargins(o MarginOverride) Margins {
	pick := func(p *float64) float64 {
		if p == nil {
			return DefaultMargin
		}
		return *p
	}
	return Margins{Top: pick(o.Top), Right: pick(o.Right), Bottom: pick(o.Bottom), Left: pick(o.Left)}
}

func (o RenderOptions) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

func (o RenderOptions) startY() float64 {
	if o.StartY != nil {
		return *o.StartY
	}
	return o.Margin.Top
}

// Measurer measures the rendered width of a string in the current font.
type Measurer interface {
	MeasureText(s string) (float64, error)
}

// Surface 是外部绘图面：负责字体度量、矢量绘制与分页。
// 坐标原点在页面左上角，单位与 RenderOptions 一致（pt）。
// 字体、颜色、线宽等状态在每次使用前都会重新设置，实现方无需在调用之间保持它们。
type Surface interface {
	Measurer
	SetFont(family string, style FontStyle) error
	SetFontSize(size float64)
	SetFillColor(r, g, b int)
	SetDrawColor(r, g, b int)
	SetTextColor(r, g, b int)
	SetLineWidth(w float64)
	FillRect(x, y, w, h float64) error
	Line(x1, y1, x2, y2 float64) error
	// Text 绘制单行文本，y 为该行的垂直中线。
	Text(s string, x, y float64) error
	AddPage() error
	PageSize() (width, height float64)
	PageCount() int
}
