package layout

// 样式按固定顺序逐层浅合并，后一层中已设置的字段整体覆盖前一层（颜色不做逐通道合并）。
//
//	base      = 内置默认 ← Styles
//	header    = base ← 内置表头默认 ← HeaderStyles
//	body      = base ← BodyStyles
//	alternate = base ← 内置交替行默认 ← AlternateRowStyles
//
// 行的最终样式再由 rowStyle 叠加交替行与主题规则。

// DefaultBorderWidth 是边框开启但未给出线宽时使用的线宽（pt）。
const DefaultBorderWidth = 0.5

var (
	builtinBase = StyleSet{
		Font:        "helvetica",
		FontStyle:   FontNormal,
		FontSize:    10,
		CellPadding: 5,
		LineHeight:  1.2,
		TextColor:   RGB(30, 30, 30),
		BorderColor: RGB(200, 200, 200),
	}
	builtinHeader = StyleOverride{
		FontStyle: fontStylePtr(FontBold),
		FillColor: RGB(41, 128, 185),
		TextColor: RGB(255, 255, 255),
	}
	builtinAlternate = StyleOverride{
		FillColor: RGB(245, 245, 245),
	}
	minimalTheme = StyleOverride{
		FillColor:   RGB(255, 255, 255),
		BorderColor: RGB(230, 230, 230),
	}
)

func fontStylePtr(s FontStyle) *FontStyle { return &s }

// Styles 是四个角色解析后的样式。
type Styles struct {
	Base      StyleSet `json:"base"`
	Header    StyleSet `json:"header"`
	Body      StyleSet `json:"body"`
	Alternate StyleSet `json:"alternate"`
}

// Merge 依次把 overrides 叠加到 base 上并返回新值，base 本身不被修改。
func Merge(base StyleSet, overrides ...StyleOverride) StyleSet {
	out := base
	out.FillColor = copyColor(base.FillColor)
	out.TextColor = copyColor(base.TextColor)
	out.BorderColor = copyColor(base.BorderColor)
	for _, o := range overrides {
		if o.Font != nil {
			out.Font = *o.Font
		}
		if o.FontStyle != nil {
			out.FontStyle = *o.FontStyle
		}
		if o.FontSize != nil {
			out.FontSize = *o.FontSize
		}
		if o.CellPadding != nil {
			out.CellPadding = *o.CellPadding
		}
		if o.LineHeight != nil {
			out.LineHeight = *o.LineHeight
		}
		if o.FillColor != nil {
			out.FillColor = copyColor(o.FillColor)
		}
		if o.TextColor != nil {
			out.TextColor = copyColor(o.TextColor)
		}
		if o.BorderColor != nil {
			out.BorderColor = copyColor(o.BorderColor)
		}
	}
	return out
}

func copyColor(c *Color) *Color {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// ResolveStyles 计算四个角色的完整样式。
func ResolveStyles(opts RenderOptions) Styles {
	base := Merge(builtinBase, opts.Styles)
	return Styles{
		Base:      base,
		Header:    Merge(base, builtinHeader, opts.HeaderStyles),
		Body:      Merge(base, opts.BodyStyles),
		Alternate: Merge(base, builtinAlternate, opts.AlternateRowStyles),
	}
}

// ResolveBorders 返回边框配置：开启边框时四边默认打开，再叠加用户覆盖。
func ResolveBorders(showBorders bool, o BorderOverride) BorderSpec {
	var spec BorderSpec
	if showBorders {
		spec = BorderSpec{Top: EdgeOn(), Right: EdgeOn(), Bottom: EdgeOn(), Left: EdgeOn()}
	}
	set := func(dst *Edge, src *Edge) {
		if src != nil {
			*dst = *src
		}
	}
	set(&spec.Top, o.Top)
	set(&spec.Right, o.Right)
	set(&spec.Bottom, o.Bottom)
	set(&spec.Left, o.Left)
	set(&spec.Horizontal, o.Horizontal)
	set(&spec.Vertical, o.Vertical)
	return spec
}

// rowStyle 返回第 index 行（从 0 开始）的有效样式。
func rowStyle(styles Styles, theme Theme, alternate bool, index int) StyleSet {
	odd := index%2 == 1
	style := styles.Body
	if alternate && odd {
		style = styles.Alternate
	}
	switch theme {
	case ThemeStriped:
		if odd {
			style.FillColor = copyColor(styles.Alternate.FillColor)
		}
	case ThemeMinimal:
		style = Merge(style, minimalTheme)
	}
	return style
}

func (e Edge) width() float64 {
	if e.Width > 0 {
		return e.Width
	}
	return DefaultBorderWidth
}
