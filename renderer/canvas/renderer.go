package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/papyrus-table/fonts"
	"github.com/ByLCY/papyrus-table/layout"
	"github.com/ByLCY/papyrus-table/renderer"
)

// Renderer 是基于 github.com/tdewolff/canvas 的 PDF 绘图面。
// 对外坐标与长度均为 pt（左上角为原点），内部 canvas 使用 mm，在边界处换算。
type Renderer struct {
	baseDir string
	width   float64 // pt
	height  float64 // pt
	meta    Meta

	fontBlobs map[string]map[layout.FontStyle]Resource // family(lower) → style → 数据

	fontFamilies map[string]*canvas.FontFamily

	pages []*canvas.Canvas
	ctx   *canvas.Context

	family    string
	style     layout.FontStyle
	fontSize  float64
	fill      color.Color
	stroke    color.Color
	textColor color.Color
	lineWidth float64
}

var (
	_ layout.Surface    = (*Renderer)(nil)
	_ renderer.Renderer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// PageWidth/PageHeight 以 pt 为单位，0 时使用 A4 竖版。
	PageWidth  float64
	PageHeight float64
	// Fonts 按字体族名注册自定义字体，每个样式一份数据；缺失的样式回退到 normal。
	Fonts map[string]map[layout.FontStyle]Resource
	Meta  Meta
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// Meta 保存 PDF 元信息。
type Meta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// A4 portrait in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// NewRenderer creates an A4 renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources; the first page is ready for drawing.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		width:        opts.PageWidth,
		height:       opts.PageHeight,
		meta:         opts.Meta,
		fontBlobs:    map[string]map[layout.FontStyle]Resource{},
		fontFamilies: map[string]*canvas.FontFamily{},
		fontSize:     10,
		fill:         canvas.White,
		stroke:       canvas.Black,
		textColor:    canvas.Black,
		lineWidth:    layout.DefaultBorderWidth,
	}
	if r.width <= 0 || r.height <= 0 {
		r.width, r.height = A4Width, A4Height
	}
	if r.meta.Creator == "" {
		r.meta.Creator = "Papyrus"
	}
	for name, styles := range opts.Fonts {
		if name == "" {
			continue
		}
		r.fontBlobs[strings.ToLower(name)] = styles
	}
	r.newPage()
	return r
}

func (r *Renderer) newPage() {
	c := canvas.New(toMm(r.width), toMm(r.height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	r.pages = append(r.pages, c)
	r.ctx = ctx
}

// MeasureText 返回当前字体下文本的宽度（pt）。
func (r *Renderer) MeasureText(s string) (float64, error) {
	face, err := r.face(r.textColor)
	if err != nil {
		return 0, err
	}
	return toPt(face.TextWidth(s)), nil
}

func (r *Renderer) SetFont(family string, style layout.FontStyle) error {
	if _, err := r.ensureFontFamily(family); err != nil {
		return err
	}
	r.family = family
	r.style = style
	return nil
}

func (r *Renderer) SetFontSize(size float64) { r.fontSize = size }

func (r *Renderer) SetFillColor(red, green, blue int) { r.fill = rgb(red, green, blue) }

func (r *Renderer) SetDrawColor(red, green, blue int) { r.stroke = rgb(red, green, blue) }

func (r *Renderer) SetTextColor(red, green, blue int) { r.textColor = rgb(red, green, blue) }

func (r *Renderer) SetLineWidth(w float64) { r.lineWidth = w }

func (r *Renderer) FillRect(x, y, w, h float64) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	r.ctx.SetFillColor(r.fill)
	r.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	r.ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
	return nil
}

func (r *Renderer) Line(x1, y1, x2, y2 float64) error {
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(toMm(x2-x1), toMm(y2-y1))
	r.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	r.ctx.SetStrokeColor(r.stroke)
	r.ctx.SetStrokeWidth(toMm(r.lineWidth))
	r.ctx.DrawPath(toMm(x1), toMm(y1), p)
	return nil
}

// Text 以 y 为行的垂直中线绘制单行文本。
func (r *Renderer) Text(s string, x, y float64) error {
	face, err := r.face(r.textColor)
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	baseline := toMm(y) + (metrics.Ascent-metrics.Descent)/2
	r.ctx.DrawText(toMm(x), baseline, canvas.NewTextLine(face, s, canvas.Left))
	return nil
}

func (r *Renderer) AddPage() error {
	r.newPage()
	return nil
}

func (r *Renderer) PageSize() (float64, float64) { return r.width, r.height }

func (r *Renderer) PageCount() int { return len(r.pages) }

// Bytes 把已绘制的页面写成 PDF。
func (r *Renderer) Bytes() ([]byte, error) {
	if len(r.pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	var buf bytes.Buffer
	w, h := toMm(r.width), toMm(r.height)
	writer := pdf.New(&buf, w, h, nil)
	writer.SetInfo(r.meta.Title, r.meta.Subject, strings.Join(r.meta.Keywords, ", "), r.meta.Author, r.meta.Creator)
	for i, page := range r.pages {
		if i > 0 {
			writer.NewPage(w, h)
		}
		page.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) face(col color.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(r.family)
	if err != nil {
		return nil, err
	}
	return family.Face(r.fontSize, col, canvasStyle(r.style), canvas.FontNormal), nil
}

// ensureFontFamily 加载并缓存字体族：已注册的自定义字体优先，否则回退到内置 Go 字体。
func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	var (
		family *canvas.FontFamily
		err    error
	)
	if styles, ok := r.fontBlobs[key]; ok {
		family, err = r.loadCustomFamily(key, styles)
	} else {
		family, err = r.loadBuiltinFamily(fonts.Family(key))
	}
	if err != nil {
		return nil, err
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadCustomFamily(name string, styles map[layout.FontStyle]Resource) (*canvas.FontFamily, error) {
	regular, ok := styles[layout.FontNormal]
	if !ok {
		return nil, fmt.Errorf("字体 %s 缺少 normal 样式", name)
	}
	family := canvas.NewFontFamily(name)
	for _, style := range []layout.FontStyle{layout.FontNormal, layout.FontBold, layout.FontItalic, layout.FontBoldItalic} {
		res, ok := styles[style]
		if !ok {
			res = regular
		}
		data, err := r.loadFontBytes(res)
		if err != nil {
			return nil, fmt.Errorf("加载字体 %s/%s 失败: %w", name, style, err)
		}
		if err := family.LoadFont(data, 0, canvasStyle(style)); err != nil {
			return nil, fmt.Errorf("解析字体 %s/%s 失败: %w", name, style, err)
		}
	}
	return family, nil
}

func (r *Renderer) loadBuiltinFamily(name string) (*canvas.FontFamily, error) {
	if family, ok := r.fontFamilies["builtin:"+name]; ok {
		return family, nil
	}
	family := canvas.NewFontFamily("papyrus-" + name)
	for _, style := range fonts.Styles() {
		data, err := fonts.Load(name, style)
		if err != nil {
			return nil, err
		}
		if err := family.LoadFont(data, 0, canvasStyle(layout.FontStyle(style))); err != nil {
			return nil, fmt.Errorf("解析内置字体 %s/%s 失败: %w", name, style, err)
		}
	}
	r.fontFamilies["builtin:"+name] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path == "" {
		return nil, fmt.Errorf("字体资源缺少 Bytes 或 Path")
	}
	path := res.Path
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s", res.Path)
		}
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func canvasStyle(style layout.FontStyle) canvas.FontStyle {
	switch style {
	case layout.FontBold:
		return canvas.FontBold
	case layout.FontItalic:
		return canvas.FontRegular | canvas.FontItalic
	case layout.FontBoldItalic:
		return canvas.FontBold | canvas.FontItalic
	default:
		return canvas.FontRegular
	}
}

func rgb(red, green, blue int) color.Color {
	return canvas.RGBA(float64(red)/255.0, float64(green)/255.0, float64(blue)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
