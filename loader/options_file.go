package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/papyrus-table/layout"
)

// OptionsFile 是 --options 指定的 YAML 覆盖文件，只覆盖文件中出现的字段。
type OptionsFile struct {
	StartY             *float64     `yaml:"startY"`
	Margin             *MarginValue `yaml:"margin"`
	PageBreak          *string      `yaml:"pageBreak"`
	Theme              *string      `yaml:"theme"`
	TableWidth         *WidthValue  `yaml:"tableWidth"`
	ColumnWidthMode    *string      `yaml:"columnWidthMode"`
	ShowHeader         *bool        `yaml:"showHeader"`
	ShowBorders        *bool        `yaml:"showBorders"`
	AlternateRowColors *bool        `yaml:"alternateRowColors"`
	RowHeight          *float64     `yaml:"rowHeight"`
	HeaderHeight       *float64     `yaml:"headerHeight"`
	Styles             *StyleFile   `yaml:"styles"`
	HeaderStyles       *StyleFile   `yaml:"headerStyles"`
	BodyStyles         *StyleFile   `yaml:"bodyStyles"`
	AlternateRowStyles *StyleFile   `yaml:"alternateRowStyles"`
	BorderStyles       *BorderFile  `yaml:"borderStyles"`
}

// StyleFile 是 YAML 中的样式覆盖，颜色可写为 "#RRGGBB" 或 [r, g, b]。
type StyleFile struct {
	Font        *string     `yaml:"font"`
	FontStyle   *string     `yaml:"fontStyle"`
	FontSize    *float64    `yaml:"fontSize"`
	CellPadding *float64    `yaml:"cellPadding"`
	LineHeight  *float64    `yaml:"lineHeight"`
	FillColor   *ColorValue `yaml:"fillColor"`
	TextColor   *ColorValue `yaml:"textColor"`
	BorderColor *ColorValue `yaml:"borderColor"`
}

// BorderFile 的每条边可写为布尔值或线宽。
type BorderFile struct {
	Top        *EdgeValue `yaml:"top"`
	Right      *EdgeValue `yaml:"right"`
	Bottom     *EdgeValue `yaml:"bottom"`
	Left       *EdgeValue `yaml:"left"`
	Horizontal *EdgeValue `yaml:"horizontal"`
	Vertical   *EdgeValue `yaml:"vertical"`
}

// MarginValue 接受单个长度或 {top, right, bottom, left} 映射。
type MarginValue struct {
	Override layout.MarginOverride
}

// WidthValue 接受 400、"30mm"、"80%" 或 "auto"。
type WidthValue struct {
	Width layout.Width
}

// ColorValue 接受 "#RRGGBB" 或 [r, g, b]。
type ColorValue struct {
	Color layout.Color
}

// EdgeValue 接受 true/false 或线宽。
type EdgeValue struct {
	Edge layout.Edge
}

// LoadOptionsFile 读取并解析 YAML 覆盖文件。
func LoadOptionsFile(path string) (*OptionsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取选项文件 %s 失败: %w", path, err)
	}
	f, err := ParseOptionsFile(data)
	if err != nil {
		return nil, fmt.Errorf("解析选项文件 %s 失败: %w", path, err)
	}
	return f, nil
}

// ParseOptionsFile 解析 YAML 覆盖内容，未知字段视为错误。
func ParseOptionsFile(data []byte) (*OptionsFile, error) {
	var f OptionsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// Apply 把文件中出现的字段覆盖到 opts。
func (f *OptionsFile) Apply(opts *layout.RenderOptions) {
	if f == nil {
		return
	}
	if f.StartY != nil {
		v := *f.StartY
		opts.StartY = &v
	}
	if f.Margin != nil {
		opts.Margin = layout.NormalizeMargins(f.Margin.Override)
	}
	if f.PageBreak != nil {
		opts.PageBreak = layout.PageBreak(*f.PageBreak)
	}
	if f.Theme != nil {
		opts.Theme = layout.Theme(*f.Theme)
	}
	if f.TableWidth != nil {
		opts.TableWidth = f.TableWidth.Width
	}
	if f.ColumnWidthMode != nil {
		opts.ColumnWidthMode = layout.WidthMode(*f.ColumnWidthMode)
	}
	setBool(&opts.ShowHeader, f.ShowHeader)
	setBool(&opts.ShowBorders, f.ShowBorders)
	setBool(&opts.AlternateRowColors, f.AlternateRowColors)
	if f.RowHeight != nil {
		opts.RowHeight = *f.RowHeight
	}
	if f.HeaderHeight != nil {
		opts.HeaderHeight = *f.HeaderHeight
	}
	f.Styles.mergeInto(&opts.Styles)
	f.HeaderStyles.mergeInto(&opts.HeaderStyles)
	f.BodyStyles.mergeInto(&opts.BodyStyles)
	f.AlternateRowStyles.mergeInto(&opts.AlternateRowStyles)
	f.BorderStyles.mergeInto(&opts.BorderStyles)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (c *ColorValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var ch []int
		if err := node.Decode(&ch); err != nil {
			return err
		}
		if len(ch) != 3 {
			return fmt.Errorf("第 %d 行：颜色数组需要 3 个元素", node.Line)
		}
		c.Color = layout.Color{R: ch[0], G: ch[1], B: ch[2]}
		return nil
	case yaml.ScalarNode:
		col, err := ParseHexColor(node.Value)
		if err != nil {
			return fmt.Errorf("第 %d 行：%w", node.Line, err)
		}
		c.Color = col
		return nil
	}
	return fmt.Errorf("第 %d 行：无法解析颜色", node.Line)
}

func (c *ColorValue) ptr() *layout.Color {
	if c == nil {
		return nil
	}
	col := c.Color
	return &col
}

func (s *StyleFile) mergeInto(o *layout.StyleOverride) {
	if s == nil {
		return
	}
	if s.Font != nil {
		o.Font = s.Font
	}
	if s.FontStyle != nil {
		fs := layout.FontStyle(strings.ToLower(*s.FontStyle))
		o.FontStyle = &fs
	}
	if s.FontSize != nil {
		o.FontSize = s.FontSize
	}
	if s.CellPadding != nil {
		o.CellPadding = s.CellPadding
	}
	if s.LineHeight != nil {
		o.LineHeight = s.LineHeight
	}
	if s.FillColor != nil {
		o.FillColor = s.FillColor.ptr()
	}
	if s.TextColor != nil {
		o.TextColor = s.TextColor.ptr()
	}
	if s.BorderColor != nil {
		o.BorderColor = s.BorderColor.ptr()
	}
}

func (b *BorderFile) mergeInto(o *layout.BorderOverride) {
	if b == nil {
		return
	}
	for _, e := range []struct {
		src *EdgeValue
		dst **layout.Edge
	}{
		{b.Top, &o.Top}, {b.Right, &o.Right}, {b.Bottom, &o.Bottom},
		{b.Left, &o.Left}, {b.Horizontal, &o.Horizontal}, {b.Vertical, &o.Vertical},
	} {
		if e.src != nil {
			edge := e.src.Edge
			*e.dst = &edge
		}
	}
}

func (m *MarginValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v, err := layout.ParsePoints(node.Value)
		if err != nil {
			return fmt.Errorf("第 %d 行：%w", node.Line, err)
		}
		m.Override = layout.MarginOverride{Top: &v, Right: &v, Bottom: &v, Left: &v}
		return nil
	case yaml.MappingNode:
		var raw map[string]string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		for side, s := range raw {
			v, err := layout.ParsePoints(s)
			if err != nil {
				return fmt.Errorf("第 %d 行：margin.%s：%w", node.Line, side, err)
			}
			switch side {
			case "top":
				m.Override.Top = &v
			case "right":
				m.Override.Right = &v
			case "bottom":
				m.Override.Bottom = &v
			case "left":
				m.Override.Left = &v
			default:
				return fmt.Errorf("第 %d 行：未知的边距方向 %s", node.Line, side)
			}
		}
		return nil
	}
	return fmt.Errorf("第 %d 行：margin 需要数值或映射", node.Line)
}

func (w *WidthValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行：tableWidth 需要标量", node.Line)
	}
	width, err := layout.ParseWidth(node.Value)
	if err != nil {
		return fmt.Errorf("第 %d 行：%w", node.Line, err)
	}
	w.Width = width
	return nil
}

func (e *EdgeValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行：边框需要布尔值或线宽", node.Line)
	}
	switch strings.ToLower(node.Value) {
	case "true", "yes", "on":
		e.Edge = layout.EdgeOn()
		return nil
	case "false", "no", "off":
		e.Edge = layout.Edge{}
		return nil
	}
	v, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return fmt.Errorf("第 %d 行：无法解析边框 %q", node.Line, node.Value)
	}
	e.Edge = layout.EdgeWidth(v)
	return nil
}
