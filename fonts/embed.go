// Package fonts 提供内置字体数据（Go 字体族），在没有注册自定义字体时作为回退。
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Built-in family names.
const (
	Sans = "go"
	Mono = "gomono"
)

var builtin = map[string]map[string][]byte{
	Sans: {
		"normal":     goregular.TTF,
		"bold":       gobold.TTF,
		"italic":     goitalic.TTF,
		"bolditalic": gobolditalic.TTF,
	},
	Mono: {
		"normal":     gomono.TTF,
		"bold":       gomonobold.TTF,
		"italic":     gomonoitalic.TTF,
		"bolditalic": gomonobolditalic.TTF,
	},
}

// Family 把常见的 PDF 标准字体名映射到内置字体族：等宽字体映射为 gomono，其余为 go。
func Family(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "mono"), strings.Contains(n, "courier"):
		return Mono
	default:
		return Sans
	}
}

// Load 返回内置字体的字节数据；style 取 normal/bold/italic/bolditalic，空串视为 normal。
func Load(family, style string) ([]byte, error) {
	styles, ok := builtin[family]
	if !ok {
		return nil, fmt.Errorf("未知的内置字体族 %s", family)
	}
	if style == "" {
		style = "normal"
	}
	data, ok := styles[strings.ToLower(style)]
	if !ok {
		return nil, fmt.Errorf("内置字体族 %s 不支持样式 %s", family, style)
	}
	return data, nil
}

// Styles 列出内置字体支持的样式。
func Styles() []string { return []string{"normal", "bold", "italic", "bolditalic"} }
