package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/papyrus-table/dsl"
	"github.com/ByLCY/papyrus-table/layout"
)

// invalid 构造 validation 类错误，字段路径使用 DSL 中的写法。
func invalid(field, format string, args ...any) *layout.Error {
	return &layout.Error{
		Kind:  layout.KindValidation,
		Code:  layout.CodeInvalidOption,
		Field: field,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		return val.Expr.Text()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

// valueToAny 把行内数据的值转换为 JSON 风格的 Go 值。
func valueToAny(val *dsl.Value) any {
	switch {
	case val == nil:
		return nil
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		if f, err := strconv.ParseFloat(*val.Number, 64); err == nil {
			return f
		}
		return *val.Number
	case val.Array != nil:
		out := make([]any, 0, len(val.Array.Values))
		for _, v := range val.Array.Values {
			out = append(out, valueToAny(v))
		}
		return out
	case val.Object != nil:
		out := map[string]any{}
		for _, entry := range val.Object.Entries {
			out[entry.Key] = valueToAny(entry.Value)
		}
		return out
	default:
		s := valueToString(val)
		switch s {
		case "true":
			return true
		case "false":
			return false
		case "null", "nil":
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
}

func parseBool(field string, val *dsl.Value) (bool, error) {
	s := strings.ToLower(valueToString(val))
	switch s {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	}
	return false, invalid(field, "需要布尔值，得到 %q", s)
}

func parseNumber(field string, val *dsl.Value) (float64, error) {
	s := valueToString(val)
	f, err := layout.ParsePoints(s)
	if err != nil {
		return 0, invalid(field, "需要数值，得到 %q", s)
	}
	return f, nil
}

// parseFactor 解析行高倍数，接受 1.4 与 1.4x 两种写法。
func parseFactor(field string, val *dsl.Value) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(valueToString(val)), "x")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalid(field, "需要倍数，得到 %q", valueToString(val))
	}
	return f, nil
}

// parseColorValue 接受 #RGB/#RRGGBB 或 [r, g, b] 三元数组。
func parseColorValue(field string, val *dsl.Value) (*layout.Color, error) {
	if val != nil && val.Array != nil {
		if len(val.Array.Values) != 3 {
			return nil, invalid(field, "颜色数组需要 3 个元素，得到 %d 个", len(val.Array.Values))
		}
		var ch [3]int
		for i, item := range val.Array.Values {
			s := valueToString(item)
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, invalid(field, "颜色通道必须为整数，得到 %q", s)
			}
			ch[i] = n
		}
		return &layout.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
	}
	c, err := ParseHexColor(valueToString(val))
	if err != nil {
		return nil, invalid(field, "%v", err)
	}
	return &c, nil
}

// ParseHexColor 解析 #RGB、#RRGGBB 或 #RRGGBBAA（忽略透明度）。
func ParseHexColor(value string) (layout.Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6, 8:
	default:
		return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var ch [3]int
	for i := range ch {
		n, err := strconv.ParseUint(v[2*i:2*i+2], 16, 8)
		if err != nil {
			return layout.Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		ch[i] = int(n)
	}
	return layout.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// parseEdge 接受 true/false 或正数线宽。
func parseEdge(field string, val *dsl.Value) (layout.Edge, error) {
	s := strings.ToLower(valueToString(val))
	switch s {
	case "true":
		return layout.EdgeOn(), nil
	case "false":
		return layout.Edge{}, nil
	}
	w, err := layout.ParsePoints(s)
	if err != nil {
		return layout.Edge{}, invalid(field, "需要 true/false 或线宽，得到 %q", s)
	}
	if w <= 0 {
		return layout.Edge{}, invalid(field, "线宽必须为正数，得到 %g", w)
	}
	return layout.EdgeWidth(w), nil
}

func normalizeAlign(field, v string) (layout.Align, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start":
		return layout.AlignLeft, nil
	case "center", "middle":
		return layout.AlignCenter, nil
	case "right", "end":
		return layout.AlignRight, nil
	}
	return "", invalid(field, "未知的对齐方式 %q", v)
}
