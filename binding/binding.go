package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值，用于标题、表头等静态文本。
// data 为空、路径非法或取不到值时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	var (
		b    strings.Builder
		last int
	)
	for _, m := range placeholder.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[0]])
		if v, ok := Lookup(data, text[m[2]:m[3]]); ok && v != nil {
			b.WriteString(fmt.Sprint(v))
		} else {
			b.WriteString(text[m[0]:m[1]])
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 风格的数据（map/slice 嵌套）中取值。
func Lookup(data any, expr string) (any, bool) {
	p, err := Compile(expr)
	if err != nil {
		return nil, false
	}
	return p.Resolve(data)
}

// Path 是编译后的取值路径。
type Path []Step

// Step 是路径中的一段：字段名或数组下标。
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Compile 解析 a.b[0].c 形式的路径。
func Compile(expr string) (Path, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("binding: 路径为空")
	}
	var p Path
	for i := 0; i < len(expr); {
		switch c := expr[i]; {
		case c == '.':
			if i == 0 || i+1 == len(expr) || expr[i+1] == '.' || expr[i+1] == '[' {
				return nil, fmt.Errorf("binding: 路径 %q 第 %d 个字符处缺少字段名", expr, i+1)
			}
			i++
		case c == '[':
			end := strings.IndexByte(expr[i:], ']')
			if end == -1 {
				return nil, fmt.Errorf("binding: 路径 %q 缺少 ]", expr)
			}
			raw := strings.TrimSpace(expr[i+1 : i+end])
			idx, err := strconv.Atoi(raw)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("binding: 路径 %q 的下标 %q 无效", expr, raw)
			}
			p = append(p, Step{Index: idx, IsIndex: true})
			i += end + 1
		default:
			if i > 0 && expr[i-1] == ']' {
				return nil, fmt.Errorf("binding: 路径 %q 的下标后应为 . 或 [", expr)
			}
			j := i
			for j < len(expr) && expr[j] != '.' && expr[j] != '[' {
				j++
			}
			p = append(p, Step{Key: strings.TrimSpace(expr[i:j])})
			i = j
		}
	}
	return p, nil
}

// Resolve 沿路径逐段下钻，任一段缺失即返回 false。
func (p Path) Resolve(data any) (any, bool) {
	current := data
	for _, s := range p {
		var ok bool
		if s.IsIndex {
			current, ok = element(current, s.Index)
		} else {
			current, ok = field(current, s.Key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		switch {
		case s.IsIndex:
			fmt.Fprintf(&b, "[%d]", s.Index)
		case i > 0:
			b.WriteString("." + s.Key)
		default:
			b.WriteString(s.Key)
		}
	}
	return b.String()
}

func field(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[any]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func element(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []map[string]any:
		if idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
