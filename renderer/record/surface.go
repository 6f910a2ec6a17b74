// Package record 提供一个只记录绘制调用的绘图面，用于调试输出与测试。
package record

import (
	"encoding/json"
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/papyrus-table/layout"
	"github.com/ByLCY/papyrus-table/renderer"
)

// Page sizes in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Call 是一次绘制调用。
type Call struct {
	Page  int       `json:"page"`
	Op    string    `json:"op"`
	Text  string    `json:"text,omitempty"`
	Font  string    `json:"font,omitempty"`
	Style string    `json:"style,omitempty"`
	Args  []float64 `json:"args,omitempty"`
}

// Surface 记录全部调用；文本宽度按显示宽度（东亚宽字符计 2）× 字号 × 0.5 估算。
type Surface struct {
	Width  float64
	Height float64

	// 以下钩子用于模拟失败，返回非 nil 时对应调用失败。
	MeasureErr func(s string) error
	DrawErr    func(op, text string) error
	AddPageErr func(page int) error

	calls    []Call
	pages    int
	fontSize float64
}

var (
	_ layout.Surface    = (*Surface)(nil)
	_ renderer.Renderer = (*Surface)(nil)
)

// New 返回一个 A4 竖版、已包含第一页的记录面。
func New() *Surface { return NewSize(A4Width, A4Height) }

// NewSize 返回指定页面尺寸的记录面。
func NewSize(width, height float64) *Surface {
	return &Surface{Width: width, Height: height, pages: 1, fontSize: 10}
}

// Calls 返回目前为止记录的调用。
func (s *Surface) Calls() []Call { return s.calls }

// Ops 只返回指定类型的调用；ops 为空时返回全部。
func (s *Surface) Ops(ops ...string) []Call {
	if len(ops) == 0 {
		return s.calls
	}
	want := map[string]bool{}
	for _, op := range ops {
		want[op] = true
	}
	var out []Call
	for _, c := range s.calls {
		if want[c.Op] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Surface) record(c Call) {
	c.Page = s.pages
	s.calls = append(s.calls, c)
}

func (s *Surface) drawErr(op, text string) error {
	if s.DrawErr == nil {
		return nil
	}
	return s.DrawErr(op, text)
}

func (s *Surface) MeasureText(text string) (float64, error) {
	if s.MeasureErr != nil {
		if err := s.MeasureErr(text); err != nil {
			return 0, err
		}
	}
	return float64(runewidth.StringWidth(text)) * s.fontSize * 0.5, nil
}

func (s *Surface) SetFont(family string, style layout.FontStyle) error {
	s.record(Call{Op: "font", Font: family, Style: string(style)})
	return s.drawErr("font", family)
}

func (s *Surface) SetFontSize(size float64) {
	s.fontSize = size
	s.record(Call{Op: "fontSize", Args: []float64{size}})
}

func (s *Surface) SetFillColor(r, g, b int) {
	s.record(Call{Op: "fillColor", Args: rgb(r, g, b)})
}

func (s *Surface) SetDrawColor(r, g, b int) {
	s.record(Call{Op: "drawColor", Args: rgb(r, g, b)})
}

func (s *Surface) SetTextColor(r, g, b int) {
	s.record(Call{Op: "textColor", Args: rgb(r, g, b)})
}

func (s *Surface) SetLineWidth(w float64) {
	s.record(Call{Op: "lineWidth", Args: []float64{w}})
}

func (s *Surface) FillRect(x, y, w, h float64) error {
	s.record(Call{Op: "rect", Args: []float64{x, y, w, h}})
	return s.drawErr("rect", "")
}

func (s *Surface) Line(x1, y1, x2, y2 float64) error {
	s.record(Call{Op: "line", Args: []float64{x1, y1, x2, y2}})
	return s.drawErr("line", "")
}

func (s *Surface) Text(text string, x, y float64) error {
	s.record(Call{Op: "text", Text: text, Args: []float64{x, y}})
	return s.drawErr("text", text)
}

func (s *Surface) AddPage() error {
	if s.AddPageErr != nil {
		if err := s.AddPageErr(s.pages + 1); err != nil {
			return err
		}
	}
	s.pages++
	s.record(Call{Op: "addPage"})
	return nil
}

func (s *Surface) PageSize() (float64, float64) { return s.Width, s.Height }

func (s *Surface) PageCount() int { return s.pages }

// Bytes 以 JSON 输出调用轨迹。
func (s *Surface) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(struct {
		Pages int    `json:"pages"`
		Calls []Call `json:"calls"`
	}{s.pages, s.calls}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化绘制轨迹失败: %w", err)
	}
	return data, nil
}

func rgb(r, g, b int) []float64 {
	return []float64{float64(r), float64(g), float64(b)}
}
