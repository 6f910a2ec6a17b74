package renderer

import "github.com/ByLCY/papyrus-table/layout"

// Renderer 是可以输出最终文件的绘图面，例如 PDF 或调用轨迹 JSON。
// Bytes 返回到目前为止绘制的全部页面。
type Renderer interface {
	layout.Surface
	Bytes() ([]byte, error)
}
