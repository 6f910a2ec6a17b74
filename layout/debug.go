package layout

import (
	"encoding/json"
	"os"
)

// DebugReport 汇总一次渲染的结果与解析后的样式，便于调试或可视化。
type DebugReport struct {
	Result  *RenderResult `json:"result"`
	Styles  Styles        `json:"styles"`
	Borders BorderSpec    `json:"borders"`
	Columns []ColumnSpec  `json:"columns"`

	// 表格尺寸的毫米值，方便与纸张尺寸对照。
	SizeMM [2]float64 `json:"sizeMM"`
}

// NewDebugReport 根据渲染输入与结果构造调试报告。
func NewDebugReport(res *RenderResult, columns []ColumnSpec, opts RenderOptions) *DebugReport {
	report := &DebugReport{
		Result:  res,
		Styles:  ResolveStyles(opts),
		Borders: ResolveBorders(opts.ShowBorders, opts.BorderStyles),
		Columns: columns,
	}
	if res != nil {
		report.SizeMM = [2]float64{
			Length{Value: res.TableWidth, Unit: UnitPT}.ToMM(),
			Length{Value: res.TableHeight, Unit: UnitPT}.ToMM(),
		}
	}
	return report
}

// WriteDebugJSON 将调试报告输出为 JSON。
func WriteDebugJSON(report *DebugReport, path string) error {
	if report == nil {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
