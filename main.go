package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ByLCY/papyrus-table/layout"
	"github.com/ByLCY/papyrus-table/loader"
	"github.com/ByLCY/papyrus-table/renderer"
	canvasrenderer "github.com/ByLCY/papyrus-table/renderer/canvas"
	"github.com/ByLCY/papyrus-table/renderer/record"
)

type params struct {
	spec     string
	data     string
	options  string
	out      string
	debug    string
	trace    bool
	logLevel string
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	p := &params{}
	log := logrus.New()

	root := &cobra.Command{
		Use:          "papyrus-table",
		Short:        "表格排版与分页渲染",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logrus.ParseLevel(p.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.SetOut(stdout)
	root.PersistentFlags().StringVar(&p.logLevel, "log-level", "warning", "日志级别 (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&p.spec, "spec", "examples/table.papyrus", "DSL 文件路径")
	root.PersistentFlags().StringVar(&p.data, "data", "", "绑定数据文件（JSON 或 YAML）")
	root.PersistentFlags().StringVar(&p.options, "options", "", "YAML 选项覆盖文件")

	render := &cobra.Command{
		Use:   "render",
		Short: "渲染表格为 PDF（或 --trace 时输出绘制记录 JSON）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := runRender(p, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成：%s（%d 页）\n", p.out, res.PageCount)
			return nil
		},
	}
	render.Flags().StringVar(&p.out, "out", "output/table.pdf", "输出路径")
	render.Flags().StringVar(&p.debug, "debug", "", "布局调试 JSON 输出路径")
	render.Flags().BoolVar(&p.trace, "trace", false, "输出绘制调用记录 JSON 而不是 PDF")

	widths := &cobra.Command{
		Use:   "widths",
		Short: "排版但不输出文件，打印列宽与诊断信息",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl, err := prepare(p)
			if err != nil {
				return err
			}
			surface := newSurface(tbl, filepath.Dir(p.spec), false)
			tbl.Options.Logger = log.WithField("doc", tbl.Name)
			res, err := layout.LayoutTable(surface, tbl.Columns, tbl.Rows, tbl.Options)
			if err != nil {
				return err
			}
			printWidths(cmd.OutOrStdout(), tbl.Columns, res)
			return nil
		},
	}

	root.AddCommand(render, widths)
	return root
}

// prepare 解析 DSL、读取数据并叠加 YAML 选项。
func prepare(p *params) (*loader.Table, error) {
	doc, err := loader.LoadDocument(p.spec)
	if err != nil {
		return nil, err
	}
	var data any
	if p.data != "" {
		if data, err = loader.LoadData(p.data); err != nil {
			return nil, err
		}
	}
	tbl, err := loader.Build(doc, data)
	if err != nil {
		return nil, fmt.Errorf("构建表格失败: %w", err)
	}
	if p.options != "" {
		overlay, err := loader.LoadOptionsFile(p.options)
		if err != nil {
			return nil, err
		}
		overlay.Apply(&tbl.Options)
	}
	return tbl, nil
}

func newSurface(tbl *loader.Table, baseDir string, trace bool) renderer.Renderer {
	if trace {
		return record.NewSize(tbl.Page.Width, tbl.Page.Height)
	}
	fonts := map[string]map[layout.FontStyle]canvasrenderer.Resource{}
	for name, styles := range tbl.Fonts {
		fonts[name] = map[layout.FontStyle]canvasrenderer.Resource{}
		for style, path := range styles {
			fonts[name][style] = canvasrenderer.Resource{Path: path}
		}
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:    baseDir,
		PageWidth:  tbl.Page.Width,
		PageHeight: tbl.Page.Height,
		Fonts:      fonts,
		Meta: canvasrenderer.Meta{
			Title:    tbl.Meta.Title,
			Author:   tbl.Meta.Author,
			Subject:  tbl.Meta.Subject,
			Creator:  tbl.Meta.Creator,
			Keywords: tbl.Meta.Keywords,
		},
	})
}

// runRender 串联解析、排版与输出。
func runRender(p *params, log *logrus.Logger) (*layout.RenderResult, error) {
	tbl, err := prepare(p)
	if err != nil {
		return nil, err
	}
	tbl.Options.Logger = log.WithField("doc", tbl.Name)

	surface := newSurface(tbl, filepath.Dir(p.spec), p.trace)
	res, err := layout.LayoutTable(surface, tbl.Columns, tbl.Rows, tbl.Options)
	if err != nil {
		return nil, fmt.Errorf("表格排版失败: %w", err)
	}
	log.WithFields(logrus.Fields{
		"pages":       res.PageCount,
		"rows":        len(tbl.Rows),
		"diagnostics": len(res.Diagnostics),
	}).Info("table rendered")

	if p.debug != "" {
		if err := writeDebug(layout.NewDebugReport(res, tbl.Columns, tbl.Options), p.debug); err != nil {
			return nil, err
		}
	}

	out, err := surface.Bytes()
	if err != nil {
		return nil, fmt.Errorf("渲染输出失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.out), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(p.out, out, 0o644); err != nil {
		return nil, fmt.Errorf("写入输出文件失败: %w", err)
	}
	return res, nil
}

func writeDebug(report *layout.DebugReport, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(report, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func printWidths(w io.Writer, columns []layout.ColumnSpec, res *layout.RenderResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Header", "Key", "Width (pt)"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for i, col := range columns {
		table.Append([]string{strconv.Itoa(i), col.Header, col.DataKey, strconv.FormatFloat(res.ColumnWidths[i], 'f', 2, 64)})
	}
	table.SetFooter([]string{"", "", "total", strconv.FormatFloat(res.TableWidth, 'f', 2, 64)})
	table.Render()

	fmt.Fprintf(w, "pages: %d  height: %.2fpt\n", res.PageCount, res.TableHeight)
	if len(res.Diagnostics) == 0 {
		return
	}
	diag := tablewriter.NewWriter(w)
	diag.SetHeader([]string{"Row", "Column", "Op", "Error"})
	diag.SetAutoWrapText(false)
	for _, d := range res.Diagnostics {
		diag.Append([]string{strconv.Itoa(d.Row), strconv.Itoa(d.Column), d.Op, d.Err})
	}
	diag.Render()
}
