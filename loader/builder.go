package loader

import (
	"fmt"
	"strings"

	"github.com/ByLCY/papyrus-table/binding"
	"github.com/ByLCY/papyrus-table/dsl"
	"github.com/ByLCY/papyrus-table/layout"
)

// Table 是一份表格文档解析、绑定数据后的完整渲染输入。
type Table struct {
	Name    string
	Version string
	Meta    Meta
	Page    Page
	// Fonts 为自定义字体：族名 → 样式 → 文件路径（相对文档目录）。
	Fonts   map[string]map[layout.FontStyle]string
	Columns []layout.ColumnSpec
	Rows    []layout.Row
	Options layout.RenderOptions
}

// Meta 保存 PDF 元信息。
type Meta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// Page 是纸张尺寸（pt）。
type Page struct {
	Size      string
	Width     float64
	Height    float64
	Landscape bool
}

var pagePresets = map[string][2]float64{
	"A4":     {595.28, 841.89},
	"A5":     {419.53, 595.28},
	"LETTER": {612, 792},
	"LEGAL":  {612, 1008},
}

// Build 把 DSL 文档与数据转换为表格渲染输入。
func Build(doc *dsl.Document, data any) (*Table, error) {
	if doc == nil {
		return nil, invalid("doc", "文档不能为空")
	}
	t := &Table{
		Name:    doc.Name,
		Version: doc.Version,
		Meta:    Meta{Creator: "Papyrus"},
		Page:    Page{Size: "A4", Width: pagePresets["A4"][0], Height: pagePresets["A4"][1]},
		Fonts:   map[string]map[layout.FontStyle]string{},
		Options: layout.DefaultOptions(),
	}

	var columnsSeen bool
	for _, section := range doc.Sections {
		var err error
		switch {
		case section.Meta != nil:
			err = t.applyMeta(section.Meta.Block, data)
		case section.Resources != nil:
			err = t.applyResources(section.Resources.Block)
		case section.Page != nil:
			err = t.applyPage(section.Page)
		case section.Options != nil:
			err = applyOptions(&t.Options, section.Options.Block)
		case section.Styles != nil:
			err = t.applyStyles(section.Styles)
		case section.Borders != nil:
			err = applyBorders(&t.Options.BorderStyles, section.Borders.Block)
		case section.Columns != nil:
			columnsSeen = true
			err = t.applyColumns(section.Columns.Block, data)
		case section.Rows != nil:
			err = t.applyRows(section.Rows.Body, data)
		}
		if err != nil {
			return nil, err
		}
	}
	if !columnsSeen {
		return nil, &layout.Error{Kind: layout.KindValidation, Code: layout.CodeInvalidColumns, Field: "columns", Msg: "文档缺少 columns 段"}
	}
	return t, nil
}

func (t *Table) applyMeta(block *dsl.Block, data any) error {
	for _, stmt := range assignments(block) {
		switch strings.ToLower(stmt.Key) {
		case "title":
			t.Meta.Title = binding.Interpolate(valueToString(stmt.Value), data)
		case "author":
			t.Meta.Author = binding.Interpolate(valueToString(stmt.Value), data)
		case "subject":
			t.Meta.Subject = binding.Interpolate(valueToString(stmt.Value), data)
		case "creator":
			t.Meta.Creator = valueToString(stmt.Value)
		case "keywords":
			t.Meta.Keywords = valueToStringSlice(stmt.Value)
		default:
			return invalid("meta."+stmt.Key, "未知的元信息字段")
		}
	}
	return nil
}

// applyResources 收集 font 命令：font Brand { normal: "a.ttf" bold: "b.ttf" }。
func (t *Table) applyResources(block *dsl.Block) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "font" {
			return invalid("resources."+cmd.Name, "未知的资源类型")
		}
		if len(cmd.Args) == 0 || cmd.Args[0].Value == "" {
			return invalid("resources.font", "字体缺少名称")
		}
		name := cmd.Args[0].Value
		field := "resources.font." + name
		styles := map[layout.FontStyle]string{}
		for _, a := range assignments(cmd.Block) {
			style, err := normalizeFontStyle(field+"."+a.Key, a.Key)
			if err != nil {
				return err
			}
			path := valueToString(a.Value)
			if path == "" {
				return invalid(field+"."+a.Key, "字体路径为空")
			}
			styles[style] = path
		}
		if _, ok := styles[layout.FontNormal]; !ok {
			return invalid(field, "字体必须提供 normal 样式")
		}
		t.Fonts[name] = styles
	}
	return nil
}

// applyPage 解析 page A4 landscape margin 18mm 形式的页面声明。
func (t *Table) applyPage(section *dsl.PageSection) error {
	size := strings.ToUpper(section.Size)
	preset, ok := pagePresets[size]
	if !ok {
		return invalid("page", "暂不支持的纸张尺寸：%s", section.Size)
	}
	page := Page{Size: size, Width: preset[0], Height: preset[1]}
	params := section.Params
	for i := 0; i < len(params); i++ {
		switch strings.ToLower(params[i].Value) {
		case "landscape":
			page.Landscape = true
		case "portrait":
			page.Landscape = false
		case "margin":
			var vals []float64
			for j := i + 1; j < len(params) && len(vals) < 4; j++ {
				v, err := layout.ParsePoints(params[j].Value)
				if err != nil {
					break
				}
				vals = append(vals, v)
			}
			if len(vals) == 0 {
				return invalid("page.margin", "margin 后缺少长度")
			}
			t.Options.Margin = expandMargin(vals)
			i += len(vals)
		default:
			return invalid("page", "无法识别的参数 %q", params[i].Value)
		}
	}
	if page.Landscape {
		page.Width, page.Height = page.Height, page.Width
	}
	t.Page = page
	return nil
}

// expandMargin 按 CSS 的 1-4 值规则展开边距。
func expandMargin(vals []float64) layout.Margins {
	switch len(vals) {
	case 1:
		return layout.UniformMargins(vals[0])
	case 2:
		return layout.Margins{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		return layout.Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
	default:
		return layout.Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	}
}

func applyOptions(opts *layout.RenderOptions, block *dsl.Block) error {
	for _, a := range assignments(block) {
		field := "options." + a.Key
		var err error
		switch strings.ToLower(a.Key) {
		case "start-y":
			var v float64
			if v, err = parseNumber(field, a.Value); err == nil {
				opts.StartY = &v
			}
		case "margin":
			err = applyMarginValue(opts, field, a.Value)
		case "page-break":
			opts.PageBreak = layout.PageBreak(strings.ToLower(valueToString(a.Value)))
		case "theme":
			opts.Theme = layout.Theme(strings.ToLower(valueToString(a.Value)))
		case "table-width":
			opts.TableWidth, err = layout.ParseWidth(valueToString(a.Value))
			if err != nil {
				err = invalid(field, "%v", err)
			}
		case "width-mode", "column-width-mode":
			opts.ColumnWidthMode = layout.WidthMode(strings.ToLower(valueToString(a.Value)))
		case "show-header":
			opts.ShowHeader, err = parseBool(field, a.Value)
		case "show-borders":
			opts.ShowBorders, err = parseBool(field, a.Value)
		case "alternate-row-colors":
			opts.AlternateRowColors, err = parseBool(field, a.Value)
		case "row-height":
			opts.RowHeight, err = parseNumber(field, a.Value)
		case "header-height":
			opts.HeaderHeight, err = parseNumber(field, a.Value)
		default:
			err = invalid(field, "未知的选项")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// applyMarginValue 接受单个长度或 {top: .. left: ..} 形式的部分边距，缺失的边取默认值。
func applyMarginValue(opts *layout.RenderOptions, field string, val *dsl.Value) error {
	if val == nil || val.Object == nil {
		v, err := parseNumber(field, val)
		if err != nil {
			return err
		}
		opts.Margin = layout.UniformMargins(v)
		return nil
	}
	var o layout.MarginOverride
	for _, entry := range val.Object.Entries {
		v, err := parseNumber(field+"."+entry.Key, entry.Value)
		if err != nil {
			return err
		}
		switch strings.ToLower(entry.Key) {
		case "top":
			o.Top = &v
		case "right":
			o.Right = &v
		case "bottom":
			o.Bottom = &v
		case "left":
			o.Left = &v
		default:
			return invalid(field+"."+entry.Key, "未知的边距方向")
		}
	}
	opts.Margin = layout.NormalizeMargins(o)
	return nil
}

func (t *Table) applyStyles(section *dsl.StylesSection) error {
	var target *layout.StyleOverride
	switch strings.ToLower(section.Role) {
	case "base":
		target = &t.Options.Styles
	case "header":
		target = &t.Options.HeaderStyles
	case "body":
		target = &t.Options.BodyStyles
	case "alternate", "alternate-row":
		target = &t.Options.AlternateRowStyles
	default:
		return invalid("styles."+section.Role, "未知的样式角色")
	}
	return applyStyleBlock(target, "styles."+section.Role, section.Block)
}

func applyStyleBlock(o *layout.StyleOverride, prefix string, block *dsl.Block) error {
	for _, a := range assignments(block) {
		field := prefix + "." + a.Key
		switch strings.ToLower(a.Key) {
		case "font":
			v := valueToString(a.Value)
			o.Font = &v
		case "font-style":
			s, err := normalizeFontStyle(field, valueToString(a.Value))
			if err != nil {
				return err
			}
			o.FontStyle = &s
		case "font-size":
			v, err := parseNumber(field, a.Value)
			if err != nil {
				return err
			}
			o.FontSize = &v
		case "cell-padding", "padding":
			v, err := parseNumber(field, a.Value)
			if err != nil {
				return err
			}
			o.CellPadding = &v
		case "line-height":
			v, err := parseFactor(field, a.Value)
			if err != nil {
				return err
			}
			o.LineHeight = &v
		case "fill-color", "text-color", "border-color":
			c, err := parseColorValue(field, a.Value)
			if err != nil {
				return err
			}
			switch strings.ToLower(a.Key) {
			case "fill-color":
				o.FillColor = c
			case "text-color":
				o.TextColor = c
			default:
				o.BorderColor = c
			}
		default:
			return invalid(field, "未知的样式字段")
		}
	}
	return nil
}

func normalizeFontStyle(field, v string) (layout.FontStyle, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(v), "-", "")) {
	case "normal", "regular":
		return layout.FontNormal, nil
	case "bold":
		return layout.FontBold, nil
	case "italic":
		return layout.FontItalic, nil
	case "bolditalic":
		return layout.FontBoldItalic, nil
	}
	return "", invalid(field, "未知的字体样式 %q", v)
}

// applyBorders 解析 borders 段：每条边可为 true/false 或线宽，all 同时设置外框四边。
func applyBorders(o *layout.BorderOverride, block *dsl.Block) error {
	for _, a := range assignments(block) {
		field := "borders." + a.Key
		edge, err := parseEdge(field, a.Value)
		if err != nil {
			return err
		}
		e := edge
		switch strings.ToLower(a.Key) {
		case "top":
			o.Top = &e
		case "right":
			o.Right = &e
		case "bottom":
			o.Bottom = &e
		case "left":
			o.Left = &e
		case "horizontal":
			o.Horizontal = &e
		case "vertical":
			o.Vertical = &e
		case "all":
			top, right, bottom, left := edge, edge, edge, edge
			o.Top, o.Right, o.Bottom, o.Left = &top, &right, &bottom, &left
		default:
			return invalid(field, "未知的边框")
		}
	}
	return nil
}

// applyColumns 解析 column <数据键> "表头" { ... } 命令，表头支持 ${path} 插值。
func (t *Table) applyColumns(block *dsl.Block, data any) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		field := fmt.Sprintf("columns[%d]", len(t.Columns))
		if cmd.Name != "column" {
			return invalid(field, "未知的命令 %q", cmd.Name)
		}
		col, err := parseColumn(field, cmd)
		if err != nil {
			return err
		}
		col.Header = binding.Interpolate(col.Header, data)
		t.Columns = append(t.Columns, col)
	}
	return nil
}

func parseColumn(field string, cmd *dsl.Command) (layout.ColumnSpec, error) {
	var (
		col layout.ColumnSpec
		key strings.Builder
	)
	for _, arg := range cmd.Args {
		if arg.IsString() {
			col.Header = arg.Value
			continue
		}
		key.WriteString(arg.Value)
	}
	col.DataKey = key.String()

	for _, a := range assignments(cmd.Block) {
		f := field + "." + a.Key
		var err error
		switch strings.ToLower(a.Key) {
		case "key", "data-key":
			col.DataKey = valueToString(a.Value)
		case "header":
			col.Header = valueToString(a.Value)
		case "width":
			col.Width, err = layout.ParseWidth(valueToString(a.Value))
			if err != nil {
				err = invalid(f, "%v", err)
			}
		case "min-width":
			col.MinWidth, err = parseNumber(f, a.Value)
		case "max-width":
			col.MaxWidth, err = parseNumber(f, a.Value)
		case "align":
			col.Align, err = normalizeAlign(f, valueToString(a.Value))
		case "header-align":
			col.HeaderAlign, err = normalizeAlign(f, valueToString(a.Value))
		case "wrap":
			col.Wrap, err = parseBool(f, a.Value)
		default:
			err = invalid(f, "未知的列属性")
		}
		if err != nil {
			return col, err
		}
	}
	if col.Header == "" {
		col.Header = col.DataKey
	}
	return col, nil
}

// applyRows 绑定 rows data.path，或收集行内 row { ... } 命令。
func (t *Table) applyRows(body *dsl.RowsBody, data any) error {
	if body == nil {
		return nil
	}
	if body.Source != nil {
		path := body.Source.Text()
		rows, err := bindRows(path, data)
		if err != nil {
			return err
		}
		t.Rows = append(t.Rows, rows...)
		return nil
	}
	if body.Block == nil {
		return nil
	}
	for _, stmt := range body.Block.Statements {
		cmd := stmt.Command
		if cmd == nil || cmd.Name != "row" {
			return &layout.Error{Kind: layout.KindValidation, Code: layout.CodeInvalidRows, Field: fmt.Sprintf("rows[%d]", len(t.Rows)), Msg: "rows 段只能包含 row 命令"}
		}
		row := layout.Row{}
		for _, a := range assignments(cmd.Block) {
			row[a.Key] = valueToAny(a.Value)
		}
		t.Rows = append(t.Rows, row)
	}
	return nil
}

// bindRows 在数据中查找行数组；路径可以省略前缀 data。
func bindRows(path string, data any) ([]layout.Row, error) {
	rowsErr := func(format string, args ...any) *layout.Error {
		return &layout.Error{Kind: layout.KindValidation, Code: layout.CodeInvalidRows, Field: "rows", Msg: fmt.Sprintf(format, args...)}
	}
	var source any
	switch {
	case path == "data":
		source = data
	default:
		lookup := strings.TrimPrefix(path, "data.")
		v, ok := binding.Lookup(data, lookup)
		if !ok {
			return nil, rowsErr("数据中不存在路径 %s", path)
		}
		source = v
	}

	var items []any
	switch s := source.(type) {
	case []any:
		items = s
	case []map[string]any:
		for _, m := range s {
			items = append(items, m)
		}
	default:
		return nil, rowsErr("路径 %s 需要数组，得到 %T", path, source)
	}

	rows := make([]layout.Row, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, rowsErr("%s[%d] 需要对象，得到 %T", path, i, item)
		}
		rows = append(rows, layout.Row(m))
	}
	return rows, nil
}

func assignments(block *dsl.Block) []*dsl.Assignment {
	if block == nil {
		return nil
	}
	out := make([]*dsl.Assignment, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil {
			out = append(out, stmt.Assignment)
		}
	}
	return out
}
