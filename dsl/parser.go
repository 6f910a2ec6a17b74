package dsl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Token kinds produced by the table lexer.
const (
	KindNewline = "Newline"
	KindColor   = "Color"
	KindNumber  = "Number"
	KindString  = "String"
	KindIdent   = "Ident"
	KindSymbol  = "Symbol"
	KindLBrace  = "LBrace"
	KindRBrace  = "RBrace"
)

var (
	// Colors are matched before hash comments; the word boundary keeps
	// "#2980B9" from being split after three digits.
	tableLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: KindNewline, Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: KindColor, Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: KindNumber, Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: KindString, Pattern: `"(?:\\.|[^"])*"`},
		{Name: KindIdent, Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: KindSymbol, Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: KindLBrace, Pattern: `{`},
		{Name: KindRBrace, Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(tableLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a table document.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section of a table document.
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Page      *PageSection      `parser:"| @@"`
	Options   *OptionsSection   `parser:"| @@"`
	Styles    *StylesSection    `parser:"| @@"`
	Borders   *BordersSection   `parser:"| @@"`
	Columns   *ColumnsSection   `parser:"| @@"`
	Rows      *RowsSection      `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Page != nil:
		return "page"
	case s.Options != nil:
		return "options"
	case s.Styles != nil:
		return "styles"
	case s.Borders != nil:
		return "borders"
	case s.Columns != nil:
		return "columns"
	case s.Rows != nil:
		return "rows"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// ResourcesSection groups font declarations.
type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// PageSection stores the page size and its header tokens (eg: orientation, margin).
type PageSection struct {
	Size   string    `parser:"'page' @Ident"`
	Params []*Lexeme `parser:"@@*"`
}

// OptionsSection holds render option assignments.
type OptionsSection struct {
	Block *Block `parser:"'options' @@"`
}

// StylesSection holds style assignments for one role (base/header/body/alternate).
type StylesSection struct {
	Role  string `parser:"'styles' @Ident"`
	Block *Block `parser:"@@"`
}

// BordersSection holds per-edge border assignments.
type BordersSection struct {
	Block *Block `parser:"'borders' @@"`
}

// ColumnsSection lists column commands.
type ColumnsSection struct {
	Block *Block `parser:"'columns' @@"`
}

// RowsSection either binds rows to a data path (rows data.items) or lists inline row commands.
type RowsSection struct {
	Body *RowsBody `parser:"'rows' @@"`
}

// RowsBody is the inline block or the data path expression of a rows section.
type RowsBody struct {
	Block  *Block      `parser:"  @@"`
	Source *Expression `parser:"| @@"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block: either `key: value` or a command such as `column sku "SKU" { ... }`.
type Statement struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Assignment *Assignment    `parser:"  @@"`
	Command    *Command       `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command is a named statement with positional arguments and an optional body.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// Value represents generic property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Object *InlineObject  `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// InlineObject captures `{ key: value }` inline maps.
type InlineObject struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ Newline* ( (';' | Newline+) Newline* @@ Newline* )* )? Newline* '}'"`
}

// SyntaxError reports where a table document failed to parse.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

func syntaxError(file string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return err
	}
	pos := perr.Position()
	return &SyntaxError{File: file, Line: pos.Line, Column: pos.Column, Msg: perr.Message()}
}

// Parse parses a table document from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	doc, err := documentParser.Parse("", r)
	if err != nil {
		return nil, syntaxError("", err)
	}
	return doc, nil
}

// ParseString parses a table document held in memory.
func ParseString(input string) (*Document, error) {
	doc, err := documentParser.ParseString("", input)
	if err != nil {
		return nil, syntaxError("", err)
	}
	return doc, nil
}

// ParseFile parses the document at path; syntax errors carry the file name.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := documentParser.Parse(path, f)
	if err != nil {
		return nil, syntaxError(path, err)
	}
	return doc, nil
}
