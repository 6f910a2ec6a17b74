package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	kindByType = func() map[lexer.TokenType]string {
		symbols := tableLexer.Symbols()
		out := make(map[lexer.TokenType]string, len(symbols))
		for name, tt := range symbols {
			out[tt] = name
		}
		return out
	}()

	newlineType = tokenType(KindNewline)
	lbraceType  = tokenType(KindLBrace)
	rbraceType  = tokenType(KindRBrace)
	symbolType  = tokenType(KindSymbol)
	stringType  = tokenType(KindString)
)

func tokenType(kind string) lexer.TokenType {
	tt, ok := tableLexer.Symbols()[kind]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", kind))
	}
	return tt
}

// Lexeme is a single token kept verbatim, used for command arguments and expressions.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// IsString reports whether the lexeme was a quoted string; Value holds the unquoted text.
func (l *Lexeme) IsString() bool { return l.Type == KindString }

// Parse implements participle.Parseable: arguments run until a newline, brace or ';'.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if endsArgs(lex.Peek()) {
		return participle.NextMatch
	}
	next, err := takeLexeme(lex)
	if err != nil {
		return err
	}
	*l = *next
	return nil
}

func endsArgs(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case newlineType, lbraceType, rbraceType:
		return true
	case symbolType:
		return tok.Value == ";"
	}
	return false
}

// Expression records the raw tokens of a free-form value such as `data.items` or `striped`.
type Expression struct {
	Parts []*Lexeme
}

// Parse implements participle.Parseable for Expression.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	var (
		depth nesting
		parts []*Lexeme
	)
	for !depth.ends(lex.Peek()) {
		next, err := takeLexeme(lex)
		if err != nil {
			return err
		}
		depth.track(next.Raw)
		parts = append(parts, next)
	}
	if len(parts) == 0 {
		return participle.NextMatch
	}
	e.Parts = parts
	return nil
}

// Text joins the token values without separators, so `data . items` reads back as "data.items".
func (e *Expression) Text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range e.Parts {
		b.WriteString(p.Value)
	}
	return b.String()
}

// nesting counts open parentheses and brackets while an expression is scanned.
type nesting struct {
	paren, bracket int
}

func (n *nesting) track(raw string) {
	switch raw {
	case "(":
		n.paren++
	case ")":
		n.paren = max(n.paren-1, 0)
	case "[":
		n.bracket++
	case "]":
		n.bracket = max(n.bracket-1, 0)
	}
}

// ends reports whether tok closes the expression at the current depth.
func (n nesting) ends(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	flat := n.paren == 0 && n.bracket == 0
	switch tok.Type {
	case newlineType, lbraceType, rbraceType:
		return flat
	case symbolType:
		switch tok.Value {
		case ";", ",":
			return flat
		case "]":
			return n.bracket == 0
		}
	}
	return false
}

func takeLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	val := tok.Value
	if tok.Type == stringType {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: bad string literal %s: %w", tok.Pos, tok.Value, err)
		}
		val = unquoted
	}
	kind, ok := kindByType[tok.Type]
	if !ok {
		kind = fmt.Sprintf("#%d", tok.Type)
	}
	return &Lexeme{Type: kind, Value: val, Raw: tok.Value, Pos: tok.Pos}, nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}
