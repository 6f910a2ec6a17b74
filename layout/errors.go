package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 区分表格错误的类别。
type Kind int

const (
	KindInternal   Kind = iota // 未归类的意外失败
	KindValidation             // 渲染前的前置条件不满足，不会产生任何绘制
	KindRender                 // 绘制过程中的致命失败（表头绘制或新增页面）
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRender:
		return "render"
	default:
		return "internal"
	}
}

// Machine-readable error codes.
const (
	CodeInvalidColumns = "invalid_columns"
	CodeInvalidRows    = "invalid_rows"
	CodeInvalidOption  = "invalid_option"
	CodeHeaderDraw     = "header_draw_failed"
	CodeAddPage        = "add_page_failed"
	CodeUnexpected     = "unexpected"
)

// Error 是所有表格错误的统一类型，调用方只需捕获这一族错误。
type Error struct {
	Kind  Kind
	Code  string
	Field string // 校验失败时指向出错的选项路径，例如 columns[1].dataKey
	Msg   string
	Err   error
}

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrRender     = &Error{Kind: KindRender}
	ErrInternal   = &Error{Kind: KindInternal}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("table ")
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Code != "" {
		b.WriteString(" [")
		b.WriteString(e.Code)
		b.WriteString("]")
	}
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by Kind, and other *Error values by Kind and Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

func validationErr(code, field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func renderErr(code string, err error) *Error {
	return &Error{Kind: KindRender, Code: code, Err: err}
}

// wrapUnexpected 把不属于本错误族的失败包装为 internal 错误。
func wrapUnexpected(err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Kind: KindInternal, Code: CodeUnexpected, Err: err}
}
