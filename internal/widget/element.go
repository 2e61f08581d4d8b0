package widget

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Element is a parsed custom tag.
type Element struct {
	Tag      string
	Attrs    map[string]any
	Children string
	From     int
	To       int
}

// ID returns the id attribute, if it is a non-empty string.
func (e *Element) ID() string {
	if s, ok := e.Attrs["id"].(string); ok {
		return s
	}
	return ""
}

//nolint:govet // participle grammar tags are not standard struct tags
type openTag struct {
	Name  string  `"<" @Ident`
	Attrs []*attr `@@*`
	Self  bool    `@"/"? ">"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attr struct {
	Key   string     `@Ident`
	Value *attrValue `( "=" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type attrValue struct {
	Str  *string  `  @String`
	Num  *float64 `| @Number`
	Expr *string  `| @Expr`
}

var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|'(\\.|[^'\\])*'`},
	{Name: "Expr", Pattern: `\{[^{}]*\}`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.:-]*`},
	{Name: "Punct", Pattern: `[<>/=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var tagParser = participle.MustBuild[openTag](
	participle.Lexer(tagLexer),
	participle.Unquote("String"),
	participle.Elide("Whitespace"),
)

// Parse parses the source text of one element node. from is the node's
// document offset.
func Parse(src string, from int) (*Element, error) {
	end, ok := openTagLen(src)
	if !ok {
		return nil, &ParseError{From: from, Err: ErrMalformedTag}
	}
	parsed, err := tagParser.ParseString("", src[:end])
	if err != nil {
		return nil, &ParseError{From: from, Err: fmt.Errorf("%w: %v", ErrMalformedTag, err)}
	}

	el := &Element{
		Tag:   parsed.Name,
		Attrs: make(map[string]any, len(parsed.Attrs)),
		From:  from,
		To:    from + len(src),
	}
	for _, a := range parsed.Attrs {
		v, err := a.value()
		if err != nil {
			return nil, &ParseError{From: from, Err: fmt.Errorf("%w: attribute %s: %v", ErrMalformedTag, a.Key, err)}
		}
		el.Attrs[a.Key] = v
	}

	if parsed.Self {
		return el, nil
	}
	closeTag := "</" + parsed.Name
	lt := strings.LastIndex(src, closeTag)
	if lt < end || !strings.HasSuffix(strings.TrimRight(src, " \t\n"), ">") {
		return nil, &ParseError{From: from, Err: fmt.Errorf("%w: missing %s>", ErrMalformedTag, closeTag)}
	}
	el.Children = src[end:lt]
	return el, nil
}

func (a *attr) value() (any, error) {
	v := a.Value
	switch {
	case v == nil:
		return true, nil
	case v.Str != nil:
		return *v.Str, nil
	case v.Num != nil:
		return *v.Num, nil
	default:
		src := (*v.Expr)[1 : len(*v.Expr)-1]
		return exprlang.Eval(src, map[string]any{})
	}
}

// openTagLen returns the length of the opening tag at the start of src.
// Quoted strings and braced expressions may contain '>'.
func openTagLen(src string) (int, bool) {
	if len(src) < 2 || src[0] != '<' {
		return 0, false
	}
	var quote byte
	braces := 0
	for k := 1; k < len(src); k++ {
		c := src[k]
		switch {
		case quote != 0:
			if c == '\\' {
				k++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			braces++
		case c == '}':
			if braces > 0 {
				braces--
			}
		case c == '>' && braces == 0:
			return k + 1, true
		}
	}
	return 0, false
}
