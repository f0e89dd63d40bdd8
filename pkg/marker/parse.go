package marker

import (
	"strings"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
)

// variables lists the environment variables PEP 508 defines, plus the
// synthetic extra variable. Legacy dotted spellings map to their canonical name.
var variables = map[string]string{
	"python_version":                 "python_version",
	"python_full_version":            "python_full_version",
	"os_name":                        "os_name",
	"sys_platform":                   "sys_platform",
	"platform_release":               "platform_release",
	"platform_system":                "platform_system",
	"platform_version":               "platform_version",
	"platform_machine":               "platform_machine",
	"platform_python_implementation": "platform_python_implementation",
	"implementation_name":            "implementation_name",
	"implementation_version":         "implementation_version",
	"extra":                          "extra",

	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokString
	tokIdent
	tokCompare
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a marker into tokens. Identifiers cover variables as well as the
// keywords and, or, in and not; the parser tells them apart.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, syntaxError(src, i, "unterminated string")
			}
			toks = append(toks, token{tokString, src[i+1 : i+1+end], i})
			i += end + 2
		case strings.IndexByte("<>=!~", c) >= 0:
			op := compareOp(src[i:])
			if op == "" {
				return nil, syntaxError(src, i, "invalid comparison operator")
			}
			toks = append(toks, token{tokCompare, op, i})
			i += len(op)
		case isIdentByte(c):
			start := i
			for i < len(src) && isIdentByte(src[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, src[start:i], start})
		default:
			return nil, syntaxError(src, i, "unexpected character "+string(c))
		}
	}
	return append(toks, token{tokEOF, "", len(src)}), nil
}

// compareOp returns the longest comparison operator prefixing s.
func compareOp(s string) string {
	for _, op := range []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"} {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func syntaxError(src string, pos int, msg string) error {
	return errs.Wrap(errs.ErrCodeMalformedMarker, &errs.SyntaxError{Input: src, Offset: pos, Msg: msg}, "invalid marker")
}

type parser struct {
	src  string
	toks []token
	pos  int
}

// Parse parses a PEP 508 environment marker into a [Tree].
// Errors carry the code MALFORMED_MARKER and wrap an [errs.SyntaxError].
func Parse(src string) (Tree, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, syntaxError(src, 0, "empty marker")
	}
	tree, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxError(src, t.pos, "unexpected "+describe(t))
	}
	return tree, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(src string) Tree {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expr = atom (("and" | "or") atom)*
func (p *parser) expr() (Tree, error) {
	var out Tree
	for {
		it, err := p.atom()
		if err != nil {
			return nil, err
		}
		out = append(out, it)

		t := p.peek()
		if t.kind != tokIdent || (t.text != string(And) && t.text != string(Or)) {
			return out, nil
		}
		p.next()
		out = append(out, OpItem(BoolOp(t.text)))
	}
}

// atom = "(" expr ")" | operand op operand
func (p *parser) atom() (Item, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.expr()
		if err != nil {
			return Item{}, err
		}
		if t := p.next(); t.kind != tokRParen {
			return Item{}, syntaxError(p.src, t.pos, "expected ) but found "+describe(t))
		}
		return GroupItem(inner), nil
	}

	start := p.peek().pos
	left, err := p.operand()
	if err != nil {
		return Item{}, err
	}
	op, err := p.operator()
	if err != nil {
		return Item{}, err
	}
	right, err := p.operand()
	if err != nil {
		return Item{}, err
	}
	if !left.Variable && !right.Variable {
		return Item{}, syntaxError(p.src, start, "comparison between two string literals")
	}
	return TermItem(Term{Left: left, Op: op, Right: right}), nil
}

func (p *parser) operand() (Operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return Lit(t.text), nil
	case tokIdent:
		if name, ok := variables[t.text]; ok {
			return Var(name), nil
		}
		return Operand{}, syntaxError(p.src, t.pos, "unknown variable "+t.text)
	}
	return Operand{}, syntaxError(p.src, t.pos, "expected variable or string but found "+describe(t))
}

func (p *parser) operator() (string, error) {
	t := p.next()
	switch {
	case t.kind == tokCompare:
		return t.text, nil
	case t.kind == tokIdent && t.text == "in":
		return "in", nil
	case t.kind == tokIdent && t.text == "not":
		if n := p.next(); n.kind != tokIdent || n.text != "in" {
			return "", syntaxError(p.src, n.pos, "expected in after not")
		}
		return "not in", nil
	}
	return "", syntaxError(p.src, t.pos, "expected comparison operator but found "+describe(t))
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of marker"
	case tokString:
		return "string " + Lit(t.text).String()
	}
	return t.text
}

// KnownVariable reports whether name is a marker variable, in canonical or
// legacy spelling.
func KnownVariable(name string) bool {
	_, ok := variables[name]
	return ok
}
