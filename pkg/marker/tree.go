package marker

import (
	"fmt"
	"strings"
)

// Kind identifies which variant an [Item] holds.
type Kind uint8

const (
	KindTerm  Kind = iota + 1 // a single comparison
	KindGroup                 // a parenthesized sub-expression
	KindOp                    // an and/or connective
)

// BoolOp is a boolean connective.
type BoolOp string

const (
	And BoolOp = "and"
	Or  BoolOp = "or"
)

// Operand is one side of a comparison: either an environment variable or a
// string literal.
type Operand struct {
	Value    string
	Variable bool
}

// Var returns a variable operand.
func Var(name string) Operand { return Operand{Value: name, Variable: true} }

// Lit returns a string literal operand.
func Lit(value string) Operand { return Operand{Value: value} }

// String renders the operand in marker syntax. Literals are double quoted
// unless they contain a double quote.
func (o Operand) String() string {
	if o.Variable {
		return o.Value
	}
	if strings.Contains(o.Value, `"`) {
		return "'" + o.Value + "'"
	}
	return `"` + o.Value + `"`
}

// Term is a single comparison such as python_version >= "3.8".
type Term struct {
	Left  Operand
	Op    string
	Right Operand
}

// String renders the term as "<left> <op> <right>".
func (t Term) String() string {
	return t.Left.String() + " " + t.Op + " " + t.Right.String()
}

// extraName reports whether t is an equality test against the extra
// variable and, if so, returns the literal it is compared with.
func (t Term) extraName() (name string, isExtra bool, err error) {
	if t.Op != "==" {
		return "", false, nil
	}
	var other Operand
	switch {
	case t.Left.Variable && t.Left.Value == "extra":
		other = t.Right
	case t.Right.Variable && t.Right.Value == "extra":
		other = t.Left
	default:
		return "", false, nil
	}
	if other.Variable {
		return "", true, fmt.Errorf("extra compared with variable %s, want a string literal", other.Value)
	}
	return other.Value, true, nil
}

// Item is one element of a [Tree]. Exactly one of Term, Group or Op is
// meaningful, selected by Kind.
type Item struct {
	Kind  Kind
	Term  Term
	Group Tree
	Op    BoolOp
}

// TermItem wraps a comparison.
func TermItem(t Term) Item { return Item{Kind: KindTerm, Term: t} }

// GroupItem wraps a parenthesized sub-expression.
func GroupItem(inner Tree) Item { return Item{Kind: KindGroup, Group: inner} }

// OpItem wraps a connective.
func OpItem(op BoolOp) Item { return Item{Kind: KindOp, Op: op} }

// String renders a single item.
func (it Item) String() string {
	switch it.Kind {
	case KindTerm:
		return it.Term.String()
	case KindGroup:
		return "(" + it.Group.String() + ")"
	case KindOp:
		return string(it.Op)
	}
	panic(fmt.Sprintf("marker: unknown item kind %d", it.Kind))
}

// Tree is a parsed marker expression: operands separated by connectives.
type Tree []Item

// String serializes the tree back into marker syntax. Items are joined with
// single spaces; the empty tree serializes to "".
func (t Tree) String() string {
	parts := make([]string, 0, len(t))
	for _, it := range t {
		parts = append(parts, it.String())
	}
	return strings.Join(parts, " ")
}

// Variables returns the distinct variable names referenced anywhere in t,
// in order of first appearance.
func (t Tree) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(Tree)
	walk = func(t Tree) {
		for _, it := range t {
			switch it.Kind {
			case KindGroup:
				walk(it.Group)
			case KindTerm:
				for _, o := range []Operand{it.Term.Left, it.Term.Right} {
					if o.Variable && !seen[o.Value] {
						seen[o.Value] = true
						out = append(out, o.Value)
					}
				}
			}
		}
	}
	walk(t)
	return out
}
