package marker

import (
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Evaluate reports whether t holds in env. Connectives are applied with and
// binding tighter than or. The empty tree is true.
func (t Tree) Evaluate(env Environment) bool {
	result, conj := false, true
	for _, it := range t {
		switch it.Kind {
		case KindOp:
			if it.Op == Or {
				result = result || conj
				conj = true
			}
		case KindGroup:
			conj = conj && it.Group.Evaluate(env)
		case KindTerm:
			conj = conj && it.Term.Evaluate(env)
		}
	}
	return result || conj
}

// Evaluate reports whether the comparison holds in env.
func (t Term) Evaluate(env Environment) bool {
	lhs, rhs := env.resolve(t.Left), env.resolve(t.Right)
	if isExtra(t.Left) || isExtra(t.Right) {
		lhs, rhs = NormalizeExtra(lhs), NormalizeExtra(rhs)
	}
	return compare(lhs, t.Op, rhs)
}

func isExtra(o Operand) bool { return o.Variable && o.Value == "extra" }

func compare(lhs, op, rhs string) bool {
	switch op {
	case "in":
		return strings.Contains(rhs, lhs)
	case "not in":
		return !strings.Contains(rhs, lhs)
	case "===":
		return lhs == rhs
	}

	if ok, versioned := compareVersions(lhs, op, rhs); versioned {
		return ok
	}

	switch op {
	case "==":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	}
	return false
}

// compareVersions applies op with PEP 440 semantics when rhs forms a valid
// specifier and lhs a valid version.
func compareVersions(lhs, op, rhs string) (ok, versioned bool) {
	if lhs == "" || rhs == "" {
		return false, false
	}
	spec, err := pep440.NewSpecifiers(op + rhs)
	if err != nil {
		return false, false
	}
	v, err := pep440.Parse(lhs)
	if err != nil {
		return false, false
	}
	return spec.Check(v), true
}
