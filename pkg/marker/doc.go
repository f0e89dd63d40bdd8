// Package marker parses, rewrites and evaluates PEP 508 environment markers.
//
// # Overview
//
// An environment marker is the boolean expression after the semicolon of a
// requirement, such as:
//
//	sphinx; extra == "docs" and python_version >= "3.8"
//
// [Parse] turns the marker text into a [Tree]: a flat sequence of [Item]
// values where each item is a comparison term, a parenthesized group holding
// a nested Tree, or an and/or connective. Connectives sit between operands,
// exactly as written, so precedence (and binds tighter than or) is applied
// by [Tree.Evaluate] rather than encoded in the structure.
//
// # Splitting Extras
//
// Wheel metadata declares optional dependency groups by guarding a
// requirement with an extra == "name" clause. [SplitExtra] removes that
// clause wherever it appears and returns the extra name together with the
// remaining condition:
//
//	tree, _ := marker.Parse(`extra == "docs" and python_version >= "3.8"`)
//	res, _ := marker.SplitExtra(tree)
//	res.Extra              // "docs"
//	res.Remaining.String() // `python_version >= "3.8"`
//
// A marker may name at most one extra. A second extra clause anywhere in the
// tree is reported as an error with code MALFORMED_MARKER.
//
// # Evaluation
//
// [Tree.Evaluate] checks a tree against an [Environment]. Version-like values
// are compared with PEP 440 semantics; everything else falls back to string
// comparison. The empty tree always evaluates to true.
package marker
