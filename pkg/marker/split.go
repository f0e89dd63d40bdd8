package marker

import (
	errs "github.com/matzehuels/wheeltool/pkg/errors"
)

// ExtraResult is the outcome of [SplitExtra].
type ExtraResult struct {
	Extra     string // Name from the extra == "..." clause, or "" if there was none
	Remaining Tree   // The marker with that clause removed; empty means always true
}

// SplitExtra removes the extra == "name" clause from t and returns the name
// together with the remaining expression.
//
// The clause may appear anywhere, including inside parenthesized groups.
// Connectives left without an operand are dropped, and groups that become
// empty are removed, so the remaining tree is always well formed. A tree
// naming more than one extra, or an extra clause with an empty name, is an
// error with code MALFORMED_MARKER. Other comparisons on extra (such as !=)
// are kept as ordinary terms.
//
// t itself is not modified.
func SplitExtra(t Tree) (ExtraResult, error) {
	var s splitter
	remaining, err := s.split(t)
	if err != nil {
		return ExtraResult{}, err
	}
	return ExtraResult{Extra: s.found, Remaining: remaining}, nil
}

// splitter carries the extra found so far across the recursive walk.
type splitter struct {
	found string
}

func (s *splitter) record(name string) error {
	if s.found != "" {
		return errs.New(errs.ErrCodeMalformedMarker, "marker references extra more than once (%q and %q)", s.found, name)
	}
	s.found = name
	return nil
}

func (s *splitter) split(t Tree) (Tree, error) {
	out := make(Tree, 0, len(t))
	for _, it := range t {
		switch it.Kind {
		case KindGroup:
			inner, err := s.split(it.Group)
			if err != nil {
				return nil, err
			}
			if len(inner) == 0 {
				out = trimTrailingOp(out)
				continue
			}
			out = append(out, GroupItem(inner))

		case KindTerm:
			name, isExtra, err := it.Term.extraName()
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeMalformedMarker, err, "invalid extra clause %s", it.Term)
			}
			if !isExtra {
				out = append(out, it)
				continue
			}
			if name == "" {
				return nil, errs.New(errs.ErrCodeMalformedMarker, "extra clause %s names no extra", it.Term)
			}
			if err := s.record(name); err != nil {
				return nil, err
			}
			out = trimTrailingOp(out)

		case KindOp:
			out = append(out, it)

		default:
			return nil, errs.New(errs.ErrCodeInternal, "unknown marker item kind %d", it.Kind)
		}
	}

	if len(out) > 0 && out[0].Kind == KindOp {
		out = out[1:]
	}
	return trimTrailingOp(out), nil
}

func trimTrailingOp(t Tree) Tree {
	if n := len(t); n > 0 && t[n-1].Kind == KindOp {
		return t[:n-1]
	}
	return t
}
