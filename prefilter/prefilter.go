// Package prefilter extracts literal alternations from a parsed
// pattern and builds a multi-pattern automaton a Matcher can consult
// to skip straight to candidate match positions instead of invoking a
// full Backend run at every offset.
package prefilter

import "github.com/kirbyfan64/rejit-go/parse"

// ExtractLiterals reports the literal arms of instrs if, and only if,
// the entire pattern is a flat alternation of plain word literals —
// e.g. "cat|dog|bird" or a single bare literal with no alternation at
// all. Anything else (character classes, quantifiers, groups,
// anchors mixed into an arm) makes literal extraction unsound, so
// ExtractLiterals reports ok == false and the caller falls back to
// running the pattern unfiltered.
func ExtractLiterals(instrs []parse.Instruction) (lits [][]rune, ok bool) {
	end := -1
	for i := range instrs {
		if instrs[i].Kind == parse.INull {
			end = i
			break
		}
	}
	if end <= 0 {
		return nil, false
	}
	return collectArms(instrs, 0, end)
}

// collectArms collects the literal arms of the alternation spanning
// instrs[s:e], or reports ok == false if that span isn't a pure
// literal or a pure alternation of them.
func collectArms(instrs []parse.Instruction, s, e int) ([][]rune, bool) {
	if e-s == 1 && instrs[s].Kind == parse.IWord && len(instrs[s].Text) > 0 {
		return [][]rune{instrs[s].Text}, true
	}
	if instrs[s].Kind == parse.IOr && instrs[s].Value2 == e {
		left, ok := collectArms(instrs, s+1, instrs[s].Value)
		if !ok {
			return nil, false
		}
		right, ok := collectArms(instrs, instrs[s].Value, e)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	}
	return nil, false
}
