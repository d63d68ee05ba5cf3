package refvm

import (
	"golang.org/x/sys/unix"

	"github.com/kirbyfan64/rejit-go/internal/runeio"
	"github.com/kirbyfan64/rejit-go/parse"
)

// Program is the reference backtracking interpreter's compiled
// artifact. It holds the instruction tree it was compiled from
// unchanged; evaluation never mutates it, and Skip/Unskip bias left
// over from a prior pass, if any, is never consulted.
type Program struct {
	instrs   []parse.Instruction
	groups   int
	maxDepth int
	flags    parse.Flags
	region   []byte
	lbLen    map[int]int

	closed bool
}

// Run implements jit.Program.
func (p *Program) Run(input []rune, groups []int) int {
	for i := range groups {
		groups[i] = -1
	}
	if len(groups) > 0 {
		groups[0] = 0
	}

	e := &evaluator{
		input:  input,
		instrs: p.instrs,
		flags:  p.flags,
		groups: groups,
		lbLen:  p.lbLen,
	}

	result := -1
	e.matchSeq(0, 0, func(pos int) bool {
		result = pos
		if len(groups) > 1 {
			groups[1] = pos
		}
		return true
	})
	return result
}

// Close implements jit.Program.
func (p *Program) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Munmap(p.region)
}

// evaluator walks the flattened instruction tree with a
// continuation-passing backtracking matcher: matchSeq(ip, pos, k)
// matches instrs[ip] (and, for compound kinds, its whole subtree),
// then calls k with the resulting position to match whatever follows.
// Returning false from k forces matchSeq to try the next alternative,
// if any, which is how backtracking falls out of plain recursion.
type evaluator struct {
	input  []rune
	instrs []parse.Instruction
	flags  parse.Flags
	groups []int
	lbLen  map[int]int
}

func (e *evaluator) eq(a, b rune) bool {
	if a == b {
		return true
	}
	if e.flags&parse.ICase != 0 {
		return runeio.ToLower(a) == runeio.ToLower(b)
	}
	return false
}

func (e *evaluator) inSet(r rune, set []rune) bool {
	for _, m := range set {
		if e.eq(r, m) {
			return true
		}
	}
	return false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || runeio.IsDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r > RuneASCIIMax)
}

// RuneASCIIMax mirrors runeio.RuneASCIIMax; \w treats any non-ASCII
// rune as a word character, matching the set expander's Unicode-aware
// default everywhere else in this pipeline.
const RuneASCIIMax = runeio.RuneASCIIMax

func (e *evaluator) matchUSet(class rune, neg bool, r rune) bool {
	var ok bool
	switch class {
	case 'd':
		ok = runeio.IsDigit(r)
	case 'w':
		ok = isWordRune(r)
	case 's':
		ok = isSpace(r)
	}
	if neg {
		return !ok
	}
	return ok
}

// matchSeq matches instrs[ip] starting at pos, then continues with k.
func (e *evaluator) matchSeq(ip, pos int, k func(int) bool) bool {
	in := &e.instrs[ip]

	switch in.Kind {
	case parse.INull:
		return k(pos)

	case parse.IWord:
		n := len(in.Text)
		if pos+n > len(e.input) {
			return false
		}
		for i, r := range in.Text {
			if !e.eq(e.input[pos+i], r) {
				return false
			}
		}
		return e.matchSeq(ip+1, pos+n, k)

	case parse.IDot:
		if pos >= len(e.input) {
			return false
		}
		if e.input[pos] == '\n' && e.flags&parse.DotAll == 0 {
			return false
		}
		return e.matchSeq(ip+1, pos+1, k)

	case parse.ISet:
		if pos >= len(e.input) || !e.inSet(e.input[pos], in.Set) {
			return false
		}
		return e.matchSeq(ip+1, pos+1, k)

	case parse.INSet:
		if pos >= len(e.input) || e.inSet(e.input[pos], in.Set) {
			return false
		}
		return e.matchSeq(ip+1, pos+1, k)

	case parse.IUSet:
		if pos >= len(e.input) || !e.matchUSet(rune(in.Value), in.Value2 != 0, e.input[pos]) {
			return false
		}
		return e.matchSeq(ip+1, pos+1, k)

	case parse.IBegin:
		if pos != 0 {
			return false
		}
		return e.matchSeq(ip+1, pos, k)

	case parse.IEnd:
		if pos != len(e.input) {
			return false
		}
		return e.matchSeq(ip+1, pos, k)

	case parse.IBack:
		return e.matchBack(ip, pos, k)

	case parse.IOpt, parse.IStar, parse.IPlus, parse.IRep,
		parse.IMStar, parse.IMPlus, parse.IMRep:
		return e.matchQuant(ip, pos, k)

	case parse.IGroup:
		after := in.Value
		return e.matchSeq(ip+1, pos, func(p2 int) bool {
			return e.matchSeq(after, p2, k)
		})

	case parse.ICGroup:
		return e.matchCGroup(ip, pos, k)

	case parse.IOr:
		after := in.Value2
		if e.matchSeq(ip+1, pos, func(p2 int) bool { return e.matchSeq(after, p2, k) }) {
			return true
		}
		return e.matchSeq(in.Value, pos, func(p2 int) bool { return e.matchSeq(after, p2, k) })

	case parse.ILAhead:
		after := in.Value
		if !e.matchSeq(ip+1, pos, func(int) bool { return true }) {
			return false
		}
		return e.matchSeq(after, pos, k)

	case parse.INLAhead:
		after := in.Value
		if e.matchSeq(ip+1, pos, func(int) bool { return true }) {
			return false
		}
		return e.matchSeq(after, pos, k)

	case parse.ILBehind:
		after := in.Value
		l := e.lbLen[ip]
		start := pos - l
		if start < 0 {
			return false
		}
		if !e.matchSeq(ip+1, start, func(p2 int) bool { return p2 == pos }) {
			return false
		}
		return e.matchSeq(after, pos, k)

	case parse.INLBehind:
		after := in.Value
		l := e.lbLen[ip]
		start := pos - l
		matched := start >= 0 && e.matchSeq(ip+1, start, func(p2 int) bool { return p2 == pos })
		if matched {
			return false
		}
		return e.matchSeq(after, pos, k)
	}

	return false
}

func (e *evaluator) matchBack(ip, pos int, k func(int) bool) bool {
	in := &e.instrs[ip]
	gi := 2 * (in.Value + 1)
	if e.groups == nil || gi+1 >= len(e.groups) {
		return false
	}
	start, end := e.groups[gi], e.groups[gi+1]
	if start < 0 || end < 0 {
		return false
	}
	n := end - start
	if pos+n > len(e.input) {
		return false
	}
	for i := 0; i < n; i++ {
		if !e.eq(e.input[pos+i], e.input[start+i]) {
			return false
		}
	}
	return e.matchSeq(ip+1, pos+n, k)
}

func (e *evaluator) matchCGroup(ip, pos int, k func(int) bool) bool {
	in := &e.instrs[ip]
	after := in.Value
	gi := 2 * (in.Value2 + 1)

	var oldStart, oldEnd int
	hasSlot := e.groups != nil && gi+1 < len(e.groups)
	if hasSlot {
		oldStart, oldEnd = e.groups[gi], e.groups[gi+1]
	}

	ok := e.matchSeq(ip+1, pos, func(p2 int) bool {
		if hasSlot {
			e.groups[gi], e.groups[gi+1] = pos, p2
		}
		if e.matchSeq(after, p2, k) {
			return true
		}
		if hasSlot {
			e.groups[gi], e.groups[gi+1] = oldStart, oldEnd
		}
		return false
	})
	if !ok && hasSlot {
		e.groups[gi], e.groups[gi+1] = oldStart, oldEnd
	}
	return ok
}

// matchQuant handles IOpt/IStar/IPlus/IRep and their minimal variants.
// child is the single instruction (and subtree) being repeated; after
// is where matching resumes once the repetition is done.
func (e *evaluator) matchQuant(ip, pos int, k func(int) bool) bool {
	in := &e.instrs[ip]
	child := ip + 1
	after := nextSibling(e.instrs, child)

	var min, max int
	minimal := false
	switch in.Kind {
	case parse.IOpt:
		min, max = 0, 1
	case parse.IStar:
		min, max = 0, -1
	case parse.IPlus:
		min, max = 1, -1
	case parse.IRep:
		min, max = in.Value, in.Value2
	case parse.IMStar:
		min, max, minimal = 0, -1, true
	case parse.IMPlus:
		min, max, minimal = 1, -1, true
	case parse.IMRep:
		min, max, minimal = in.Value, in.Value2, true
	}

	var try func(count, p int) bool
	try = func(count, p int) bool {
		canStop := count >= min
		canRepeat := max < 0 || count < max

		attemptStop := func() bool { return canStop && e.matchSeq(after, p, k) }
		attemptRepeat := func() bool {
			if !canRepeat {
				return false
			}
			return e.matchSeq(child, p, func(p2 int) bool {
				if p2 == p && count >= min {
					// Zero-width repetition once the
					// minimum is satisfied: stop here
					// rather than looping forever.
					return false
				}
				return try(count+1, p2)
			})
		}

		if minimal {
			if attemptStop() {
				return true
			}
			return attemptRepeat()
		}
		if attemptRepeat() {
			return true
		}
		return attemptStop()
	}

	return try(0, pos)
}

// nextSibling mirrors parse's unexported helper of the same name: the
// index of the instruction immediately following the one at c, given
// c's own extent.
func nextSibling(instrs []parse.Instruction, c int) int {
	switch instrs[c].Kind {
	case parse.IGroup, parse.ICGroup, parse.ILAhead, parse.INLAhead, parse.ILBehind, parse.INLBehind:
		return instrs[c].Value
	case parse.IOr:
		return instrs[c].Value2
	case parse.IOpt, parse.IStar, parse.IMStar, parse.IPlus, parse.IMPlus, parse.IRep, parse.IMRep:
		return nextSibling(instrs, c+1)
	default:
		return c + 1
	}
}
