package parse

// MatchLen computes the fixed match length of the instruction subtree
// rooted at instrs[idx], or VarLen if that length varies by input.
// This is required before a look-behind's body can be accepted — a
// look-behind can only run backwards over fixed-width content — and
// is otherwise useful to any Backend wanting to size a match ahead of
// running it.
//
// As a side effect, MatchLen stamps LenFrom on every descendant it
// visits with idx, and caches the length it computes into that
// descendant's own Len field. Calling it more than once over
// overlapping subtrees is harmless; later calls simply overwrite the
// bookkeeping left by earlier ones.
func MatchLen(instrs []Instruction, idx int) int {
	in := &instrs[idx]

	switch in.Kind {
	case IWord:
		in.Len = len(in.Text)
	case ISet, INSet, IDot, IUSet:
		in.Len = 1
	case IOpt, IStar, IMStar, IPlus, IMPlus:
		in.Len = VarLen
	case IBack:
		in.Len = VarLen
	case IBegin, IEnd, ILAhead, INLAhead, ILBehind, INLBehind:
		in.Len = 0
	case IRep, IMRep:
		child := idx + 1
		instrs[child].LenFrom = idx
		childLen := MatchLen(instrs, child)
		if in.Value == in.Value2 && childLen != VarLen {
			in.Len = childLen * in.Value
		} else {
			in.Len = VarLen
		}
	case IGroup, ICGroup:
		sum := 0
		variable := false
		for c := idx + 1; c < in.Value; {
			instrs[c].LenFrom = idx
			l := MatchLen(instrs, c)
			if l == VarLen {
				variable = true
			} else {
				sum += l
			}
			c = nextSibling(instrs, c)
		}
		if variable {
			in.Len = VarLen
		} else {
			in.Len = sum
		}
	case IOr:
		instrs[idx+1].LenFrom = idx
		instrs[in.Value].LenFrom = idx
		left := matchLenSpan(instrs, idx+1, in.Value, idx)
		right := matchLenSpan(instrs, in.Value, in.Value2, idx)
		if left == right {
			in.Len = left
		} else {
			in.Len = VarLen
		}
	default:
		in.Len = VarLen
	}

	return in.Len
}

// matchLenSpan sums the fixed lengths of the sibling instructions
// running from start (inclusive) to end (exclusive), propagating
// VarLen if any one of them is variable. Every visited instruction's
// LenFrom is set to owner.
func matchLenSpan(instrs []Instruction, start, end, owner int) int {
	sum := 0
	variable := false
	for c := start; c < end; {
		instrs[c].LenFrom = owner
		l := MatchLen(instrs, c)
		if l == VarLen {
			variable = true
		} else {
			sum += l
		}
		c = nextSibling(instrs, c)
	}
	if variable {
		return VarLen
	}
	return sum
}

// nextSibling returns the index of the instruction immediately
// following the one at c, accounting for c's own extent: compound
// kinds occupy every instruction up to their Value (or Value2 for OR),
// quantifiers occupy the one instruction they quantify plus
// themselves, and everything else occupies a single slot.
func nextSibling(instrs []Instruction, c int) int {
	switch instrs[c].Kind {
	case IGroup, ICGroup, ILAhead, INLAhead, ILBehind, INLBehind:
		return instrs[c].Value
	case IOr:
		return instrs[c].Value2
	case IOpt, IStar, IMStar, IPlus, IMPlus, IRep, IMRep:
		return nextSibling(instrs, c+1)
	default:
		return c + 1
	}
}
