package parse

import "github.com/kirbyfan64/rejit-go/internal/runeio"

// Parse compiles a pattern into a flattened instruction tree. flags
// seeds the initial case-sensitivity / dot-matches-newline state;
// inline (?i) and (?s) clusters in the pattern OR additional bits on
// top of it. Result.Flags is a single value for the whole pattern, so
// a cluster affects the parts before it as well as the parts after.
func Parse(pattern string, flags Flags) (*Result, *Error) {
	runes := runeio.Decode(pattern)

	tokens, err := Tokenize(runes)
	if err != nil {
		return nil, err
	}

	st, err := analyzeStructure(tokens)
	if err != nil {
		return nil, err
	}

	p := &parser{
		pattern:         runes,
		tokens:          tokens,
		st:              st,
		res:             &Result{Flags: flags},
		pendingRepCheck: -1,
	}
	return p.run()
}

type parser struct {
	pattern []rune
	tokens  []Token
	st      *structure

	res *Result

	groupStack []openGroup
	pipeStack  []pendingOr

	lbDepth int // look-behind nesting depth

	// pendingRepCheck/pendingRepPos defer a look-behind length check
	// for a just-emitted REP/MREP instruction until after the atom it
	// quantifies has also been emitted, since REP's own length depends
	// on that atom. -1 means nothing is pending.
	pendingRepCheck int
	pendingRepPos   int
}

// pendingOr tracks an IOr instruction emitted for an alternation whose
// right arm hasn't been reached yet.
type pendingOr struct {
	mid, end int // token indices, copied from the structural pass
	instr    int // index of the IOr instruction in res.Instrs
}

// openGroup tracks a GROUP/CGROUP/look-around instruction between its
// opening '(' and its closing ')'. repCheck carries a REP/MREP
// instruction's index forward from the moment the group was opened
// (REP always quantifies "the next instruction", i.e. this group) to
// the moment it closes, since REP's own fixed-length check can only
// run once the group's full extent — and therefore its length — is
// known. repCheck is -1 when no such check is pending.
type openGroup struct {
	instr    int
	repCheck int
	repPos   int
}

func (p *parser) emit(in Instruction) int {
	idx := len(p.res.Instrs)
	in.LenFrom = -1
	p.res.Instrs = append(p.res.Instrs, in)
	return idx
}

func (p *parser) run() (*Result, *Error) {
	n := len(p.tokens)

	for i := 0; i < n; i++ {
		if len(p.groupStack) > p.res.MaxDepth {
			p.res.MaxDepth = len(p.groupStack)
		}

		if suf := p.st.Suffixes[i]; suf != -1 {
			if perr := p.emitSuffix(suf); perr != nil {
				return nil, perr
			}
		}

		if len(p.pipeStack) > 0 {
			top := &p.pipeStack[len(p.pipeStack)-1]
			switch i {
			case top.mid:
				p.res.Instrs[top.instr].Value = len(p.res.Instrs)
			case top.end:
				if perr := p.lbhCheck(top.instr, p.tokens[top.mid].Pos); perr != nil {
					return nil, perr
				}
				p.res.Instrs[top.instr].Value2 = len(p.res.Instrs)
				p.pipeStack = p.pipeStack[:len(p.pipeStack)-1]
			}
		}

		if p.st.Pipes[i].Mid != -1 {
			idx := p.emit(Instruction{Kind: IOr})
			p.pipeStack = append(p.pipeStack, pendingOr{
				mid:   p.st.Pipes[i].Mid,
				end:   p.st.Pipes[i].End,
				instr: idx,
			})
		}

		advance, perr := p.emitAtom(i)
		if perr != nil {
			return nil, perr
		}

		if p.pendingRepCheck != -1 {
			check, pos := p.pendingRepCheck, p.pendingRepPos
			p.pendingRepCheck = -1
			if perr := p.lbhCheck(check, pos); perr != nil {
				return nil, perr
			}
		}

		if advance > 0 {
			i += advance
		}
	}

	// A top-level alternation with no enclosing parens (e.g. "ab|cd")
	// never hits a ')' to close it, so its pipeRange.End is never set
	// by the structural pass: its right arm simply runs to the end of
	// the pattern. Close any such still-open entries here.
	for len(p.pipeStack) > 0 {
		top := p.pipeStack[len(p.pipeStack)-1]
		p.pipeStack = p.pipeStack[:len(p.pipeStack)-1]
		if perr := p.lbhCheck(top.instr, p.tokens[top.mid].Pos); perr != nil {
			return nil, perr
		}
		p.res.Instrs[top.instr].Value2 = len(p.res.Instrs)
	}

	p.emit(Instruction{Kind: INull})
	// INull stays in Instrs as its final element; callers rely on it
	// only as an end-of-stream sentinel.

	if len(p.groupStack) != 0 {
		return nil, &Error{Kind: EUBound, Pos: len(p.pattern)}
	}

	return p.res, nil
}

// emitSuffix emits the quantifier instruction for the atom or group
// whose last token is tokens[sufIdx-ish]; sufIdx is the index of the
// quantifier token itself (STAR, PLUS, Q or REP), as recorded by the
// structural pass.
func (p *parser) emitSuffix(sufIdx int) *Error {
	st := p.tokens[sufIdx]
	kind := suffixInstrKind(st.Kind)

	in := Instruction{Kind: kind}
	deferCheck := false

	if st.Kind == TRep {
		min, max, perr := parseRepBounds(p.pattern, st)
		if perr != nil {
			return perr
		}
		in.Value, in.Value2 = min, max
		deferCheck = true
	}

	// "a*?" / "a+?" / "a{m,n}?" request the minimal (non-greedy)
	// variant; a following '?' after an OPT changes nothing, since OPT
	// is already the minimal member of its own band.
	if sufIdx+1 < len(p.tokens) && p.tokens[sufIdx+1].Kind == TQ && in.Kind != IOpt {
		in.Kind = minimalVariant(in.Kind)
	}

	idx := p.emit(in)

	if !deferCheck {
		if perr := p.lbhCheck(idx, st.Pos); perr != nil {
			return perr
		}
	} else {
		p.pendingRepCheck = idx
		p.pendingRepPos = st.Pos
	}

	return nil
}

func suffixInstrKind(tk TokenKind) InstrKind {
	switch tk {
	case TStar:
		return IStar
	case TPlus:
		return IPlus
	case TQ:
		return IOpt
	case TRep:
		return IRep
	}
	panic("parse: suffixInstrKind of non-suffix token")
}

func minimalVariant(k InstrKind) InstrKind {
	switch k {
	case IStar:
		return IMStar
	case IPlus:
		return IMPlus
	case IRep:
		return IMRep
	default:
		return k
	}
}

// parseRepBounds parses the "{m,n}" or "{m}" body of a REP token,
// whose span (st.Pos, st.Len) includes the braces.
func parseRepBounds(pattern []rune, st Token) (min, max int, err *Error) {
	pos := st.Pos + 1 // skip '{'
	min, pos, ok := scanInt(pattern, pos)
	if !ok {
		return 0, 0, &Error{Kind: EInt, Pos: pos}
	}
	if pattern[pos] == '}' {
		return min, min, nil
	}
	if pattern[pos] != ',' {
		return 0, 0, &Error{Kind: EInt, Pos: pos}
	}
	pos++
	max, pos, ok = scanInt(pattern, pos)
	if !ok {
		return 0, 0, &Error{Kind: EInt, Pos: pos}
	}
	if pattern[pos] != '}' {
		return 0, 0, &Error{Kind: EInt, Pos: pos}
	}
	return min, max, nil
}

func scanInt(pattern []rune, pos int) (val, next int, ok bool) {
	start := pos
	for pos < len(pattern) && runeio.IsDigit(pattern[pos]) {
		pos++
	}
	if pos == start {
		return 0, pos, false
	}
	n := 0
	for i := start; i < pos; i++ {
		n = n*10 + int(pattern[i]-'0')
	}
	return n, pos, true
}

// lbhCheck validates, while inside a look-behind, that the
// just-emitted instruction at idx has a fixed match length.
func (p *parser) lbhCheck(idx int, pos int) *Error {
	if p.lbDepth == 0 {
		return nil
	}
	if MatchLen(p.res.Instrs, idx) == VarLen {
		return &Error{Kind: ELBVar, Pos: pos}
	}
	return nil
}

// emitAtom emits the instruction (if any) for tokens[i] and returns
// how many extra tokens it consumed beyond tokens[i] itself (e.g. a
// recognized "(?...)" cluster consumes the '?' and marker word, and a
// flags-only cluster additionally consumes the closing ')').
func (p *parser) emitAtom(i int) (advance int, err *Error) {
	t := p.tokens[i]

	switch t.Kind {
	case TWord:
		text := make([]rune, t.Len)
		copy(text, p.pattern[t.Pos:t.Pos+t.Len])
		idx := p.emit(Instruction{Kind: IWord, Text: text, Len: t.Len})
		return 0, p.lbhCheck(idx, t.Pos)

	case TDot:
		idx := p.emit(Instruction{Kind: IDot, Len: 1})
		return 0, p.lbhCheck(idx, t.Pos)

	case TCaret:
		idx := p.emit(Instruction{Kind: IBegin, Len: 0})
		return 0, p.lbhCheck(idx, t.Pos)

	case TDollar:
		idx := p.emit(Instruction{Kind: IEnd, Len: 0})
		return 0, p.lbhCheck(idx, t.Pos)

	case TBack:
		digit := p.pattern[t.Pos+1]
		idx := p.emit(Instruction{Kind: IBack, Value: int(digit-'0') - 1, Len: VarLen})
		return 0, p.lbhCheck(idx, t.Pos)

	case TMS:
		class := p.pattern[t.Pos+1]
		neg := 0
		if runeio.IsUpper(class) {
			neg = 1
		}
		idx := p.emit(Instruction{Kind: IUSet, Value: int(runeio.ToLower(class)), Value2: neg, Len: 1})
		return 0, p.lbhCheck(idx, t.Pos)

	case TSet:
		body := p.pattern[t.Pos+1 : t.Pos+t.Len-1]
		neg := false
		if len(body) > 0 && body[0] == '^' {
			neg = true
			body = body[1:]
		}
		bodyPos := t.Pos + 1
		if neg {
			bodyPos++
		}
		members, perr := ExpandSet(body, bodyPos)
		if perr != nil {
			return 0, perr
		}
		kind := ISet
		if neg {
			kind = INSet
		}
		idx := p.emit(Instruction{Kind: kind, Set: members, Len: 1})
		return 0, p.lbhCheck(idx, t.Pos)

	case TP:
		// The OR instruction for this alternation was already emitted
		// when its left arm's first token was reached; '|' itself
		// contributes nothing.
		return 0, nil

	case TLP:
		return p.emitLP(i)

	case TRP:
		return 0, p.emitRP(t)
	}

	return 0, nil
}

// emitLP handles '(' and every "(?...)" cluster that can follow it:
// "(?:" non-capturing, "(?=" / "(?!" look-ahead, "(?<=" / "(?<!"
// look-behind, "(?flags)" inline flag toggles, or a plain capturing
// group if none of those shapes match.
func (p *parser) emitLP(i int) (advance int, err *Error) {
	n := len(p.tokens)
	isExtension := i+1 < n && p.tokens[i+1].Kind == TQ

	if isExtension {
		if i+2 >= n || p.tokens[i+2].Kind != TWord {
			return 0, &Error{Kind: ESyntax, Pos: p.tokens[i+1].Pos}
		}
		marker := &p.tokens[i+2]
		first := p.pattern[marker.Pos]

		switch first {
		case ':':
			return p.openCompound(i, marker, 1, IGroup)
		case '=':
			return p.openCompound(i, marker, 1, ILAhead)
		case '!':
			return p.openCompound(i, marker, 1, INLAhead)
		case '<':
			if marker.Len < 2 {
				return 0, &Error{Kind: ESyntax, Pos: marker.Pos + 1}
			}
			switch p.pattern[marker.Pos+1] {
			case '=':
				adv, perr := p.openCompound(i, marker, 2, ILBehind)
				p.lbDepth++
				return adv, perr
			case '!':
				adv, perr := p.openCompound(i, marker, 2, INLBehind)
				p.lbDepth++
				return adv, perr
			default:
				return 0, &Error{Kind: ESyntax, Pos: marker.Pos + 1}
			}
		default:
			if i+3 < n && p.tokens[i+3].Kind == TRP {
				for j, r := range p.pattern[marker.Pos : marker.Pos+marker.Len] {
					switch r {
					case 's':
						p.res.Flags |= DotAll
					case 'i':
						p.res.Flags |= ICase
					default:
						return 0, &Error{Kind: ESyntax, Pos: marker.Pos + j}
					}
				}
				// Consume '?', the flags word, and the closing ')'.
				return 3, nil
			}
			return 0, &Error{Kind: ESyntax, Pos: marker.Pos}
		}
	}

	idx := p.emit(Instruction{Kind: ICGroup, Value2: p.res.Groups})
	p.res.Groups++
	p.pushGroup(idx)
	return 0, nil
}

// pushGroup opens a new group/look-around instruction at idx, adopting
// any REP check left pending by emitSuffix for this same atom.
func (p *parser) pushGroup(idx int) {
	g := openGroup{instr: idx, repCheck: -1}
	if p.pendingRepCheck != -1 {
		g.repCheck, g.repPos = p.pendingRepCheck, p.pendingRepPos
		p.pendingRepCheck = -1
	}
	p.groupStack = append(p.groupStack, g)
}

// openCompound emits a group/look-around instruction whose body starts
// right after a recognized "(?X" marker, strips the markerLen marker
// runes from the front of marker so the next loop iteration picks up
// the body as ordinary content, and pushes the opened instruction onto
// the group stack.
func (p *parser) openCompound(lpIdx int, marker *Token, markerLen int, kind InstrKind) (advance int, err *Error) {
	if len(p.groupStack) >= MaxStackDepth {
		return 0, &Error{Kind: EOvflow, Pos: p.tokens[lpIdx].Pos}
	}
	marker.Pos += markerLen
	marker.Len -= markerLen

	idx := p.emit(Instruction{Kind: kind})
	p.pushGroup(idx)
	// Consume '?' and the marker word; if the marker is now empty (its
	// entire span was just the marker, e.g. "(?:)"), also consume the
	// token so an empty TWord is never dispatched for it.
	if marker.Len == 0 {
		return 2, nil
	}
	return 1, nil
}

func (p *parser) emitRP(t Token) *Error {
	if len(p.groupStack) == 0 {
		return &Error{Kind: EUBound, Pos: t.Pos}
	}
	top := p.groupStack[len(p.groupStack)-1]
	p.groupStack = p.groupStack[:len(p.groupStack)-1]

	// The group's extent must be set before anything computes its
	// match length, whether that's this closing check (for a group
	// nested inside an outer look-behind) or a REP quantifying the
	// whole group.
	p.res.Instrs[top.instr].Value = len(p.res.Instrs)

	if perr := p.lbhCheck(top.instr, t.Pos); perr != nil {
		return perr
	}

	switch p.res.Instrs[top.instr].Kind {
	case ILBehind, INLBehind:
		p.lbDepth--
	}

	if top.repCheck != -1 {
		if perr := p.lbhCheck(top.repCheck, top.repPos); perr != nil {
			return perr
		}
	}

	return nil
}
