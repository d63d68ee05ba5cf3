package jit

import "github.com/kirbyfan64/rejit-go/parse"

// Filter narrows down where Search needs to try a full match. Next
// returns the next input offset at or after from worth attempting, or
// ok == false once no candidate remains. A Filter is an optimization
// only — Search must behave identically whether or not one is
// supplied, just faster when candidates are sparse. Matcher itself
// never constructs a Filter; see package prefilter for one grounded on
// literal alternations.
type Filter interface {
	Next(input []rune, from int) (at int, ok bool)
}

// Option configures a Matcher at Compile time.
type Option func(*Matcher)

// WithFilter attaches a Filter that Search consults instead of trying
// every offset; once the Filter reports no further candidate, Search
// reports no match.
func WithFilter(f Filter) Option {
	return func(m *Matcher) { m.filter = f }
}

// Matcher owns a Backend-compiled Program and the bookkeeping needed
// to run it safely: the declared capture-group count and look-around
// nesting depth, both validated against Config up front so a Backend
// never has to discover an oversized pattern mid-compile.
type Matcher struct {
	prog     Program
	groups   int
	maxDepth int
	flags    parse.Flags
	filter   Filter

	closed bool
}

// Compile builds a Matcher by handing instrs to backend. cfg bounds
// are checked before backend ever sees the tree.
func Compile(backend Backend, cfg Config, instrs []parse.Instruction, groups, maxDepth int, flags parse.Flags, opts ...Option) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if groups > cfg.MaxGroups {
		return nil, &ConfigError{Field: "MaxGroups", Message: "pattern declares more capturing groups than permitted"}
	}
	if maxDepth > cfg.MaxDepth {
		return nil, &ConfigError{Field: "MaxDepth", Message: "pattern nests deeper than permitted"}
	}
	if len(instrs) > cfg.MaxInstrs {
		return nil, &ConfigError{Field: "MaxInstrs", Message: "pattern compiles to more instructions than permitted"}
	}

	prog, err := backend.Compile(instrs, groups, maxDepth, flags)
	if err != nil {
		return nil, &CompileError{Err: err}
	}

	m := &Matcher{prog: prog, groups: groups, maxDepth: maxDepth, flags: flags}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Groups returns the number of capturing groups the compiled pattern
// declared, not counting the implicit whole-match group.
func (m *Matcher) Groups() int { return m.groups }

// Match reports the end offset of a match anchored at input[0], or -1
// if the pattern does not match there. When groups is non-nil it
// receives 2*(m.Groups()+1) offsets: group 0 is the whole match,
// followed by one (start, end) pair per capturing group, -1 where a
// group did not participate.
func (m *Matcher) Match(input []rune, groups []int) int {
	return m.prog.Run(input, groups)
}

// Search reports the end offset of the leftmost match starting at or
// after position 0, and whether one was found. start receives the
// offset the match began at.
func (m *Matcher) Search(input []rune, groups []int) (start, end int, matched bool) {
	from := 0
	for from <= len(input) {
		at := from
		if m.filter != nil {
			var ok bool
			at, ok = m.filter.Next(input, from)
			if !ok {
				return 0, 0, false
			}
		}
		if e := m.prog.Run(input[at:], groups); e >= 0 {
			if groups != nil {
				offsetGroups(groups, at)
			}
			return at, at + e, true
		}
		from = at + 1
	}
	return 0, 0, false
}

func offsetGroups(groups []int, by int) {
	for i, g := range groups {
		if g >= 0 {
			groups[i] = g + by
		}
	}
}

// Close releases the underlying Program's resources. Safe to call
// exactly once; calling it again is a no-op.
func (m *Matcher) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.prog.Close()
}
