package jit

import "github.com/kirbyfan64/rejit-go/parse"

// Backend turns a parsed instruction tree into a runnable Program.
// How it does so — tree-walking interpretation, bytecode compilation,
// or emitting and mapping executable native code — is entirely up to
// the implementation; this package only depends on the Program
// contract that comes back out.
//
// A Backend must not mutate instrs. The returned Program may keep
// referring to them (jit/refvm's does); Matcher.Close only closes the
// Program and does not touch the Result the tree came from.
type Backend interface {
	Compile(instrs []parse.Instruction, groups, maxDepth int, flags parse.Flags) (Program, error)
}

// Program is a compiled artifact ready to run matches. Run reports the
// end offset of a match anchored at position 0 of input (for a
// backtracking Program such as jit/refvm's, the first one its search
// finds, not necessarily the longest), or -1 if there is no match;
// groups, when non-nil, should be
// sized 2*(n+1) for the n capturing groups the pattern declared and
// receives (start, end) rune offset pairs, slot 0 for the whole match
// and slot i+1 for capturing group i, -1 where a group did not
// participate. Close releases whatever resources Compile claimed — a
// memory mapping, a scratch buffer, a handle into a JIT code cache —
// and must be safe to call exactly once per Program.
type Program interface {
	Run(input []rune, groups []int) int
	Close() error
}
