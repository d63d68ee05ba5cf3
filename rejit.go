// Package rejit compiles and runs regular expressions by driving the
// pipeline in packages parse and jit end to end: tokenize, analyze,
// lower to an instruction tree, then hand that tree to a jit.Backend
// (refvm by default) and run matches through the resulting Matcher.
//
// Positions reported by this package — match boundaries, capture
// group boundaries — are rune offsets, not byte offsets: the pipeline
// underneath addresses patterns and input as []rune throughout, and
// converting back to byte offsets for an API surface that no longer
// matches would just reintroduce the bugs rune addressing was meant
// to avoid.
//
// Basic usage:
//
//	re, err := rejit.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer re.Close()
//
//	if re.MatchString("room 204") {
//	    fmt.Println(re.FindString("room 204")) // "204"
//	}
package rejit

import (
	"github.com/kirbyfan64/rejit-go/internal/runeio"
	"github.com/kirbyfan64/rejit-go/jit"
	"github.com/kirbyfan64/rejit-go/jit/refvm"
	"github.com/kirbyfan64/rejit-go/parse"
	"github.com/kirbyfan64/rejit-go/prefilter"
)

// Flags controls inline case-sensitivity and dot-matches-newline
// behavior; it is parse.Flags under another name so callers never
// need to import package parse just to pass ICase to Compile.
type Flags = parse.Flags

const (
	// DotAll makes '.' also match '\n'.
	DotAll = parse.DotAll
	// ICase makes literal and class matching case-insensitive.
	ICase = parse.ICase
)

// Regex is a compiled pattern ready to match runs of runes against.
//
// A Regex holds a jit.Program and must be released with Close once
// the caller is done with it; forgetting to do so leaks whatever
// resources the underlying Backend claimed at Compile time (refvm
// claims an anonymous memory mapping per compiled pattern).
type Regex struct {
	pattern string
	groups  int
	matcher *jit.Matcher
}

// Compile parses and compiles pattern using the default Backend
// (refvm) and resource limits (jit.DefaultConfig).
//
// Example:
//
//	re, err := rejit.Compile(`(?i)hello`)
func Compile(pattern string) (*Regex, error) {
	return CompileFlags(pattern, 0)
}

// CompileFlags is Compile with an initial Flags value, to which any
// (?i) / (?s) cluster the pattern itself contains adds its flags.
func CompileFlags(pattern string, flags Flags) (*Regex, error) {
	return compile(pattern, flags, refvm.New(), jit.DefaultConfig())
}

// CompileWith compiles pattern against a caller-supplied Backend and
// Config, for callers that want a real code-generating Backend
// instead of refvm's reference interpreter.
func CompileWith(pattern string, flags Flags, backend jit.Backend, cfg jit.Config) (*Regex, error) {
	return compile(pattern, flags, backend, cfg)
}

func compile(pattern string, flags Flags, backend jit.Backend, cfg jit.Config) (*Regex, error) {
	result, perr := parse.Parse(pattern, flags)
	if perr != nil {
		return nil, perr
	}

	// The prefilter matches literals byte-exactly, so it is only
	// attached when matching is case-sensitive.
	var opts []jit.Option
	if lits, ok := prefilter.ExtractLiterals(result.Instrs); ok && result.Flags&parse.ICase == 0 {
		if auto, err := prefilter.Build(lits); err == nil {
			opts = append(opts, jit.WithFilter(auto))
		}
	}

	matcher, err := jit.Compile(backend, cfg, result.Instrs, result.Groups, result.MaxDepth, result.Flags, opts...)
	if err != nil {
		return nil, err
	}

	return &Regex{pattern: pattern, groups: result.Groups, matcher: matcher}, nil
}

// MustCompile is Compile but panics instead of returning an error,
// for patterns known to be valid ahead of time.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("rejit: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// String returns the pattern the Regex was compiled from.
func (re *Regex) String() string { return re.pattern }

// Groups returns the number of capturing groups the pattern declared.
func (re *Regex) Groups() int { return re.matcher.Groups() }

// Match reports whether input contains a match anywhere in it.
func (re *Regex) Match(input []rune) bool {
	_, _, ok := re.matcher.Search(input, nil)
	return ok
}

// MatchString is Match over a decoded copy of s.
func (re *Regex) MatchString(s string) bool {
	return re.Match(runeio.Decode(s))
}

// Find returns the leftmost match in input, or nil if there is none.
func (re *Regex) Find(input []rune) []rune {
	start, end, ok := re.matcher.Search(input, nil)
	if !ok {
		return nil
	}
	return input[start:end]
}

// FindString is Find over a decoded copy of s.
func (re *Regex) FindString(s string) string {
	m := re.Find(runeio.Decode(s))
	if m == nil {
		return ""
	}
	return string(m)
}

// FindIndex returns the [start, end) rune offsets of the leftmost
// match in input, or nil if there is none.
func (re *Regex) FindIndex(input []rune) []int {
	start, end, ok := re.matcher.Search(input, nil)
	if !ok {
		return nil
	}
	return []int{start, end}
}

// FindStringIndex is FindIndex over a decoded copy of s.
func (re *Regex) FindStringIndex(s string) []int {
	return re.FindIndex(runeio.Decode(s))
}

// FindSubmatchIndex returns rune offset pairs for the whole match and
// every capturing group: result[0], result[1] are the whole match's
// [start, end), result[2*(i+1)], result[2*(i+1)+1] are zero-based
// capturing group i's, -1 where a group did not participate. Returns
// nil if there is no match.
func (re *Regex) FindSubmatchIndex(input []rune) []int {
	groups := make([]int, 2*(re.groups+1))
	start, end, ok := re.matcher.Search(input, groups)
	if !ok {
		return nil
	}
	groups[0], groups[1] = start, end
	return groups
}

// FindStringSubmatchIndex is FindSubmatchIndex over a decoded copy of s.
func (re *Regex) FindStringSubmatchIndex(s string) []int {
	return re.FindSubmatchIndex(runeio.Decode(s))
}

// Close releases the resources the compiled pattern's Backend
// claimed. Safe to call exactly once; calling it again is a no-op.
func (re *Regex) Close() error {
	return re.matcher.Close()
}
