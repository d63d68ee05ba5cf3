package prefilter

import (
	"fmt"

	"github.com/coregx/ahocorasick"

	"github.com/kirbyfan64/rejit-go/internal/conv"
)

// Automaton accelerates Search for a pattern whose only literal work
// is matching one of a fixed set of alternatives: it runs a single
// Aho-Corasick pass over the input instead of re-trying a full
// Backend.Program.Run at every candidate start offset. It implements
// jit.Filter.
type Automaton struct {
	auto *ahocorasick.Automaton
	lits [][]rune
}

// Build compiles lits — as produced by ExtractLiterals — into an
// Automaton. It returns an error if lits is empty or the underlying
// automaton fails to build.
func Build(lits [][]rune) (*Automaton, error) {
	if len(lits) == 0 {
		return nil, fmt.Errorf("prefilter: no literals to build an automaton from")
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		b := []byte(string(lit))
		// Guard against a literal too large to address by byte
		// offset in the automaton's own result type, the same
		// narrowing discipline applied to every other
		// attacker-controlled size in this pipeline.
		_ = conv.IntToUint32(len(b))
		builder.AddPattern(b)
	}

	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("prefilter: build automaton: %w", err)
	}
	return &Automaton{auto: auto, lits: lits}, nil
}

// Next implements jit.Filter. from and the returned offset are rune
// offsets into input; the automaton itself operates on input's UTF-8
// encoding, so Next translates both ways across the call.
func (a *Automaton) Next(input []rune, from int) (int, bool) {
	if from < 0 || from > len(input) {
		return 0, false
	}
	haystack := []byte(string(input))
	byteFrom := runeToByteOffset(input, from)

	m := a.auto.Find(haystack, byteFrom)
	if m == nil {
		return 0, false
	}
	return byteToRuneOffset(input, m.Start), true
}

// IsMatch reports whether any of the automaton's literals occur
// anywhere in input.
func (a *Automaton) IsMatch(input []rune) bool {
	return a.auto.IsMatch([]byte(string(input)))
}

func runeToByteOffset(input []rune, runeOff int) int {
	b := 0
	for i := 0; i < runeOff && i < len(input); i++ {
		b += len(string(input[i]))
	}
	return b
}

func byteToRuneOffset(input []rune, byteOff int) int {
	b := 0
	for i, r := range input {
		if b >= byteOff {
			return i
		}
		b += len(string(r))
	}
	return len(input)
}
