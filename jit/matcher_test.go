package jit

import (
	"errors"
	"testing"

	"github.com/kirbyfan64/rejit-go/parse"
)

// fakeProgram reports a match of a fixed length whenever the input is
// at least that long, recording the input it last saw.
type fakeProgram struct {
	matchLen int
	closed   bool
	lastRun  []rune
}

func (p *fakeProgram) Run(input []rune, groups []int) int {
	p.lastRun = input
	if len(input) < p.matchLen {
		return -1
	}
	if len(groups) > 1 {
		groups[1] = p.matchLen
	}
	return p.matchLen
}

func (p *fakeProgram) Close() error {
	p.closed = true
	return nil
}

type fakeBackend struct {
	prog *fakeProgram
	err  error
}

func (b *fakeBackend) Compile(instrs []parse.Instruction, groups, maxDepth int, flags parse.Flags) (Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.prog, nil
}

func TestMatcherMatch(t *testing.T) {
	backend := &fakeBackend{prog: &fakeProgram{matchLen: 3}}
	m, err := Compile(backend, DefaultConfig(), nil, 0, 0, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if got := m.Match([]rune("abcdef"), nil); got != 3 {
		t.Errorf("Match = %d, want 3", got)
	}
	if got := m.Match([]rune("ab"), nil); got != -1 {
		t.Errorf("Match = %d, want -1", got)
	}
}

func TestMatcherSearchNoFilter(t *testing.T) {
	backend := &fakeBackend{prog: &fakeProgram{matchLen: 2}}
	m, err := Compile(backend, DefaultConfig(), nil, 0, 0, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	start, end, ok := m.Search([]rune("xxab"), nil)
	if !ok {
		t.Fatal("Search: want match")
	}
	if start != 0 || end != 2 {
		t.Errorf("Search = (%d,%d), want (0,2) — the fake matches at every offset, so the first one wins", start, end)
	}
}

func TestMatcherSearchWithFilter(t *testing.T) {
	backend := &fakeBackend{prog: &fakeProgram{matchLen: 2}}
	filter := staticFilter{candidates: []int{2}}
	m, err := Compile(backend, DefaultConfig(), nil, 0, 0, 0, WithFilter(filter))
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	start, end, ok := m.Search([]rune("xxab"), nil)
	if !ok || start != 2 || end != 4 {
		t.Errorf("Search = (%d,%d,%v), want (2,4,true)", start, end, ok)
	}
}

type staticFilter struct {
	candidates []int
}

func (f staticFilter) Next(input []rune, from int) (int, bool) {
	for _, c := range f.candidates {
		if c >= from {
			return c, true
		}
	}
	return 0, false
}

func TestMatcherSearchNoMatch(t *testing.T) {
	backend := &fakeBackend{prog: &fakeProgram{matchLen: 100}}
	m, err := Compile(backend, DefaultConfig(), nil, 0, 0, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if _, _, ok := m.Search([]rune("short"), nil); ok {
		t.Error("Search: want no match")
	}
}

func TestMatcherClose(t *testing.T) {
	prog := &fakeProgram{matchLen: 1}
	m, err := Compile(&fakeBackend{prog: prog}, DefaultConfig(), nil, 0, 0, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !prog.closed {
		t.Error("Close did not reach the underlying Program")
	}
	// Idempotent.
	if err := m.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}

func TestCompileWrapsBackendError(t *testing.T) {
	backendErr := errors.New("boom")
	_, err := Compile(&fakeBackend{err: backendErr}, DefaultConfig(), nil, 0, 0, 0)
	if err == nil {
		t.Fatal("Compile: want error")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile error = %v (%T), want *CompileError", err, err)
	}
	if !errors.Is(ce.Err, backendErr) {
		t.Errorf("CompileError.Err = %v, want %v", ce.Err, backendErr)
	}
}

func TestCompileRejectsOversizedPattern(t *testing.T) {
	backend := &fakeBackend{prog: &fakeProgram{matchLen: 0}}
	cfg := Config{MaxGroups: 1, MaxDepth: 1, MaxInstrs: 1}
	_, err := Compile(backend, cfg, nil, 5, 0, 0)
	if err == nil {
		t.Fatal("Compile: want error for too many groups")
	}
}
