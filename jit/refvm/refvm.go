// Package refvm is a reference Backend for package jit. It does not
// emit native code: it interprets the instruction tree directly in Go.
// What it does do for real is the resource lifecycle a native-code
// Backend would also need — claiming and releasing an anonymous memory
// mapping per compiled Program — so that package jit's Compile/Close
// contract is exercised against real OS primitives rather than a stub.
package refvm

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/kirbyfan64/rejit-go/internal/conv"
	"github.com/kirbyfan64/rejit-go/jit"
	"github.com/kirbyfan64/rejit-go/parse"
)

// bytesPerInstr is the nominal size, in the mapped region, attributed
// to each compiled instruction. A real code-generating backend would
// size its mapping by actual emitted code length; refvm has no code to
// emit, so it reserves a page-rounded region proportional to program
// size purely to give Program a mapping worth owning and releasing.
const bytesPerInstr = 16

// Backend compiles an instruction tree into a Program that interprets
// it directly. The zero value is ready to use.
type Backend struct{}

// New returns a ready-to-use Backend.
func New() *Backend { return &Backend{} }

// Compile implements jit.Backend.
func (Backend) Compile(instrs []parse.Instruction, groups, maxDepth int, flags parse.Flags) (jit.Program, error) {
	size := pageRound(len(instrs)*bytesPerInstr + 1)
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("refvm: mmap %d bytes: %w", size, err)
	}

	// Stamp the region with the instruction count so a debugger
	// inspecting the mapping can tell which pattern it belongs to,
	// then drop write access — a real backend would do the same once
	// its emitted code is final, right before making it executable.
	binaryPutUint32(region, conv.IntToUint32(len(instrs)))
	if err := unix.Mprotect(region, unix.PROT_READ); err != nil {
		_ = unix.Munmap(region)
		return nil, fmt.Errorf("refvm: mprotect: %w", err)
	}

	lbLen, err := lookbehindLengths(instrs)
	if err != nil {
		_ = unix.Munmap(region)
		return nil, err
	}

	return &Program{
		instrs:   instrs,
		groups:   groups,
		maxDepth: maxDepth,
		flags:    flags,
		region:   region,
		lbLen:    lbLen,
	}, nil
}

func pageRound(n int) int {
	const page = 4096
	if n <= 0 {
		n = 1
	}
	return (n + page - 1) / page * page
}

func binaryPutUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// lookbehindLengths precomputes the fixed rune width of every
// look-behind's body. Parsing already guarantees each one is
// fixed-length (see parse.Error's ELBVar); this just sums it once
// instead of re-walking the body on every evaluation.
func lookbehindLengths(instrs []parse.Instruction) (map[int]int, error) {
	out := make(map[int]int)
	for i := range instrs {
		switch instrs[i].Kind {
		case parse.ILBehind, parse.INLBehind:
			n := 0
			for c := i + 1; c < instrs[i].Value; {
				l := parse.MatchLen(instrs, c)
				if l == parse.VarLen {
					return nil, fmt.Errorf("refvm: look-behind at instruction %d has variable-length body", i)
				}
				n += l
				c = nextSibling(instrs, c)
			}
			out[i] = n
		}
	}
	return out, nil
}
