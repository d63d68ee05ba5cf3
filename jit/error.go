// Package jit defines the narrow contract between a parsed instruction
// tree and whatever external collaborator turns it into something that
// can actually run a match — compiling it, if the collaborator chooses
// to, down to native code. This package owns none of that compilation;
// it owns the lifecycle around it: building a Matcher from a Backend,
// running matches through it, and releasing whatever resources the
// Backend claimed.
package jit

import "fmt"

// CompileError wraps a failure raised by a Backend's Compile method.
type CompileError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("jit: compile failed (backend %s): %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("jit: compile failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *CompileError) Unwrap() error { return e.Err }

// ConfigError represents an invalid Config field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "jit: invalid config: " + e.Field + ": " + e.Message
}
