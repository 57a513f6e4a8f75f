package parser

import "strings"

// Scope tracks the last defined global label to expand local labels that
// start with a dot.
type Scope struct {
	global string
}

// Global returns the last defined global label.
func (s *Scope) Global() string {
	if s == nil {
		return ""
	}
	return s.global
}

// Qualify expands a local label name to "<global>.<name>".
func (s *Scope) Qualify(name string) string {
	if s == nil || len(name) < 2 || name[0] != '.' {
		return name
	}
	return s.global + name
}

// Define returns the qualified name of a label definition. Non-local labels
// become the new global scope.
func (s *Scope) Define(name string) string {
	if s == nil {
		return name
	}
	if strings.HasPrefix(name, ".") {
		return s.Qualify(name)
	}
	s.global = name
	return name
}
