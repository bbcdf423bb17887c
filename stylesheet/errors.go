package stylesheet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvariant is returned when compilation detects inconsistent
	// internal state. It is fatal for the compile call.
	ErrInvariant = errors.New("stylesheet invariant violated")
	// ErrUnknownRule is returned by declaration operations on a missing rule.
	ErrUnknownRule = errors.New("unknown rule")
)

// UnresolvedMixinError is returned by Compile when a rule references a mixin
// that does not exist. No CSS is produced.
type UnresolvedMixinError struct {
	ID     string
	RuleID string
}

func (e *UnresolvedMixinError) Error() string {
	return fmt.Sprintf("rule %q references unresolved mixin %q", e.RuleID, e.ID)
}

// Code classifies a non-fatal compile diagnostic.
type Code int

const (
	// CodeParseError means a raw value could not be parsed, the declaration
	// was dropped.
	CodeParseError Code = iota
	// CodeValueTooDeep means a value exceeded the nesting limit, the
	// declaration was dropped.
	CodeValueTooDeep
	// CodeUnknownProperty means the property is not recognized, its value
	// was emitted verbatim.
	CodeUnknownProperty
	// CodeInvalidShorthand means a shorthand could not be expanded, the
	// declaration was dropped.
	CodeInvalidShorthand
)

var codeNames = [...]string{"ParseError", "ValueTooDeep", "UnknownProperty", "InvalidShorthand"}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Diagnostic reports a problem with one declaration.
type Diagnostic struct {
	Code     Code
	RuleID   string
	Property string
	Value    string
	Err      error
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: rule %q property %q", d.Code, d.RuleID, d.Property)
	if d.Value != "" {
		fmt.Fprintf(&b, " value %q", d.Value)
	}
	if d.Err != nil {
		b.WriteString(": ")
		b.WriteString(d.Err.Error())
	}
	return b.String()
}
