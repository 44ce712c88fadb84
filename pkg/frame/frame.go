// Package frame turns resolved stack frames into flame graph frame names.
package frame

import (
	"strconv"
	"strings"
)

// Frame is one resolved stack frame as delivered by an event source.
// Function is the only field a frame needs to be nameable.
type Frame struct {
	Module    string `json:"module,omitempty"`
	Function  string `json:"function"`
	Arguments string `json:"arguments,omitempty"`
	Return    string `json:"return,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// Options controls frame name rendering. Options are read at
// construction and never change afterwards.
type Options struct {
	// IgnoreLineNumbers drops the ":<line>" suffix, merging frames that
	// differ only by line.
	IgnoreLineNumbers bool
	// SimpleNames drops the module qualifier.
	SimpleNames bool
	// HideArguments drops the "(...)" signature.
	HideArguments bool
	// ShowReturnValue prefixes the return type. Only honored when
	// arguments are shown.
	ShowReturnValue bool
}

// DefaultOptions returns the default rendering options: qualified names
// with arguments and line numbers, no return types.
func DefaultOptions() Options {
	return Options{}
}

// Namer renders frames into frame names.
type Namer struct {
	opts Options
}

// NewNamer creates a namer with the given options.
func NewNamer(opts Options) *Namer {
	return &Namer{opts: opts}
}

// Name renders the frame's name. ok is false when the frame carries
// nothing to name; such frames are dropped from the call path.
func (n *Namer) Name(f Frame) (name string, ok bool) {
	if f.Function == "" {
		return "", false
	}

	var b strings.Builder
	if n.opts.ShowReturnValue && !n.opts.HideArguments && f.Return != "" {
		b.WriteString(f.Return)
		b.WriteByte(' ')
	}
	if !n.opts.SimpleNames && f.Module != "" {
		b.WriteString(f.Module)
		b.WriteByte('.')
	}
	b.WriteString(f.Function)
	if !n.opts.HideArguments && f.Arguments != "" {
		b.WriteByte('(')
		b.WriteString(f.Arguments)
		b.WriteByte(')')
	}
	if !n.opts.IgnoreLineNumbers && f.Line > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
	}
	return sanitize(b.String()), true
}

// sanitize replaces the folded format's reserved separators so a frame
// name can never split a stack or a line.
func sanitize(s string) string {
	if !strings.ContainsAny(s, ";\n") {
		return s
	}
	s = strings.ReplaceAll(s, ";", ":")
	return strings.ReplaceAll(s, "\n", ":")
}
