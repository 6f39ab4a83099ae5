// Package transcript holds the per-question speech capture state: an
// accumulator for finalized fragments and the mapping of terminal
// recognition error codes to user-facing messages.
package transcript

import "strings"

// Buffer accumulates finalized transcript fragments for the current
// question. A fresh Buffer is swapped in when a new question becomes
// active; the old one is committed and never reused.
type Buffer struct {
	parts   []string
	interim string
}

// NewBuffer returns an empty accumulator.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds one finalized fragment. Empty fragments are dropped.
func (b *Buffer) Append(fragment string) {
	if strings.TrimSpace(fragment) == "" {
		return
	}
	b.parts = append(b.parts, fragment)
	b.interim = ""
}

// SetInterim records an in-flight partial fragment for display. Interim
// text is never persisted into the committed answer.
func (b *Buffer) SetInterim(fragment string) {
	b.interim = fragment
}

// Interim returns the current partial fragment, if any.
func (b *Buffer) Interim() string {
	return b.interim
}

// String joins the finalized fragments with single spaces and trims the
// result. This is the exact text committed into the answer ledger.
func (b *Buffer) String() string {
	return strings.TrimSpace(strings.Join(b.parts, " "))
}

// Empty reports whether no finalized fragment has been captured.
func (b *Buffer) Empty() bool {
	return len(b.parts) == 0
}
