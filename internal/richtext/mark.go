// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package richtext

import "strings"

// Mark is an inline styling annotation on a Text leaf.
type Mark uint8

// Supported marks. The declaration order is the nesting order used by the
// renderer, innermost first.
const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkUnderline
	MarkCode
)

// MarkOrder lists every mark in nesting order, innermost first.
var MarkOrder = []Mark{MarkBold, MarkItalic, MarkUnderline, MarkCode}

var markNames = map[Mark]string{
	MarkBold:      "bold",
	MarkItalic:    "italic",
	MarkUnderline: "underline",
	MarkCode:      "code",
}

// String returns the wire name of the mark.
func (m Mark) String() string {
	return markNames[m]
}

// ParseMark maps a wire mark type to a Mark.
func ParseMark(s string) (Mark, bool) {
	for m, name := range markNames {
		if name == s {
			return m, true
		}
	}
	return 0, false
}

// MarkSet is the set of marks present on a text run.
type MarkSet uint8

// NewMarkSet builds a set from marks.
func NewMarkSet(marks ...Mark) MarkSet {
	var s MarkSet
	for _, m := range marks {
		s = s.With(m)
	}
	return s
}

// Has reports whether m is in the set.
func (s MarkSet) Has(m Mark) bool {
	return s&MarkSet(m) != 0
}

// With returns the set with m added.
func (s MarkSet) With(m Mark) MarkSet {
	return s | MarkSet(m)
}

// Marks returns the marks in nesting order.
func (s MarkSet) Marks() []Mark {
	var out []Mark
	for _, m := range MarkOrder {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// String lists the mark names, e.g. "bold+code".
func (s MarkSet) String() string {
	names := make([]string, 0, len(MarkOrder))
	for _, m := range s.Marks() {
		names = append(names, m.String())
	}
	return strings.Join(names, "+")
}
