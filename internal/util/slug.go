// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util holds small helpers shared by the site packages: slugs for
// tag routes, CMS asset URL fixes and outbound HTTP safety.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify lowercases s, strips accents and collapses every run of other
// characters into a single hyphen. "Über München" becomes "uber-munchen".
func Slugify(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(strings.ToLower(folded), "'", "")
	return strings.Trim(slugUnsafe.ReplaceAllString(folded, "-"), "-")
}

// IsValidSlug reports whether s is a non-empty slug made of lowercase
// alphanumeric words joined by single hyphens.
func IsValidSlug(s string) bool {
	return validSlug.MatchString(s)
}
