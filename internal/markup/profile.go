// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package markup

import "strings"

// Profile selects the wrapper classes used by the renderer. Dispatch is the
// same for every profile.
type Profile int

const (
	// ProfileFull is used for page and post bodies.
	ProfileFull Profile = iota
	// ProfileCompact is used for listing excerpts.
	ProfileCompact
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileCompact:
		return "compact"
	default:
		return "full"
	}
}

// classSet holds the presentational classes of one profile.
type classSet struct {
	paragraph   string
	headings    [4]string
	hr          string
	ordered     string
	unordered   string
	quoteOuter  string
	quoteInner  string
	link        string
	figure      string
	figcaption  string
	linkCaption string
	card        string
	inline      string
	inlineCap   string
}

var profiles = map[Profile]classSet{
	ProfileFull: {
		paragraph: "leading-relaxed pb-6",
		headings: [4]string{
			"text-3xl leading-snug mb-5 lg:text-5xl",
			"text-2xl leading-snug mb-5 lg:text-3xl",
			"text-xl leading-snug mb-2 lg:text-2xl",
			"text-md leading-snug mb-2 lg:text-xl",
		},
		hr:          "border-gray-300 w-24 mx-auto pb-6",
		ordered:     "ml-4 list-decimal",
		unordered:   "ml-4 list-disc",
		quoteOuter:  "border-gray-100 border-l-6 py-6 px-4 mb-6 ml-10 mr-4",
		quoteInner:  "text-base text-black italic -mb-6 lg:text-lg",
		link:        "text-primary-dark font-extralight",
		figure:      "text-center mb-8 lg:px-24",
		figcaption:  "mt-1",
		linkCaption: "pb-4",
		card:        "bg-white border border-gray-300 my-6 mx-auto max-w-sm",
		inline:      "inline-block align-middle mx-1",
		inlineCap:   "inline-block mx-1 align-middle",
	},
	ProfileCompact: {
		paragraph: "leading-normal pb-2",
		headings: [4]string{
			"text-xl leading-snug mb-2",
			"text-lg leading-snug mb-2",
			"text-base font-bold leading-snug mb-1",
			"text-sm font-bold leading-snug mb-1",
		},
		hr:          "border-gray-300 w-12 mx-auto pb-2",
		ordered:     "ml-4 list-decimal",
		unordered:   "ml-4 list-disc",
		quoteOuter:  "border-gray-100 border-l-4 py-2 px-3 mb-2 ml-4",
		quoteInner:  "text-sm text-black italic",
		link:        "text-primary-dark font-extralight",
		figure:      "text-center mb-4",
		figcaption:  "mt-1 text-xs",
		linkCaption: "pb-2 text-xs",
		card:        "bg-white border border-gray-300 my-2 max-w-xs",
		inline:      "inline-block align-middle mx-1",
		inlineCap:   "inline-block mx-1 align-middle",
	},
}

func (p Profile) classes() classSet {
	if c, ok := profiles[p]; ok {
		return c
	}
	return profiles[ProfileFull]
}

// joinClasses joins non-empty class lists with single spaces.
func joinClasses(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
