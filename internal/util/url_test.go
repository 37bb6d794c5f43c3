// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestEnsureHTTPS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"//images.ctfassets.net/abc/photo.png", "https://images.ctfassets.net/abc/photo.png"},
		{"https://images.ctfassets.net/abc/photo.png", "https://images.ctfassets.net/abc/photo.png"},
		{"http://example.com//double", "http://example.com//double"},
		{"/local/path", "/local/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EnsureHTTPS(tt.in); got != tt.want {
			t.Errorf("EnsureHTTPS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://site.example", "/blog/post", "https://site.example/blog/post"},
		{"https://site.example/", "blog/post", "https://site.example/blog/post"},
		{"https://site.example", "https://cdn.example/x.png", "https://cdn.example/x.png"},
		{"https://site.example", "//cdn.example/x.png", "https://cdn.example/x.png"},
		{"https://site.example", "", ""},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.path); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
