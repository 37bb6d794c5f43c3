// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "strings"

// EnsureHTTPS rewrites a protocol-relative URL ("//host/path"), as served by
// the CMS asset CDN, to an explicit https URL. Other URLs are returned as is.
func EnsureHTTPS(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// AbsoluteURL joins a site-relative path onto base. Absolute URLs pass
// through untouched.
func AbsoluteURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "//") {
		return EnsureHTTPS(path)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
