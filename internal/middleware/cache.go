// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
)

// StaticCache adds Cache-Control headers for rarely changing responses such
// as sitemap.xml and robots.txt.
func StaticCache(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
			next.ServeHTTP(w, r)
		})
	}
}

// PageCache lets shared caches keep rendered pages for maxAge seconds and
// serve them stale while they revalidate, matching the CMS revalidation
// interval. Handlers that answer with an error status override it.
func PageCache(maxAge int) func(http.Handler) http.Handler {
	value := "public, s-maxage=" + strconv.Itoa(maxAge) +
		", stale-while-revalidate=" + strconv.Itoa(maxAge*10)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
