// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-site/internal/middleware"
	"github.com/olegiv/ocms-site/internal/service"
)

func TestAPIListPosts(t *testing.T) {
	c := newStubContent()
	router := newTestRouter(t, c)

	rec := doRequest(t, router, "/api/posts?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, 5, c.lastLimit)

	var list service.PostList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, "hello", list.Entries[0].Slug)
}

func TestAPIListPostsByTag(t *testing.T) {
	c := newStubContent()
	router := newTestRouter(t, c)

	rec := doRequest(t, router, "/api/posts?tag=Zero+Knowledge")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Zero Knowledge", c.lastTag)
	assert.Equal(t, service.DefaultQuantity, c.lastLimit)

	var list service.PostList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list.Entries, 1)
}

func TestAPIListPostsInvalidLimit(t *testing.T) {
	router := newTestRouter(t, newStubContent())

	for _, limit := range []string{"abc", "0", "-1", "1001"} {
		t.Run(limit, func(t *testing.T) {
			rec := doRequest(t, router, "/api/posts?limit="+limit)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var apiErr middleware.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, "invalid_limit", apiErr.Error.Code)
		})
	}
}

func TestAPIGetPost(t *testing.T) {
	router := newTestRouter(t, newStubContent())

	rec := doRequest(t, router, "/api/posts/hello")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Equal(t, "Hello", raw["title"])
	// Optional fields are present as null.
	v, ok := raw["featureImage"]
	assert.True(t, ok)
	assert.Nil(t, v)

	rec = doRequest(t, router, "/api/posts/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIInternalError(t *testing.T) {
	c := newStubContent()
	c.err = errors.New("cms down")
	router := newTestRouter(t, c)

	rec := doRequest(t, router, "/api/posts")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "cms down")
}

func TestAPIPostMarkdown(t *testing.T) {
	router := newTestRouter(t, newStubContent())

	rec := doRequest(t, router, "/api/posts/hello/markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "# Hello\n\n_The first post_\n\n"), body)
	assert.Contains(t, body, "Hello body")

	// A post without a body still exports its title.
	rec = doRequest(t, router, "/api/posts/second/markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# Second\n\n", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, doRequest(t, router, "/api/posts/missing/markdown").Code)
}
