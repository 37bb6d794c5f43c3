// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-site/internal/testutil"
	"github.com/olegiv/ocms-site/internal/webhook"
)

type recordingQueue struct {
	events []webhook.Event
}

func (q *recordingQueue) Add(ev webhook.Event) { q.events = append(q.events, ev) }

func postWebhook(t *testing.T, h http.Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, RouteAPIRevalidate, strings.NewReader(body))
	req.Header.Set(webhook.HeaderTopic, "ContentManagement.Entry.publish")
	if signature != "" {
		req.Header.Set(webhook.HeaderSignature, signature)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRevalidate(t *testing.T) {
	const secret = "s3cret"
	queue := &recordingQueue{}
	r := chi.NewRouter()
	NewWebhookHandler(secret, queue, testutil.TestLoggerSilent()).Register(r)

	body := `{"sys":{"id":"entry1","contentType":{"sys":{"id":"post"}}}}`

	t.Run("valid", func(t *testing.T) {
		rec := postWebhook(t, r, body, webhook.GenerateSignature([]byte(body), secret))
		assert.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, queue.events, 1)
		assert.Equal(t, "entry1", queue.events[0].EntryID)
		assert.Equal(t, "publish", queue.events[0].Action())
	})

	t.Run("bad signature", func(t *testing.T) {
		rec := postWebhook(t, r, body, webhook.GenerateSignature([]byte(body), "other"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_signature")
	})

	t.Run("missing signature", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, postWebhook(t, r, body, "").Code)
	})

	t.Run("bad payload", func(t *testing.T) {
		bad := `{"sys":{}}`
		rec := postWebhook(t, r, bad, webhook.GenerateSignature([]byte(bad), secret))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_payload")
	})

	assert.Len(t, queue.events, 1)
}
