// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-site/internal/middleware"
	"github.com/olegiv/ocms-site/internal/webhook"
)

// maxWebhookBody caps the notification payload size.
const maxWebhookBody = 1 << 20

// EventQueue accepts verified CMS events. *webhook.Debouncer implements it.
type EventQueue interface {
	Add(ev webhook.Event)
}

// WebhookHandler receives CMS publish notifications.
type WebhookHandler struct {
	secret string
	queue  EventQueue
	logger *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(secret string, queue EventQueue, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{secret: secret, queue: queue, logger: logger}
}

// Register mounts the webhook route.
func (h *WebhookHandler) Register(r chi.Router) {
	r.Post(RouteAPIRevalidate, h.Revalidate)
}

// Revalidate handles POST /api/revalidate.
func (h *WebhookHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		middleware.WriteAPIError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Payload too large")
		return
	}

	if !webhook.VerifySignature(body, r.Header.Get(webhook.HeaderSignature), h.secret) {
		h.logger.WarnContext(r.Context(), "rejected webhook with invalid signature",
			"remote_addr", r.RemoteAddr)
		middleware.WriteAPIError(w, http.StatusUnauthorized, "invalid_signature", "Invalid signature")
		return
	}

	ev, err := webhook.ParseEvent(r.Header.Get(webhook.HeaderTopic), body)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected webhook payload", "error", err)
		middleware.WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid payload")
		return
	}

	h.queue.Add(ev)
	h.logger.InfoContext(r.Context(), "webhook accepted",
		"topic", ev.Topic,
		"entry_id", ev.EntryID,
		"content_type", ev.ContentType)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

