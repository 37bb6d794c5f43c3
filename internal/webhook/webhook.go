// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook verifies CMS publish notifications and coalesces them into
// cache revalidation runs.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Headers sent with every CMS notification.
const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderTopic     = "X-Contentful-Topic"
)

// ErrInvalidPayload is returned when a notification body cannot be decoded.
var ErrInvalidPayload = errors.New("webhook: invalid payload")

// Event is a single CMS notification.
type Event struct {
	// Topic is the CMS topic, e.g. "ContentManagement.Entry.publish".
	Topic       string    `json:"topic"`
	EntryID     string    `json:"entry_id"`
	ContentType string    `json:"content_type,omitempty"`
	Received    time.Time `json:"received"`
}

// Action returns the last topic segment ("publish", "unpublish", ...).
func (e Event) Action() string {
	if i := strings.LastIndex(e.Topic, "."); i >= 0 {
		return e.Topic[i+1:]
	}
	return e.Topic
}

// Key identifies the entity the event is about. Repeated events for the same
// entry share a key.
func (e Event) Key() string {
	if e.EntryID == "" {
		return e.Topic
	}
	return e.ContentType + ":" + e.EntryID
}

type notification struct {
	Sys struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		ContentType *struct {
			Sys struct {
				ID string `json:"id"`
			} `json:"sys"`
		} `json:"contentType"`
	} `json:"sys"`
}

// ParseEvent decodes a notification body.
func ParseEvent(topic string, body []byte) (Event, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if n.Sys.ID == "" {
		return Event{}, fmt.Errorf("%w: missing sys.id", ErrInvalidPayload)
	}

	ev := Event{
		Topic:    topic,
		EntryID:  n.Sys.ID,
		Received: time.Now().UTC(),
	}
	if n.Sys.ContentType != nil {
		ev.ContentType = n.Sys.ContentType.Sys.ID
	}
	return ev, nil
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expectedSig))
}
