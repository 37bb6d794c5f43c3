// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import "fmt"

// ParseError reports a field value that could not be parsed.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingAssetError is returned when an asset has no file attached.
// Callers that treat the asset as optional check for a file first.
type MissingAssetError struct {
	AssetID string
}

func (e *MissingAssetError) Error() string {
	if e.AssetID == "" {
		return "asset has no file"
	}
	return fmt.Sprintf("asset %s has no file", e.AssetID)
}

// ValidationError reports a raw entry that does not match its schema.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Reason)
}
