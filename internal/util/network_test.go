// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		private bool
	}{
		{"loopback", "127.0.0.1", true},
		{"10.x.x.x", "10.255.255.255", true},
		{"172.16.x.x", "172.16.0.1", true},
		{"172.31.x.x", "172.31.255.255", true},
		{"192.168.x.x", "192.168.1.1", true},
		{"metadata", "169.254.169.254", true},
		{"CGNAT", "100.64.0.1", true},
		{"multicast", "224.0.0.1", true},
		{"public cloudflare", "1.1.1.1", false},
		{"public google", "8.8.8.8", false},
		{"172.32.x.x public", "172.32.0.1", false},
		{"ipv6 loopback", "::1", true},
		{"ipv6 unique-local", "fd00::1", true},
		{"ipv6 public", "2606:4700:4700::1111", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP %q", tt.ip)
			}
			if got := IsPrivateIP(ip); got != tt.private {
				t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
			}
		})
	}
	if !IsPrivateIP(nil) {
		t.Error("IsPrivateIP(nil) should return true")
	}
}

func TestCheckPublicURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
		errMsg  string
	}{
		{name: "https", url: "https://www.youtube.com/watch?v=abc"},
		{name: "http with port", url: "http://example.com:8080/post"},
		{name: "public ip", url: "https://1.1.1.1/"},
		{name: "ftp", url: "ftp://example.com/file", wantErr: ErrURLScheme},
		{name: "javascript", url: "javascript:alert(1)", wantErr: ErrURLScheme},
		{name: "protocol relative", url: "//example.com/a", wantErr: ErrURLScheme},
		{name: "no host", url: "http:///path", wantErr: ErrURLHost},
		{name: "localhost", url: "http://localhost:3000/", wantErr: ErrURLLocalhost},
		{name: "localhost subdomain", url: "http://evil.LOCALHOST/", wantErr: ErrURLLocalhost},
		{name: "loopback", url: "http://127.0.0.1/", wantErr: ErrURLPrivateIP},
		{name: "metadata", url: "http://169.254.169.254/latest/meta-data/", wantErr: ErrURLPrivateIP},
		{name: "ipv6 loopback", url: "http://[::1]/", wantErr: ErrURLPrivateIP},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", MaxOutboundURLLength), errMsg: "maximum length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := CheckPublicURL(tt.url)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CheckPublicURL(%q) error = %v, want %v", tt.url, err, tt.wantErr)
				}
			case tt.errMsg != "":
				if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("CheckPublicURL(%q) error = %v, want containing %q", tt.url, err, tt.errMsg)
				}
			default:
				if err != nil {
					t.Fatalf("CheckPublicURL(%q) = %v, want nil", tt.url, err)
				}
				if u.String() != tt.url {
					t.Errorf("parsed URL = %q, want %q", u.String(), tt.url)
				}
			}
		})
	}
}

func TestSSRFSafeDialContext(t *testing.T) {
	dial := SSRFSafeDialContext(&net.Dialer{})

	for _, addr := range []string{"127.0.0.1:80", "10.0.0.1:80", "[::1]:443"} {
		t.Run(addr, func(t *testing.T) {
			_, err := dial(t.Context(), "tcp", addr)
			if err == nil || !strings.Contains(err.Error(), "private IP") {
				t.Errorf("dial %s error = %v, want private IP refusal", addr, err)
			}
		})
	}

	if _, err := dial(t.Context(), "tcp", "no-port"); err == nil {
		t.Error("expected error for address without port")
	}
}

func TestNewSafeHTTPClientRefusesPrivateRedirects(t *testing.T) {
	client := NewSafeHTTPClient(2 * time.Second)
	if client.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", client.Timeout)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://169.254.169.254/", nil)
	if err := client.CheckRedirect(req, []*http.Request{{}}); err == nil {
		t.Error("redirect to metadata address should be refused")
	}

	req, _ = http.NewRequest(http.MethodGet, "https://example.com/next", nil)
	if err := client.CheckRedirect(req, []*http.Request{{}}); err != nil {
		t.Errorf("public redirect refused: %v", err)
	}
	if err := client.CheckRedirect(req, make([]*http.Request, 5)); err == nil {
		t.Error("sixth redirect should be refused")
	}
}
