// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxOutboundURLLength caps URLs the site will fetch on a visitor's behalf.
const MaxOutboundURLLength = 2048

// Errors returned by CheckPublicURL.
var (
	ErrURLScheme    = errors.New("URL must use http or https scheme")
	ErrURLHost      = errors.New("URL must have a hostname")
	ErrURLLocalhost = errors.New("localhost URLs are not allowed")
	ErrURLPrivateIP = errors.New("private or reserved IP addresses are not allowed")
)

var privateIPBlocks = mustParseCIDRs(
	"10.0.0.0/8",      // RFC 1918
	"172.16.0.0/12",   // RFC 1918
	"192.168.0.0/16",  // RFC 1918
	"127.0.0.0/8",     // loopback
	"169.254.0.0/16",  // link-local, cloud metadata
	"0.0.0.0/8",       // "this" network
	"100.64.0.0/10",   // CGNAT
	"192.0.0.0/24",    // IETF protocol assignments
	"192.0.2.0/24",    // documentation
	"198.18.0.0/15",   // benchmarking
	"198.51.100.0/24", // documentation
	"203.0.113.0/24",  // documentation
	"224.0.0.0/4",     // multicast
	"240.0.0.0/4",     // reserved
	"::1/128",
	"::/128",
	"fe80::/10",
	"fc00::/7",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// IsPrivateIP reports whether ip is private or reserved. A nil IP counts as
// private.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// CheckPublicURL rejects URLs that cannot point at a public web page:
// non-http schemes, missing hosts, localhost names and literal private IPs.
// Hostnames are not resolved here; SSRFSafeDialContext checks the resolved
// addresses at connect time.
func CheckPublicURL(rawURL string) (*url.URL, error) {
	if len(rawURL) > MaxOutboundURLLength {
		return nil, fmt.Errorf("URL exceeds maximum length of %d characters", MaxOutboundURLLength)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrURLScheme
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, ErrURLHost
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return nil, ErrURLLocalhost
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return nil, ErrURLPrivateIP
	}
	return u, nil
}

// SSRFSafeDialContext returns a DialContext that resolves the host itself,
// refuses private addresses and then dials the vetted IP, so a DNS answer
// cannot change between the check and the connection.
func SSRFSafeDialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", addr, err)
		}

		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
		}
		for _, ip := range ips {
			if IsPrivateIP(ip.IP) {
				return nil, fmt.Errorf("connection to private IP %s (resolved from %q) is blocked", ip.IP, host)
			}
		}

		for _, ip := range ips {
			conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip.IP.String(), port))
			if dialErr == nil {
				return conn, nil
			}
			err = dialErr
		}
		if err == nil {
			err = fmt.Errorf("no addresses for %q", host)
		}
		return nil, fmt.Errorf("failed to connect to %q: %w", host, err)
	}
}

// NewSafeHTTPClient returns an http.Client for fetching visitor-influenced
// URLs. Redirects are followed at most five times and every hop goes
// through the SSRF-safe dialer.
func NewSafeHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           SSRFSafeDialContext(dialer),
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("stopped after 5 redirects")
			}
			if _, err := CheckPublicURL(req.URL.String()); err != nil {
				return fmt.Errorf("redirect to %s refused: %w", req.URL.Redacted(), err)
			}
			return nil
		},
	}
}
