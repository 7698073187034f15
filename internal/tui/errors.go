package tui

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"strings"

	"github.com/studiowebux/restui/internal/engine"
	"github.com/studiowebux/restui/internal/types"
)

// describeError turns an operation error into a short status bar message
func describeError(err error) string {
	if err == nil {
		return ""
	}

	var cfgErr *types.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Error()
	}
	if errors.Is(err, engine.ErrNotConnected) {
		return "Live channel not connected - press the connect key first"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - try increasing timeout in settings (default: 30s)"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}

	var unknownCA x509.UnknownAuthorityError
	if errors.As(err, &unknownCA) {
		return "TLS certificate signed by unknown authority - set tls.caFile or insecure in settings"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Timeout() {
		return "Connection timeout - server took too long to respond"
	}

	return describeErrorText(err.Error())
}

// describeErrorText categorizes errors that only survive as text
func describeErrorText(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the base URL host"

	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check if server is running and port is correct"

	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by server"

	case strings.Contains(errLower, "x509") ||
		strings.Contains(errLower, "certificate"):
		return "TLS certificate error - check tls settings: " + errStr

	case strings.Contains(errLower, "bad handshake"):
		return "Live channel handshake failed - check the live url"

	case strings.Contains(errLower, "unexpected eof"):
		return "Connection closed unexpectedly"
	}
	return errStr
}
