// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pterm/pterm"
)

// ConnectErrorType is the category of a failed connection attempt.
type ConnectErrorType int

const (
	ConnectErrorUnknown ConnectErrorType = iota
	ConnectErrorTimeout
	ConnectErrorDNS
	ConnectErrorRefused
	ConnectErrorTLS
	ConnectErrorAuth
	ConnectErrorNoDatabase
)

// ClassifyConnectError categorizes an error returned while opening a session.
func ClassifyConnectError(err error) ConnectErrorType {
	if err == nil {
		return ConnectErrorUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return ConnectErrorAuth
		case "3D000":
			return ConnectErrorNoDatabase
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnectErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnectErrorDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ConnectErrorRefused
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return ConnectErrorTimeout
	case strings.Contains(lower, "no such host"):
		return ConnectErrorDNS
	case strings.Contains(lower, "connection refused"):
		return ConnectErrorRefused
	case strings.Contains(lower, "tls"), strings.Contains(lower, "ssl"), strings.Contains(lower, "certificate"):
		return ConnectErrorTLS
	case strings.Contains(lower, "password authentication failed"):
		return ConnectErrorAuth
	}
	return ConnectErrorUnknown
}

// FormatConnectError renders a connection failure with likely causes.
// target names what we were connecting to (usually the masked DSN or host).
func FormatConnectError(err error, target string) string {
	var b strings.Builder

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Connection failed"))
	if target != "" {
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint(" (" + Mask(target) + ")"))
	}
	b.WriteString("\n\n")

	switch ClassifyConnectError(err) {
	case ConnectErrorTimeout:
		b.WriteString("The server took too long to respond. This could mean:\n")
		b.WriteString("  • The host is unreachable from your network\n")
		b.WriteString("  • A firewall is silently dropping the connection\n")
		b.WriteString("  • The server is under heavy load\n")
	case ConnectErrorDNS:
		b.WriteString("The server address could not be resolved. Please check:\n")
		b.WriteString("  • The host name in your connection string\n")
		b.WriteString("  • Your DNS settings and VPN\n")
	case ConnectErrorRefused:
		b.WriteString("The server is not accepting connections. This could mean:\n")
		b.WriteString("  • PostgreSQL is not running\n")
		b.WriteString("  • Wrong port in the connection string\n")
		b.WriteString("  • listen_addresses does not include this interface\n")
	case ConnectErrorTLS:
		b.WriteString("A secure connection could not be established. Try:\n")
		b.WriteString("  • Checking the sslmode parameter (disable, require, verify-full)\n")
		b.WriteString("  • Verifying the server certificate and your system clock\n")
	case ConnectErrorAuth:
		b.WriteString("The server rejected the credentials.\n")
		b.WriteString("  • Check the user name and password\n")
		b.WriteString("  • Check pg_hba.conf allows this user from your address\n")
	case ConnectErrorNoDatabase:
		b.WriteString("The database requested does not exist.\n")
		b.WriteString("  • Check the database name in the connection string\n")
	default:
		b.WriteString("Please check your connection string and network.\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + PresentError("", err)))
	return b.String()
}
