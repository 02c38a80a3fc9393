package repositories

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
)

// Postgres error classes/codes treated as connectivity failures rather
// than query faults: admin shutdown, crash shutdown, cannot connect
// now, and the 08xxx connection-exception class.
var transientPgCodes = map[string]bool{
	"57P01": true,
	"57P02": true,
	"57P03": true,
	"08000": true,
	"08001": true,
	"08006": true,
}

// IsConnectivityError reports whether err means the store is
// unreachable, as opposed to a real query fault (constraint violation,
// malformed SQL). Connectivity failures are recovered locally by the
// degraded-mode paths; everything else propagates.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return transientPgCodes[string(pqErr.Code)]
	}

	// lib/pq surfaces dial failures as plain errors in some paths
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable")
}
