// Package gateway provides a session client for the local brokerage API gateway.
package gateway

import (
	"net"
	"strconv"
	"time"
)

// Config holds configuration for the gateway client.
type Config struct {
	Host    string        // Gateway host (e.g., "127.0.0.1")
	Port    int           // Default gateway port, overridable per session
	Timeout time.Duration // Whole-request HTTP timeout

	RateLimit    int           // Max gateway requests per RateInterval; 0 disables throttling
	RateInterval time.Duration // Window for RateLimit
}

// BaseURL returns the gateway root URL for port, or for the configured port when port is 0.
func (c Config) BaseURL(port int) string {
	if port == 0 {
		port = c.Port
	}
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
