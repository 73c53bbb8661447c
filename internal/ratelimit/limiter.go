// Package ratelimit locks out clients that keep presenting bad staff credentials.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/clock"
)

// Config holds rate limit configuration.
type Config struct {
	MaxFailures int           // Failed attempts per IP before lockout (default: 10)
	Window      time.Duration // Window the failures are counted in (default: 15m)
	Lockout     time.Duration // Lockout duration once MaxFailures is reached (default: 15m)

	// Clock for testing (nil uses real time)
	Clock clock.Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFailures: 10,
		Window:      15 * time.Minute,
		Lockout:     15 * time.Minute,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

// entry tracks failures for one client.
type entry struct {
	count    int
	firstAt  time.Time // First failure in window
	lastAt   time.Time
	lockedAt time.Time // When lockout started (zero if not locked)
}

// Limiter counts failed authentication attempts per client IP.
type Limiter struct {
	config  *Config
	clock   clock.Clock
	mu      sync.RWMutex
	entries map[string]*entry // Keyed by hash of IP

	// Cleanup goroutine management
	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock.OrReal(cfg.Clock),
		entries:       make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// Check reports whether ip may try to authenticate. It does not record anything.
func (l *Limiter) Check(ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	key := hashKey(ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	e := l.entries[key]
	if e == nil || e.lockedAt.IsZero() {
		return LimitResult{Allowed: true}
	}
	elapsed := now.Sub(e.lockedAt)
	if elapsed >= l.config.Lockout {
		// Lockout expired - the next failure starts a new window
		return LimitResult{Allowed: true}
	}
	return LimitResult{
		Allowed:    false,
		RetryAfter: l.config.Lockout - elapsed,
		Reason:     "lockout",
	}
}

// RecordFailure counts a rejected credential from ip.
// Returns true if this failure started a lockout.
func (l *Limiter) RecordFailure(ip string) (lockedOut bool) {
	now := l.clock.Now()
	key := hashKey(ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	switch {
	case e == nil,
		!e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.Lockout,
		e.lockedAt.IsZero() && now.Sub(e.firstAt) >= l.config.Window:
		e = &entry{firstAt: now}
		l.entries[key] = e
	}

	e.count++
	e.lastAt = now
	if e.count >= l.config.MaxFailures && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}
	return lockedOut
}

// Reset clears the failures of ip after a successful authentication.
func (l *Limiter) Reset(ip string) {
	key := hashKey(ip)
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

func hashKey(value string) string {
	hash := sha256.Sum256([]byte(value))
	return "auth:ip:" + hex.EncodeToString(hash[:8])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	maxAge := l.config.Window + l.config.Lockout
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.entries {
		if now.Sub(e.lastAt) > maxAge {
			delete(l.entries, k)
		}
	}
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely (prevents spoofing).
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Use RIGHTMOST IP - this is the one your proxy added, not user-supplied
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				// Skip private/internal IPs to find the real client
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			// All IPs are private, use the last one
			return strings.TrimSpace(parts[len(parts)-1])
		}

		// Check X-Real-IP (set by nginx)
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	// Fall back to RemoteAddr (direct connection or untrusted proxy)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port (e.g., Unix socket or malformed)
		// Try to parse as IP directly, otherwise return as-is
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		// Last resort: strip anything after last colon that looks like a port
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks holds parsed CIDR ranges for private/reserved IPs.
// Parsed once at package init for efficiency.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10", // Link-local
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range.
// Handles both IPv4 and IPv4-mapped IPv6 addresses (e.g., ::ffff:192.168.1.1).
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	// Convert IPv4-mapped IPv6 to IPv4 for consistent matching
	// e.g., ::ffff:192.168.1.1 -> 192.168.1.1
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// LogLockout logs a client that hit the failure limit.
func LogLockout(ip, path string) {
	log.Warn().
		Str("event", "auth_lockout").
		Str("ip", ip).
		Str("path", path).
		Msg("Too many failed staff authentications")
}
