// Package validation provides input validation and sanitization for network messages.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Message size and content limits
const (
	MaxMessageSize    = 4 * 1024
	MaxPlayerNameLen  = 20
	MaxKeyLen         = 16
	MaxMessagesPerSec = 120
)

// MessageValidator checks raw inbound frames before they are decoded.
type MessageValidator struct {
	rateLimiter *RateLimiter
}

// NewMessageValidator creates a validator allowing MaxMessagesPerSec frames
// per client.
func NewMessageValidator() *MessageValidator {
	return NewMessageValidatorWithLimit(MaxMessagesPerSec, time.Second)
}

// NewMessageValidatorWithLimit creates a validator with a custom rate.
func NewMessageValidatorWithLimit(maxMessages int, window time.Duration) *MessageValidator {
	return &MessageValidator{
		rateLimiter: NewRateLimiter(maxMessages, window),
	}
}

// Close releases resources used by the message validator
func (v *MessageValidator) Close() {
	if v.rateLimiter != nil {
		v.rateLimiter.Close()
	}
}

// Forget drops the rate state of a disconnected client.
func (v *MessageValidator) Forget(clientID string) {
	v.rateLimiter.Forget(clientID)
}

// ValidateMessage validates a raw message against size and format constraints
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes (max %d)", len(data), MaxMessageSize)
	}

	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON format")
	}

	if !v.rateLimiter.Allow(clientID) {
		return fmt.Errorf("rate limit exceeded: max %d messages per %s", v.rateLimiter.maxRequests, v.rateLimiter.window)
	}

	return nil
}

// SanitizePlayerName trims the name, drops control characters and cuts it
// to MaxPlayerNameLen runes. An empty result is allowed and means the craft
// is shown without a label.
func SanitizePlayerName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("player name contains invalid UTF-8 characters")
	}

	filtered := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	filtered = strings.Join(strings.Fields(filtered), " ")

	if utf8.RuneCountInString(filtered) > MaxPlayerNameLen {
		filtered = strings.TrimSpace(string([]rune(filtered)[:MaxPlayerNameLen]))
	}
	return filtered, nil
}

// ValidateKey checks the key name carried by keydown and keyup messages.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if len(key) > MaxKeyLen {
		return fmt.Errorf("key too long: %d bytes (max %d)", len(key), MaxKeyLen)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("key contains invalid UTF-8 characters")
	}
	return nil
}

// ValidateTurn checks an explicit turn value.
func ValidateTurn(turn int) error {
	if turn < -1 || turn > 1 {
		return fmt.Errorf("invalid turn: %d (must be -1, 0 or 1)", turn)
	}
	return nil
}
