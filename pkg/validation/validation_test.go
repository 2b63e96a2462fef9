package validation

import (
	"strings"
	"testing"
	"time"
)

func TestSanitizePlayerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple name", input: "Player1", want: "Player1"},
		{name: "spaces kept", input: "Player One", want: "Player One"},
		{name: "leading and trailing spaces", input: "  Player1  ", want: "Player1"},
		{name: "inner runs collapsed", input: "a   b\tc", want: "a b c"},
		{name: "empty name allowed", input: "", want: ""},
		{name: "only whitespace", input: "   ", want: ""},
		{name: "control characters dropped", input: "Play\x00er\x07", want: "Player"},
		{name: "unicode kept", input: "Ørjan 🚀", want: "Ørjan 🚀"},
		{name: "punctuation kept", input: "<b>&", want: "<b>&"},
		{name: "cut to limit", input: strings.Repeat("é", MaxPlayerNameLen+5), want: strings.Repeat("é", MaxPlayerNameLen)},
		{name: "no trailing space after cut", input: strings.Repeat("a", MaxPlayerNameLen-1) + " b", want: strings.Repeat("a", MaxPlayerNameLen-1)},
		{name: "invalid utf-8", input: "bad\xff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePlayerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizePlayerName() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("SanitizePlayerName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"w", false},
		{" ", false},
		{"Shift", false},
		{"ArrowLeft", false},
		{"", true},
		{strings.Repeat("k", MaxKeyLen+1), true},
		{"\xff", true},
	}

	for _, tt := range tests {
		err := ValidateKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestValidateTurn(t *testing.T) {
	for turn := -3; turn <= 3; turn++ {
		err := ValidateTurn(turn)
		wantErr := turn < -1 || turn > 1
		if (err != nil) != wantErr {
			t.Errorf("ValidateTurn(%d) error = %v, wantErr %v", turn, err, wantErr)
		}
	}
}

func TestMessageValidator_ValidateMessage(t *testing.T) {
	validator := NewMessageValidator()
	defer validator.Close()

	tests := []struct {
		name        string
		data        []byte
		clientID    string
		wantErr     bool
		errContains string
	}{
		{
			name:     "valid JSON message",
			data:     []byte(`{"type":"keydown","payload":"w"}`),
			clientID: "client1",
			wantErr:  false,
		},
		{
			name:        "too large message",
			data:        make([]byte, MaxMessageSize+1),
			clientID:    "client1",
			wantErr:     true,
			errContains: "too large",
		},
		{
			name:        "invalid JSON",
			data:        []byte(`{"invalid": json`),
			clientID:    "client1",
			wantErr:     true,
			errContains: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateMessage(tt.data, tt.clientID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateMessage() error = %v, should contain %q", err, tt.errContains)
			}
		})
	}
}

func TestMessageValidator_RateLimit(t *testing.T) {
	validator := NewMessageValidatorWithLimit(3, time.Minute)
	defer validator.Close()

	msg := []byte(`{"type":"ping"}`)
	for i := 0; i < 3; i++ {
		if err := validator.ValidateMessage(msg, "c"); err != nil {
			t.Fatalf("message %d rejected: %v", i+1, err)
		}
	}
	if err := validator.ValidateMessage(msg, "c"); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("ValidateMessage() error = %v, expected rate limit", err)
	}

	validator.Forget("c")
	if err := validator.ValidateMessage(msg, "c"); err != nil {
		t.Errorf("forgotten client still limited: %v", err)
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	defer rl.Close()

	clientID := "test-client"

	for i := 0; i < 5; i++ {
		if !rl.Allow(clientID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow(clientID) {
		t.Error("6th request should be denied")
	}

	if !rl.Allow("other-client") {
		t.Error("Different client should be allowed")
	}
	if rl.Len() != 2 {
		t.Errorf("Len() = %d, expected 2", rl.Len())
	}
}

func TestRateLimiter_TokenRefill(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)
	defer rl.Close()

	clientID := "test-client"

	rl.Allow(clientID)
	rl.Allow(clientID)

	if rl.Allow(clientID) {
		t.Error("Request should be denied after consuming all tokens")
	}

	time.Sleep(150 * time.Millisecond)

	if !rl.Allow(clientID) {
		t.Error("Request should be allowed after token refill")
	}
}

func TestRateLimiter_RemoveInactive(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	rl.Allow("idle")
	rl.removeInactiveClients(time.Now().Add(3 * time.Minute))
	if rl.Len() != 0 {
		t.Errorf("Len() = %d after cleanup, expected 0", rl.Len())
	}
}

func TestRateLimiter_CloseTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Close()
	rl.Close()
}
