package waitlist

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestConfirmationTokenIsStableAndLowercaseHex(t *testing.T) {
	entryID := uuid.New()
	createdAt := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)

	token := ConfirmationToken("secret", entryID, createdAt)
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64 hex chars", len(token))
	}
	if token != strings.ToLower(token) {
		t.Error("token must be lowercase hex")
	}

	// The database round-trip may shift the location or drop sub-second
	// precision; the token must survive both.
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	roundTripped := createdAt.In(berlin)
	if got := ConfirmationToken("secret", entryID, roundTripped); got != token {
		t.Error("token changed across timezone round-trip")
	}
	truncated := createdAt.Add(500 * time.Millisecond).Truncate(time.Second)
	if got := ConfirmationToken("secret", entryID, truncated); got != token {
		t.Error("token changed across sub-second truncation")
	}
}

func TestVerifyConfirmationToken(t *testing.T) {
	entryID := uuid.New()
	createdAt := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	token := ConfirmationToken("secret", entryID, createdAt)

	if !VerifyConfirmationToken("secret", entryID, createdAt, token) {
		t.Error("valid token rejected")
	}
	if VerifyConfirmationToken("other-secret", entryID, createdAt, token) {
		t.Error("token verified under the wrong secret")
	}
	if VerifyConfirmationToken("secret", uuid.New(), createdAt, token) {
		t.Error("token verified for the wrong entry")
	}
	if VerifyConfirmationToken("secret", entryID, createdAt.Add(time.Second), token) {
		t.Error("token verified for the wrong creation time")
	}
	tampered := "0"
	if token[63] == '0' {
		tampered = "1"
	}
	if VerifyConfirmationToken("secret", entryID, createdAt, token[:63]+tampered) {
		t.Error("tampered token verified")
	}
}
