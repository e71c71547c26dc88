package waitlist

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ConfirmationToken derives the confirmation token for a waitlist entry.
// HMAC-SHA256 over the entry ID and its creation second, keyed by the
// configured secret. Tokens are never stored; verification recomputes the
// expected value. Second precision keeps the token stable across the
// database timestamp round-trip.
func ConfirmationToken(secret string, entryID uuid.UUID, createdAt time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(entryID.String()))
	mac.Write([]byte(strconv.FormatInt(createdAt.UTC().Unix(), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyConfirmationToken checks a presented token in constant time.
func VerifyConfirmationToken(secret string, entryID uuid.UUID, createdAt time.Time, token string) bool {
	expected := ConfirmationToken(secret, entryID, createdAt)
	return hmac.Equal([]byte(expected), []byte(token))
}
