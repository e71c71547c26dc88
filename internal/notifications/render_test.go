package notifications

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"vereinsportal/internal/waitlist"
)

func TestRenderPromotionOffer(t *testing.T) {
	deadline := time.Date(2026, 8, 8, 10, 0, 0, 0, time.UTC)
	offer := waitlist.PromotionOffer{
		EventTitle:    "Sommerfreizeit",
		ParentName:    "Anna Weber",
		ChildrenCount: 2,
		ConfirmURL:    "https://portal.example.org/confirm/abc?token=def",
		Deadline:      deadline,
	}

	msg := renderPromotionOffer("anna@example.org", offer)

	if msg.Kind != KindPromotionOffer {
		t.Errorf("kind = %q, want %q", msg.Kind, KindPromotionOffer)
	}
	if msg.Recipient != "anna@example.org" {
		t.Errorf("recipient = %q", msg.Recipient)
	}
	if !strings.Contains(msg.Subject, "Sommerfreizeit") {
		t.Errorf("subject %q missing event title", msg.Subject)
	}
	if !strings.Contains(msg.Body, offer.ConfirmURL) {
		t.Errorf("body missing confirmation link:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "2 children") {
		t.Errorf("body missing children count:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, deadline.Format(time.RFC1123)) {
		t.Errorf("body missing deadline:\n%s", msg.Body)
	}
}

func TestRenderSingularChild(t *testing.T) {
	receipt := waitlist.ConfirmationReceipt{
		EventTitle:    "Herbstlager",
		ParentName:    "Jonas Berg",
		ChildrenCount: 1,
	}

	msg := renderConfirmationReceipt("jonas@example.org", receipt)

	if !strings.Contains(msg.Body, "1 child now has a spot") {
		t.Errorf("singular phrasing wrong:\n%s", msg.Body)
	}
	if strings.Contains(msg.Body, "children") {
		t.Errorf("plural leaked into singular body:\n%s", msg.Body)
	}
}

func TestRenderExpiryNoticeNamesEntry(t *testing.T) {
	entryID := uuid.New()
	notice := waitlist.ExpiryNotice{
		EventTitle:    "Sommerfreizeit",
		ParentName:    "Anna Weber",
		ChildrenCount: 3,
		EntryID:       entryID,
	}

	msg := renderExpiryNotice("vorstand@example.org", notice)

	if !strings.Contains(msg.Body, entryID.String()) {
		t.Errorf("body missing entry id:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "original position") {
		t.Errorf("body should explain the requeue:\n%s", msg.Body)
	}
}

func TestMessageJSONRoundTrip(t *testing.T) {
	original := NewMessage(KindExpiryNotice, "vorstand@example.org", "subject", "body")

	data, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := MessageFromJSON(data)
	if err != nil {
		t.Fatalf("MessageFromJSON: %v", err)
	}
	if decoded.ID != original.ID || decoded.Kind != original.Kind || decoded.Body != original.Body {
		t.Errorf("round trip mismatch: %+v vs %+v", decoded, original)
	}
	if decoded.PartitionKey() != "vorstand@example.org" {
		t.Errorf("partition key = %q", decoded.PartitionKey())
	}
}
