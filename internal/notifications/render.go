package notifications

import (
	"fmt"
	"time"

	"vereinsportal/internal/waitlist"
)

// Rendering is deliberately plain text. Families read these on phones;
// a short message with one link beats an HTML layout.

func renderPromotionOffer(recipient string, offer waitlist.PromotionOffer) *Message {
	subject := fmt.Sprintf("A spot opened up: %s", offer.EventTitle)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Good news! %s for your family (%d %s) just became available for %q.\n\n"+
			"Please confirm your spot by following this link:\n\n"+
			"    %s\n\n"+
			"The offer is valid until %s. If you do not confirm by then, the spot "+
			"is passed on to the next family on the waitlist.\n",
		offer.ParentName,
		spotsWord(offer.ChildrenCount),
		offer.ChildrenCount,
		childWord(offer.ChildrenCount),
		offer.EventTitle,
		offer.ConfirmURL,
		offer.Deadline.Format(time.RFC1123),
	)
	return NewMessage(KindPromotionOffer, recipient, subject, body)
}

func renderExpiryNotice(recipient string, notice waitlist.ExpiryNotice) *Message {
	subject := fmt.Sprintf("Waitlist offer expired: %s", notice.EventTitle)
	body := fmt.Sprintf(
		"The promotion offer for %s (%d %s, entry %s) on %q expired without "+
			"confirmation. The entry was returned to the waitlist at its original "+
			"position and the freed spots were offered to the next family in line.\n",
		notice.ParentName,
		notice.ChildrenCount,
		childWord(notice.ChildrenCount),
		notice.EntryID,
		notice.EventTitle,
	)
	return NewMessage(KindExpiryNotice, recipient, subject, body)
}

func renderConfirmationReceipt(recipient string, receipt waitlist.ConfirmationReceipt) *Message {
	subject := fmt.Sprintf("Registration confirmed: %s", receipt.EventTitle)
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your registration for %q is confirmed. %d %s now %s a spot.\n\n"+
			"We look forward to seeing you there!\n",
		receipt.ParentName,
		receipt.EventTitle,
		receipt.ChildrenCount,
		childWord(receipt.ChildrenCount),
		hasWord(receipt.ChildrenCount),
	)
	return NewMessage(KindConfirmationReceipt, recipient, subject, body)
}

func spotsWord(n int) string {
	if n == 1 {
		return "a spot"
	}
	return "spots"
}

func childWord(n int) string {
	if n == 1 {
		return "child"
	}
	return "children"
}

func hasWord(n int) string {
	if n == 1 {
		return "has"
	}
	return "have"
}
