// Package notifier delivers outbound notifications.  The core treats
// delivery failure as reportable but never lets it affect seat state:
// a committed reservation stays committed even when its receipt email
// bounces.
package notifier

import "context"

// Attachment is an already-decoded file forwarded with a notification,
// typically the user's proof of payment echoed back on the receipt.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Notifier sends a message to a single recipient with an optional
// attachment.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string, attachment *Attachment) error
}
