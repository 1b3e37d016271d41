package mailer

import (
	"context"
	"log"
)

// DryRun logs messages instead of sending them
type DryRun struct{}

func (DryRun) Send(_ context.Context, msg Message) (string, error) {
	size := 0
	for _, a := range msg.Attachments {
		size += len(a.Content)
	}
	log.Printf("[INFO][MAILER] dry run to=%v subject=%q attachments=%d (%d bytes)",
		msg.To, msg.Subject, len(msg.Attachments), size)
	return "dry-run", nil
}
