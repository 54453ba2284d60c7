package main

import (
	"strings"
	"time"
)

// reservedSenders are system mailboxes rather than people.
var reservedSenders = map[string]struct{}{
	"notes":         {},
	"announcements": {},
}

// CleanEvent is a deduplicated, complete message sent by a person.
// RecipientsRaw is still pipe-delimited; see Recipients.
type CleanEvent struct {
	Time          time.Time
	Sender        string
	RecipientsRaw string
}

// Recipients splits the recipient field on '|' and drops empty tokens.
func (e CleanEvent) Recipients() []string {
	tokens := strings.Split(e.RecipientsRaw, "|")
	recipients := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		recipients = append(recipients, token)
	}
	return recipients
}

// CleanStats counts the rows each cleaning step discarded.
type CleanStats struct {
	RawRows        int `json:"raw_rows"`
	DuplicateRows  int `json:"duplicate_rows"`
	IncompleteRows int `json:"incomplete_rows"`
	ReservedRows   int `json:"reserved_sender_rows"`
	CleanEvents    int `json:"clean_events"`
}

// cleanEvents applies, in order: lower-casing, first-wins dedupe on message id,
// dropping incomplete rows, epoch-millisecond conversion and removal of
// reserved senders. Surviving rows keep their input order.
func cleanEvents(raw []RawEvent) ([]CleanEvent, CleanStats) {
	stats := CleanStats{RawRows: len(raw)}
	seen := make(map[string]struct{}, len(raw))
	cleaned := make([]CleanEvent, 0, len(raw))

	for _, row := range raw {
		sender := strings.ToLower(row.Sender)
		recipients := strings.ToLower(row.RecipientsRaw)

		if _, dup := seen[row.MessageID]; dup {
			stats.DuplicateRows++
			continue
		}
		seen[row.MessageID] = struct{}{}

		if sender == "" || recipients == "" || !row.HasTimestamp {
			stats.IncompleteRows++
			continue
		}

		sentAt := time.UnixMilli(row.Timestamp).UTC()

		if _, reserved := reservedSenders[sender]; reserved {
			stats.ReservedRows++
			continue
		}

		cleaned = append(cleaned, CleanEvent{
			Time:          sentAt,
			Sender:        sender,
			RecipientsRaw: recipients,
		})
	}

	stats.CleanEvents = len(cleaned)
	return cleaned, stats
}
