package main

import (
	"reflect"
	"testing"
	"time"
)

func raw(ts int64, id, sender, recipients string) RawEvent {
	return RawEvent{Timestamp: ts, HasTimestamp: true, MessageID: id, Sender: sender, RecipientsRaw: recipients}
}

func TestCleanEventsKeepsFirstDuplicate(t *testing.T) {
	events, stats := cleanEvents([]RawEvent{
		raw(1000, "m1", "A", "B|C"),
		raw(2000, "m1", "Z", "B"),
	})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Sender != "a" || events[0].RecipientsRaw != "b|c" {
		t.Fatalf("unexpected survivor %+v", events[0])
	}
	if stats.DuplicateRows != 1 {
		t.Fatalf("expected 1 duplicate row, got %d", stats.DuplicateRows)
	}
}

func TestCleanEventsDedupesBeforeDroppingIncomplete(t *testing.T) {
	events, stats := cleanEvents([]RawEvent{
		raw(1000, "m1", "", "b"),
		raw(2000, "m1", "a", "b"),
		raw(3000, "m2", "a", ""),
		{MessageID: "m3", Sender: "a", RecipientsRaw: "b"},
	})
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
	if stats.DuplicateRows != 1 || stats.IncompleteRows != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCleanEventsDropsReservedSenders(t *testing.T) {
	events, stats := cleanEvents([]RawEvent{
		raw(1000, "m1", "Notes", "a"),
		raw(1000, "m2", "ANNOUNCEMENTS", "a|b"),
		raw(1000, "m3", "notes.user", "a"),
	})
	if len(events) != 1 || events[0].Sender != "notes.user" {
		t.Fatalf("expected only notes.user to survive, got %+v", events)
	}
	if stats.ReservedRows != 2 {
		t.Fatalf("expected 2 reserved rows, got %d", stats.ReservedRows)
	}
}

func TestCleanEventsPreservesOrderAndConvertsTime(t *testing.T) {
	events, _ := cleanEvents([]RawEvent{
		raw(995155200000, "m1", "c", "a"),
		raw(988848000000, "m2", "b", "a"),
		raw(990316800000, "m3", "a", "b"),
	})
	senders := []string{}
	for _, event := range events {
		senders = append(senders, event.Sender)
	}
	if !reflect.DeepEqual(senders, []string{"c", "b", "a"}) {
		t.Fatalf("expected input order, got %v", senders)
	}
	want := time.Date(2001, 7, 15, 0, 0, 0, 0, time.UTC)
	if !events[0].Time.Equal(want) {
		t.Fatalf("expected %s, got %s", want, events[0].Time)
	}
}

func TestRecipientsDropsEmptyTokens(t *testing.T) {
	event := CleanEvent{RecipientsRaw: "a||b|"}
	if got := event.Recipients(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected [a b], got %v", got)
	}
	if got := (CleanEvent{RecipientsRaw: "|"}).Recipients(); len(got) != 0 {
		t.Fatalf("expected no recipients, got %v", got)
	}
}
