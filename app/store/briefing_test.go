package store

import (
	"context"
	"testing"
	"time"
)

func TestBriefingSettingsDefaultsAndUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b, err := s.BriefingSettings(ctx, "c1")
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	if !b.Enabled || b.Time != "08:00" || b.City != "서울" {
		t.Errorf("unexpected defaults: %+v", b)
	}
	if b.ConversationID != "c1" {
		t.Errorf("expected conversation id to be filled, got %q", b.ConversationID)
	}

	b.Time = "07:30"
	b.City = "부산"
	b.Enabled = false
	if err = s.SetBriefingSettings(ctx, b); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	got, err := s.BriefingSettings(ctx, "c1")
	if err != nil {
		t.Fatalf("failed to reload settings: %v", err)
	}
	if got != b {
		t.Errorf("got %+v, want %+v", got, b)
	}
}

func TestDueBriefingsBoundary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 8, 0, 0, 0, time.Local)

	set := func(id, clock string, enabled bool) {
		t.Helper()
		err := s.SetBriefingSettings(ctx, BriefingSettings{
			ConversationID: id,
			Enabled:        enabled,
			Time:           clock,
			City:           "서울",
		})
		if err != nil {
			t.Fatalf("failed to save settings: %v", err)
		}
	}

	set("exact", "08:00", true)
	set("earlier", "07:00", true)
	set("later", "08:01", true)
	set("disabled", "07:00", false)

	due, err := s.DueBriefings(ctx, now)
	if err != nil {
		t.Fatalf("failed to query due briefings: %v", err)
	}

	if len(due) != 2 {
		t.Fatalf("expected 2 due briefings, got %d", len(due))
	}
	if due[0].ConversationID != "earlier" || due[1].ConversationID != "exact" {
		t.Errorf("unexpected due set: %+v", due)
	}
}

func TestMarkBriefingSentOnlyOncePerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 5, 8, 0, 0, 0, time.Local)

	err := s.SetBriefingSettings(ctx, BriefingSettings{
		ConversationID: "c1",
		Enabled:        true,
		Time:           "07:00",
		City:           "서울",
	})
	if err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	marked, err := s.MarkBriefingSent(ctx, "c1", now)
	if err != nil {
		t.Fatalf("failed to mark: %v", err)
	}
	if !marked {
		t.Fatal("expected first mark to claim the row")
	}

	marked, err = s.MarkBriefingSent(ctx, "c1", now)
	if err != nil {
		t.Fatalf("failed to mark again: %v", err)
	}
	if marked {
		t.Error("expected second mark on the same day to be a no-op")
	}

	due, err := s.DueBriefings(ctx, now)
	if err != nil {
		t.Fatalf("failed to query due briefings: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected no due briefings after marking, got %d", len(due))
	}

	// next day it is due and markable again
	tomorrow := now.AddDate(0, 0, 1)

	due, err = s.DueBriefings(ctx, tomorrow)
	if err != nil {
		t.Fatalf("failed to query due briefings: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected briefing due again next day, got %d", len(due))
	}

	marked, err = s.MarkBriefingSent(ctx, "c1", tomorrow)
	if err != nil {
		t.Fatalf("failed to mark next day: %v", err)
	}
	if !marked {
		t.Error("expected next-day mark to claim the row")
	}
}
