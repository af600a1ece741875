package availability

import (
	"testing"
	"time"
)

func TestSlotTokens_FullDay(t *testing.T) {
	tokens, err := SlotTokens("09:00", "11:00", 30*time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], tokens[i])
		}
	}
}

func TestSlotTokens_RemovesBooked(t *testing.T) {
	tokens, err := SlotTokens("09:00", "10:30", 30*time.Minute, []string{"09:30"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tokens)
	}
	if tokens[0] != "09:00" || tokens[1] != "10:00" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
}

func TestSlotTokens_EndExclusive(t *testing.T) {
	tokens, err := SlotTokens("16:30", "17:00", 30*time.Minute, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "16:30" {
		t.Fatalf("expected only 16:30, got %v", tokens)
	}
}

func TestSlotTokens_InvalidWindow(t *testing.T) {
	if _, err := SlotTokens("17:00", "09:00", 30*time.Minute, nil); err == nil {
		t.Fatal("expected error for inverted window")
	}
	if _, err := SlotTokens("9am", "17:00", 30*time.Minute, nil); err == nil {
		t.Fatal("expected error for malformed start")
	}
	if _, err := SlotTokens("09:00", "17:00", 0, nil); err == nil {
		t.Fatal("expected error for zero step")
	}
}
