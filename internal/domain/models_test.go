package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPickupSlotDecoding(t *testing.T) {
	raw := `[
		{"id": 7, "date": "2026-11-07T00:00:00Z", "available": 3},
		{"id": "abc", "date": "Sat, Nov 14, 2026", "available": 0},
		{"id": 9, "date": "2026-11-21", "available": 12}
	]`
	var slots []PickupSlot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if slots[0].ID != "7" || slots[1].ID != "abc" || slots[2].ID != "9" {
		t.Fatalf("ids: %+v", slots)
	}
	want := time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC)
	if !slots[1].Date.Equal(want) {
		t.Fatalf("display date parsed as %v", slots[1].Date)
	}
	if got := slots[2].Date.Label(); got != "Sat, Nov 21, 2026" {
		t.Fatalf("label %q", got)
	}
}

func TestSlotDateRejectsGarbage(t *testing.T) {
	var d SlotDate
	if err := json.Unmarshal([]byte(`"next tuesday"`), &d); err == nil {
		t.Fatalf("expected error")
	}
	var id SlotID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Fatalf("expected error for bool id")
	}
}

func TestSlotDateMarshalsUTC(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	b, err := json.Marshal(SlotDate{Time: time.Date(2026, 11, 7, 1, 0, 0, 0, loc)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2026-11-06T23:00:00Z"` {
		t.Fatalf("got %s", b)
	}
}
