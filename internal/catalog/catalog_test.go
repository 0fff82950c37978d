package catalog

import (
	"testing"

	"bakeshop/internal/domain"
)

func TestCatalog_OrderAndLookup(t *testing.T) {
	src := []domain.PickupSlot{{ID: "3", Available: 4}, {ID: "1", Available: -2}, {ID: "2", Available: 9}}
	c := New(src)
	src[0].Available = 100

	slots := c.Slots()
	if len(slots) != 3 || slots[0].ID != "3" || slots[2].ID != "2" {
		t.Fatalf("order not preserved: %+v", slots)
	}
	if slots[0].Available != 4 {
		t.Fatalf("catalog shares memory with its source")
	}
	if slots[1].Available != 0 {
		t.Fatalf("negative availability not clamped: %d", slots[1].Available)
	}

	s, err := c.Lookup("2")
	if err != nil || s.Available != 9 {
		t.Fatalf("lookup: %v %+v", err, s)
	}
	if _, err := c.Lookup("42"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestLabel(t *testing.T) {
	cases := map[int]string{
		0:  "Sold Out!",
		1:  "Only 1 left!",
		6:  "Only 6 left!",
		7:  "7 available",
		30: "30 available",
	}
	for in, want := range cases {
		if got := Label(in); got != want {
			t.Fatalf("Label(%d) = %q, want %q", in, got, want)
		}
	}
}
