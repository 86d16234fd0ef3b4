package core

import "testing"

func TestSelectWindowInclusiveBounds(t *testing.T) {
	all := []Record{
		donation("a@x.com", 100, "2024-01-09"),
		donation("b@x.com", 200, "2024-01-10"),
		donation("c@x.com", 300, "2024-01-20"),
		donation("d@x.com", 400, "2024-01-31"),
		donation("e@x.com", 500, "2024-02-01"),
	}

	got := SelectWindow(all, ParseDate("2024-01-10"), ParseDate("2024-01-31"))
	if len(got) != 3 {
		t.Fatalf("window size = %d, want 3", len(got))
	}
	if got[0].Email != "b@x.com" || got[2].Email != "d@x.com" {
		t.Fatalf("window bounds not inclusive: %v", got)
	}
}

func TestSelectWindowExcludesInvalidDates(t *testing.T) {
	all := []Record{
		donation("a@x.com", 100, "garbage"),
		donation("b@x.com", 200, "2024-01-15"),
	}
	got := SelectWindow(all, ParseDate("2024-01-01"), ParseDate("2024-01-31"))
	if len(got) != 1 || got[0].Email != "b@x.com" {
		t.Fatalf("invalid-date record leaked into window: %v", got)
	}
}

func TestBaselineBefore(t *testing.T) {
	all := []Record{
		donation("a@x.com", 100, "2024-01-09"),
		donation("b@x.com", 200, "2024-01-10"),
		donation("c@x.com", 300, "bad"),
	}

	base := BaselineBefore(all, ParseDate("2024-01-10"))
	if len(base) != 1 || base[0].Email != "a@x.com" {
		t.Fatalf("baseline = %v, want only the strictly-before record", base)
	}

	if base := BaselineBefore(all, Date{}); base != nil {
		t.Fatalf("invalid start must yield an empty baseline, got %v", base)
	}
}

func TestSelectWindowPreservesInputOrder(t *testing.T) {
	all := []Record{
		donation("z@x.com", 100, "2024-01-12"),
		donation("a@x.com", 200, "2024-01-11"),
	}
	got := SelectWindow(all, ParseDate("2024-01-01"), ParseDate("2024-01-31"))
	if got[0].Email != "z@x.com" {
		t.Fatal("window filter must not reorder records")
	}
}
