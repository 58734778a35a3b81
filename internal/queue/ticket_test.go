package queue

import "testing"

func TestTicketLabel(t *testing.T) {
	cases := []struct {
		id             int64
		hasAppointment bool
		want           string
	}{
		{1, false, "W001"},
		{1, true, "A001"},
		{42, false, "W042"},
		{999, true, "A999"},
		{1000, false, "W000"},
		{1234, false, "W234"},
		{1234, true, "A234"},
		{98765, false, "W765"},
	}

	for _, tt := range cases {
		if got := TicketLabel(tt.id, tt.hasAppointment); got != tt.want {
			t.Fatalf("TicketLabel(%d, %v)=%q, want %q", tt.id, tt.hasAppointment, got, tt.want)
		}
	}
}

func TestTicketLabelStable(t *testing.T) {
	first := TicketLabel(517, true)
	for i := 0; i < 10; i++ {
		if got := TicketLabel(517, true); got != first {
			t.Fatalf("label changed between calls: %q then %q", first, got)
		}
	}
}

func TestTicketLabelSuffixCollision(t *testing.T) {
	// 234 and 1234 intentionally share a suffix; the id stays unique.
	if TicketLabel(234, false) != TicketLabel(1234, false) {
		t.Fatal("expected ids differing above the low three digits to share a label")
	}
}
