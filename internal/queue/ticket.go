package queue

import "fmt"

const (
	ticketNumberPad   = 3
	walkInMarker      = "W"
	appointmentMarker = "A"
)

// TicketLabel derives the human-readable ticket number for a record: the
// category marker followed by the last three digits of the id, zero-padded.
// Records whose ids differ only above the low three digits share a suffix;
// the id stays the unique key, the label is display only.
func TicketLabel(id int64, hasAppointment bool) string {
	marker := walkInMarker
	if hasAppointment {
		marker = appointmentMarker
	}
	return fmt.Sprintf("%s%0*d", marker, ticketNumberPad, id%1000)
}
