package queue

import (
	"time"

	"bayline/queue-service/internal/models"
)

// ViewEntry is one row of a presentation surface: kiosk, staff console, or
// display board.
type ViewEntry struct {
	ID            int64      `json:"id"`
	TicketNumber  string     `json:"ticket_number"`
	Title         string     `json:"title"`
	Comment       string     `json:"comment,omitempty"`
	Status        string     `json:"status"`
	Position      int        `json:"position,omitempty"`
	AppointmentAt *time.Time `json:"appointment_at,omitempty"`
}

type View struct {
	InService []ViewEntry `json:"in_service"`
	Waiting   []ViewEntry `json:"waiting"`
}

// BuildView projects a snapshot into the ordered view model the surfaces
// render. Waiting entries carry their 1-based queue position.
func BuildView(records []models.ServiceRecord) View {
	projection := Project(records)

	view := View{
		InService: make([]ViewEntry, 0, len(projection.InService)),
		Waiting:   make([]ViewEntry, 0, len(projection.Waiting)),
	}
	for _, record := range projection.InService {
		view.InService = append(view.InService, entryFor(record, 0))
	}
	for i, record := range projection.Waiting {
		view.Waiting = append(view.Waiting, entryFor(record, i+1))
	}
	return view
}

func entryFor(record models.ServiceRecord, position int) ViewEntry {
	return ViewEntry{
		ID:            record.ID,
		TicketNumber:  TicketLabel(record.ID, record.IsAppointment()),
		Title:         record.Title,
		Comment:       record.Comment,
		Status:        record.Status,
		Position:      position,
		AppointmentAt: record.AppointmentAt,
	}
}
