package models

import "time"

// ServiceRecord is one entry in the day's queue: a car waiting for service,
// either walked in or pre-booked for a time slot.
type ServiceRecord struct {
	ID            int64      `json:"id"`
	TicketNumber  string     `json:"ticket_number"`
	Title         string     `json:"title"`
	Comment       string     `json:"comment,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	AppointmentAt *time.Time `json:"appointment_at,omitempty"`
}

const (
	StatusWaiting   = "waiting"
	StatusAccepted  = "accepted"
	StatusInService = "in_service"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

// IsAppointment reports whether the record was created as a pre-booked
// appointment. The classification is fixed at creation time.
func (r ServiceRecord) IsAppointment() bool {
	return r.AppointmentAt != nil
}

// IsActive reports whether the record still participates in queue views.
func (r ServiceRecord) IsActive() bool {
	return r.Status != StatusDone && r.Status != StatusCancelled
}

func ValidStatus(status string) bool {
	switch status {
	case StatusWaiting, StatusAccepted, StatusInService, StatusDone, StatusCancelled:
		return true
	}
	return false
}
