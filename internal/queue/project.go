package queue

import (
	"sort"

	"bayline/queue-service/internal/models"
)

// Projection partitions the day's active records into cars currently on a
// bay and cars still waiting.
type Projection struct {
	InService []models.ServiceRecord
	Waiting   []models.ServiceRecord
}

// Project recomputes both partitions from scratch on every call. Done and
// cancelled records are dropped. In-service cars are ordered by creation
// time. The waiting partition puts walk-ins first in arrival order, then
// appointments in scheduled order: an appointment reserves a future slot and
// does not displace a car that is already physically in the queue. Accepted
// records are still waiting; service has not begun for them.
func Project(records []models.ServiceRecord) Projection {
	var projection Projection
	var walkIns, appointments []models.ServiceRecord

	for _, record := range records {
		if !record.IsActive() {
			continue
		}
		switch {
		case record.Status == models.StatusInService:
			projection.InService = append(projection.InService, record)
		case record.IsAppointment():
			appointments = append(appointments, record)
		default:
			walkIns = append(walkIns, record)
		}
	}

	sort.SliceStable(projection.InService, func(i, j int) bool {
		return projection.InService[i].CreatedAt.Before(projection.InService[j].CreatedAt)
	})
	sort.SliceStable(walkIns, func(i, j int) bool {
		return walkIns[i].CreatedAt.Before(walkIns[j].CreatedAt)
	})
	sort.SliceStable(appointments, func(i, j int) bool {
		return appointments[i].AppointmentAt.Before(*appointments[j].AppointmentAt)
	})

	projection.Waiting = append(walkIns, appointments...)
	return projection
}
