package queue

import (
	"errors"
	"time"
)

// Capacity describes how fast the shop works through its walk-in backlog.
type Capacity struct {
	Bays              int
	AvgServiceMinutes int
}

var (
	ErrInvalidCapacity = errors.New("capacity requires positive bays and service time")

	ErrTimeTooClose   = errors.New("appointment time is too close to now")
	ErrTimeTooEarly   = errors.New("appointment time is before opening")
	ErrTimeTooLate    = errors.New("appointment time is after closing")
	ErrTimeNotAligned = errors.New("appointment time is not aligned to the slot interval")
)

// LeadMinutes estimates how long until a bay frees up for a new arrival,
// given the current walk-in backlog.
func LeadMinutes(waitingWalkIns int, capacity Capacity) (int, error) {
	if capacity.Bays <= 0 || capacity.AvgServiceMinutes <= 0 {
		return 0, ErrInvalidCapacity
	}
	if waitingWalkIns <= 0 {
		return 0, nil
	}
	total := waitingWalkIns * capacity.AvgServiceMinutes
	return (total + capacity.Bays - 1) / capacity.Bays, nil
}

// AvailableSlots filters candidate slots down to those far enough in the
// future to be offered, preserving candidate order. The minimum buffer
// applies even with an empty backlog, so the customer has time to arrive.
// This is advisory capacity shaping; the store is what prevents double
// booking a slot.
func AvailableSlots(candidates []time.Time, waitingWalkIns int, capacity Capacity, now time.Time, minBuffer time.Duration) ([]time.Time, error) {
	lead, err := LeadMinutes(waitingWalkIns, capacity)
	if err != nil {
		return nil, err
	}

	offset := time.Duration(lead) * time.Minute
	if offset < minBuffer {
		offset = minBuffer
	}
	minEligible := now.Add(offset)

	var available []time.Time
	for _, slot := range candidates {
		if !slot.Before(minEligible) {
			available = append(available, slot)
		}
	}
	return available, nil
}

// WorkingDay is the bookable window of a single day.
type WorkingDay struct {
	OpenMinute  int // minutes after midnight
	CloseMinute int
	Interval    time.Duration
}

// Grid generates every candidate slot of the working day, open to close,
// stepping by the slot interval.
func (d WorkingDay) Grid(date time.Time) []time.Time {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	opensAt := dayStart.Add(time.Duration(d.OpenMinute) * time.Minute)
	closesAt := dayStart.Add(time.Duration(d.CloseMinute) * time.Minute)

	var slots []time.Time
	for slot := opensAt; slot.Before(closesAt); slot = slot.Add(d.Interval) {
		slots = append(slots, slot)
	}
	return slots
}

// ValidateAppointmentTime checks a requested appointment time against the
// minimum buffer, the working window, and slot alignment. Seconds are
// ignored.
func (d WorkingDay) ValidateAppointmentTime(at, now time.Time, minBuffer time.Duration) error {
	at = at.Truncate(time.Minute)
	now = now.Truncate(time.Minute)

	if at.Sub(now) < minBuffer {
		return ErrTimeTooClose
	}

	minuteOfDay := at.Hour()*60 + at.Minute()
	if minuteOfDay < d.OpenMinute {
		return ErrTimeTooEarly
	}
	if minuteOfDay >= d.CloseMinute {
		return ErrTimeTooLate
	}

	interval := int(d.Interval / time.Minute)
	if interval > 0 && (minuteOfDay-d.OpenMinute)%interval != 0 {
		return ErrTimeNotAligned
	}
	return nil
}
