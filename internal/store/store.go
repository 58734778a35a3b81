package store

import (
	"context"
	"time"

	"bayline/queue-service/internal/models"
)

type CreateRecordInput struct {
	Title         string
	Comment       string
	AppointmentAt *time.Time
	CreatedAt     time.Time
}

type UpdateRecordInput struct {
	ID            int64
	Title         string
	Comment       string
	Status        string
	AppointmentAt *time.Time
}

// RecordStore is the record store consumed by the HTTP surface. Every
// mutation returns the store's copy of the record; callers rebuild their
// view from a fresh snapshot rather than trusting local state.
type RecordStore interface {
	CreateRecord(ctx context.Context, input CreateRecordInput) (models.ServiceRecord, error)
	GetRecord(ctx context.Context, id int64) (models.ServiceRecord, error)
	TodayRecords(ctx context.Context, now time.Time) ([]models.ServiceRecord, error)
	UpdateStatus(ctx context.Context, id int64, targetStatus string) (models.ServiceRecord, error)
	UpdateRecord(ctx context.Context, input UpdateRecordInput) (models.ServiceRecord, error)
	DeleteRecord(ctx context.Context, id int64) error
	CandidateSlots(ctx context.Context, date time.Time) ([]time.Time, error)
	CountWaitingWalkIns(ctx context.Context, now time.Time) (int, error)
}
