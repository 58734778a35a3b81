package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"bayline/queue-service/internal/models"
	"bayline/queue-service/internal/queue"
	"bayline/queue-service/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = "id, title, comment, status, created_at, appointment_at"

type Store struct {
	pool       *pgxpool.Pool
	workingDay queue.WorkingDay
}

type Options struct {
	WorkingDay queue.WorkingDay
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	return &Store{
		pool:       pool,
		workingDay: options.WorkingDay,
	}
}

// EnsureSchema creates the records table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS service_records (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			appointment_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_service_records_created_at ON service_records (created_at);
		CREATE INDEX IF NOT EXISTS idx_service_records_appointment_at ON service_records (appointment_at);
	`)
	return err
}

func (s *Store) CreateRecord(ctx context.Context, input store.CreateRecordInput) (models.ServiceRecord, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.ServiceRecord{}, store.ErrEmptyTitle
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.ServiceRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if input.AppointmentAt != nil {
		var taken bool
		taken, err = s.slotTaken(ctx, tx, *input.AppointmentAt, 0)
		if err != nil {
			return models.ServiceRecord{}, err
		}
		if taken {
			err = store.ErrSlotTaken
			return models.ServiceRecord{}, err
		}
	}

	var record models.ServiceRecord
	row := tx.QueryRow(ctx, `
		INSERT INTO service_records (title, comment, status, created_at, appointment_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+recordColumns+`
	`, title, input.Comment, models.StatusWaiting, createdAt, input.AppointmentAt)
	if record, err = scanRecord(row); err != nil {
		return models.ServiceRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.ServiceRecord{}, err
	}
	return record, nil
}

func (s *Store) GetRecord(ctx context.Context, id int64) (models.ServiceRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM service_records
		WHERE id = $1
	`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServiceRecord{}, store.ErrRecordNotFound
		}
		return models.ServiceRecord{}, err
	}
	return record, nil
}

// TodayRecords returns the full day's snapshot: everything created today
// plus appointments booked for today, cancelled and done included so the
// surfaces can filter for themselves.
func (s *Store) TodayRecords(ctx context.Context, now time.Time) ([]models.ServiceRecord, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM service_records
		WHERE (created_at >= $1 AND created_at < $2)
		   OR (appointment_at >= $1 AND appointment_at < $2)
		ORDER BY created_at ASC, id ASC
	`, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.ServiceRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, targetStatus string) (models.ServiceRecord, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.ServiceRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var currentStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM service_records WHERE id = $1 FOR UPDATE`, id).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrRecordNotFound
		}
		return models.ServiceRecord{}, err
	}

	if !store.CanTransition(currentStatus, targetStatus) {
		err = store.ErrInvalidTransition
		return models.ServiceRecord{}, err
	}

	var record models.ServiceRecord
	row := tx.QueryRow(ctx, `
		UPDATE service_records SET status = $1 WHERE id = $2
		RETURNING `+recordColumns+`
	`, targetStatus, id)
	if record, err = scanRecord(row); err != nil {
		return models.ServiceRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.ServiceRecord{}, err
	}
	return record, nil
}

func (s *Store) UpdateRecord(ctx context.Context, input store.UpdateRecordInput) (models.ServiceRecord, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.ServiceRecord{}, store.ErrEmptyTitle
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.ServiceRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var currentStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM service_records WHERE id = $1 FOR UPDATE`, input.ID).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrRecordNotFound
		}
		return models.ServiceRecord{}, err
	}

	// A status change through the edit path still walks the state machine.
	if input.Status != currentStatus && !store.CanTransition(currentStatus, input.Status) {
		err = store.ErrInvalidTransition
		return models.ServiceRecord{}, err
	}

	if input.AppointmentAt != nil {
		var taken bool
		taken, err = s.slotTaken(ctx, tx, *input.AppointmentAt, input.ID)
		if err != nil {
			return models.ServiceRecord{}, err
		}
		if taken {
			err = store.ErrSlotTaken
			return models.ServiceRecord{}, err
		}
	}

	var record models.ServiceRecord
	row := tx.QueryRow(ctx, `
		UPDATE service_records
		SET title = $1, comment = $2, status = $3, appointment_at = $4
		WHERE id = $5
		RETURNING `+recordColumns+`
	`, title, input.Comment, input.Status, input.AppointmentAt, input.ID)
	if record, err = scanRecord(row); err != nil {
		return models.ServiceRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.ServiceRecord{}, err
	}
	return record, nil
}

func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM service_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

// CandidateSlots generates the working-day grid for the date and drops the
// slots already held by an active appointment.
func (s *Store) CandidateSlots(ctx context.Context, date time.Time) ([]time.Time, error) {
	grid := s.workingDay.Grid(date)
	if len(grid) == 0 {
		return nil, nil
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx, `
		SELECT appointment_at
		FROM service_records
		WHERE appointment_at >= $1 AND appointment_at < $2
		  AND status IN ($3, $4)
	`, startOfDay, endOfDay, models.StatusWaiting, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[time.Time]bool)
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, err
		}
		taken[at.Truncate(time.Minute)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var free []time.Time
	for _, slot := range grid {
		if !taken[slot.Truncate(time.Minute)] {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (s *Store) CountWaitingWalkIns(ctx context.Context, now time.Time) (int, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM service_records
		WHERE appointment_at IS NULL
		  AND status IN ($1, $2)
		  AND created_at >= $3 AND created_at < $4
	`, models.StatusWaiting, models.StatusAccepted, startOfDay, endOfDay).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) slotTaken(ctx context.Context, tx pgx.Tx, at time.Time, excludeID int64) (bool, error) {
	slotEnd := at.Add(s.workingDay.Interval)

	var count int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM service_records
		WHERE appointment_at >= $1 AND appointment_at < $2
		  AND status IN ($3, $4)
		  AND id != $5
	`, at, slotEnd, models.StatusWaiting, models.StatusAccepted, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.ServiceRecord, error) {
	var record models.ServiceRecord
	var commentNull sql.NullString
	var appointmentNull sql.NullTime
	if err := row.Scan(&record.ID, &record.Title, &commentNull, &record.Status, &record.CreatedAt, &appointmentNull); err != nil {
		return models.ServiceRecord{}, err
	}
	if commentNull.Valid {
		record.Comment = commentNull.String
	}
	if appointmentNull.Valid {
		appointment := appointmentNull.Time
		record.AppointmentAt = &appointment
	}
	return record, nil
}
