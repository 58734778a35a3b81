package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"bayline/queue-service/internal/models"
	"bayline/queue-service/internal/queue"
	"bayline/queue-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestUpdateStatusInvalidTransitionLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	record := createWalkIn(t, ctx, st, "A123BC")

	// waiting -> done skips in_service.
	_, err := st.UpdateStatus(ctx, record.ID, models.StatusDone)
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM service_records WHERE id = $1`, record.ID).Scan(&status); err != nil {
		t.Fatalf("read back status: %v", err)
	}
	if status != models.StatusWaiting {
		t.Fatalf("status after rejected transition = %q, want waiting", status)
	}
}

func TestUpdateStatusWalksTheLifecycle(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	record := createWalkIn(t, ctx, st, "A123BC")

	for _, target := range []string{models.StatusAccepted, models.StatusInService, models.StatusDone} {
		updated, err := st.UpdateStatus(ctx, record.ID, target)
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("status = %q, want %q", updated.Status, target)
		}
	}
}

func TestCreateRecordRejectsTakenSlot(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	slot := slotAt(11, 0)
	createAppointment(t, ctx, st, "B777XY", slot)

	_, err := st.CreateRecord(ctx, store.CreateRecordInput{
		Title:         "C001AA",
		AppointmentAt: &slot,
	})
	if !errors.Is(err, store.ErrSlotTaken) {
		t.Fatalf("err = %v, want slot taken", err)
	}
}

func TestUpdateRecordSlotChecks(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	taken := slotAt(11, 0)
	free := slotAt(12, 30)
	createAppointment(t, ctx, st, "B777XY", taken)
	other := createAppointment(t, ctx, st, "C001AA", free)

	// Moving onto a held slot fails.
	_, err := st.UpdateRecord(ctx, store.UpdateRecordInput{
		ID:            other.ID,
		Title:         other.Title,
		Status:        models.StatusWaiting,
		AppointmentAt: &taken,
	})
	if !errors.Is(err, store.ErrSlotTaken) {
		t.Fatalf("err = %v, want slot taken", err)
	}

	// Keeping your own slot is not a collision.
	updated, err := st.UpdateRecord(ctx, store.UpdateRecordInput{
		ID:            other.ID,
		Title:         other.Title,
		Comment:       "rebooked tires",
		Status:        models.StatusWaiting,
		AppointmentAt: &free,
	})
	if err != nil {
		t.Fatalf("update own slot: %v", err)
	}
	if updated.Comment != "rebooked tires" {
		t.Fatalf("comment = %q", updated.Comment)
	}
}

func TestUpdateRecordStatusWalksStateMachine(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	record := createWalkIn(t, ctx, st, "A123BC")

	_, err := st.UpdateRecord(ctx, store.UpdateRecordInput{
		ID:     record.ID,
		Title:  record.Title,
		Status: models.StatusDone,
	})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM service_records WHERE id = $1`, record.ID).Scan(&status); err != nil {
		t.Fatalf("read back status: %v", err)
	}
	if status != models.StatusWaiting {
		t.Fatalf("status after rejected edit = %q, want waiting", status)
	}
}

func TestDeleteRecordMissing(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	if err := st.DeleteRecord(ctx, 424242); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCandidateSlotsExcludesHeldSlots(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	held := slotAt(11, 0)
	createAppointment(t, ctx, st, "B777XY", held)

	slots, err := st.CandidateSlots(ctx, held)
	if err != nil {
		t.Fatalf("candidate slots: %v", err)
	}
	for _, slot := range slots {
		if slot.Equal(held) {
			t.Fatalf("held slot %v still offered", held)
		}
	}
	if len(slots) == 0 {
		t.Fatal("expected the rest of the day to stay available")
	}
}

func slotAt(hour, minute int) time.Time {
	day := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

func createWalkIn(t *testing.T, ctx context.Context, st *Store, title string) models.ServiceRecord {
	t.Helper()
	record, err := st.CreateRecord(ctx, store.CreateRecordInput{Title: title})
	if err != nil {
		t.Fatalf("create walk-in: %v", err)
	}
	return record
}

func createAppointment(t *testing.T, ctx context.Context, st *Store, title string, at time.Time) models.ServiceRecord {
	t.Helper()
	record, err := st.CreateRecord(ctx, store.CreateRecordInput{Title: title, AppointmentAt: &at})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return record
}

func setupTestStore(t *testing.T, ctx context.Context) (*Store, *pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := createSchema(ctx, dsn, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := newPoolWithSchema(ctx, dsn, schema)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	st := NewStore(pool, Options{WorkingDay: queue.WorkingDay{
		OpenMinute:  9 * 60,
		CloseMinute: 19 * 60,
		Interval:    30 * time.Minute,
	}})
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		t.Fatalf("ensure schema: %v", err)
	}

	cleanup := func() {
		pool.Close()
		_ = dropSchema(context.Background(), dsn, schema)
	}
	return st, pool, cleanup
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	return err
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
	return err
}

func newPoolWithSchema(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	return pgxpool.NewWithConfig(ctx, cfg)
}
