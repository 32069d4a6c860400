package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clubops/ticket-desk/internal/errs"
	"github.com/clubops/ticket-desk/internal/model"
)

type fakeNotifier struct {
	ref     *model.NotificationRef
	sends   int
	edits   int
	reminds int
}

func (f *fakeNotifier) Send(t *model.Ticket, chatID int64) (*model.NotificationRef, bool) {
	f.sends++
	if f.ref == nil {
		return nil, false
	}
	return f.ref, true
}

func (f *fakeNotifier) Edit(t *model.Ticket) bool { f.edits++; return true }

func (f *fakeNotifier) Remind(t *model.Ticket) bool { f.reminds++; return true }

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tickets.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Ticket{}))
	return db
}

func newTestService(t *testing.T) (*TicketService, *fakeNotifier) {
	t.Helper()
	fn := &fakeNotifier{}
	return NewTicketService(testDB(t), fn, 4*time.Hour), fn
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, err := svc.Create(ctx, CreateTicket{Club: " A ", PC: "1", Description: "  broken mouse "})
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "A", got.Club)
	assert.Equal(t, model.TicketStatusNew, got.Status)
	assert.Equal(t, "broken mouse", got.Description)
	assert.Nil(t, got.Deadline)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt), "updated_at must be >= created_at")
}

func TestCreateNormalizesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, err := svc.Create(ctx, CreateTicket{Description: "   ", Status: "launched", Deadline: "not a date"})
	require.NoError(t, err)
	assert.Equal(t, "—", got.Description, "blank description becomes a placeholder")
	assert.Equal(t, model.TicketStatusNew, got.Status, "unknown status is coerced to new")
	assert.Nil(t, got.Deadline, "unparseable deadline means no deadline")

	got, err = svc.Create(ctx, CreateTicket{Description: "x", Status: "done", Deadline: "2026-09-01 15:00"})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusDone, got.Status)
	require.NotNil(t, got.Deadline)
	assert.True(t, got.Deadline.Equal(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)))
}

func TestCreateStoresNotificationRef(t *testing.T) {
	svc, fn := newTestService(t)
	fn.ref = &model.NotificationRef{ChatID: -100555, MessageID: 77}
	ctx := context.Background()

	got, err := svc.Create(ctx, CreateTicket{Description: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, fn.sends)

	stored, err := svc.GetByID(ctx, got.ID)
	require.NoError(t, err)
	ref := stored.Notification()
	require.NotNil(t, ref, "both ref columns must be persisted")
	assert.Equal(t, int64(-100555), ref.ChatID)
	assert.Equal(t, int64(77), ref.MessageID)
}

func TestCreateSurvivesNotifyFailure(t *testing.T) {
	svc, fn := newTestService(t)
	ctx := context.Background()

	got, err := svc.Create(ctx, CreateTicket{Description: "x"})
	require.NoError(t, err, "notify failure must not fail the create")
	assert.Equal(t, 1, fn.sends)
	assert.Nil(t, got.Notification())
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	desc := "y"
	_, err := svc.Update(context.Background(), 999999, TicketUpdate{Description: &desc})
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)
}

func TestUpdatePartialAndDeadlineClear(t *testing.T) {
	svc, fn := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTicket{Club: "A", PC: "1", Description: "x", Deadline: "2026-09-01"})
	require.NoError(t, err)
	require.NotNil(t, created.Deadline)

	pc := "2"
	got, err := svc.Update(ctx, created.ID, TicketUpdate{PC: &pc})
	require.NoError(t, err)
	assert.Equal(t, "2", got.PC)
	assert.Equal(t, "A", got.Club, "absent fields stay unchanged")
	assert.NotNil(t, got.Deadline)

	got, err = svc.Update(ctx, created.ID, TicketUpdate{DeadlineSet: true})
	require.NoError(t, err)
	assert.Nil(t, got.Deadline, "explicit clear removes the deadline")
	assert.Equal(t, 2, fn.edits, "each update re-renders the notification")
}

func TestTransitionIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTicket{Description: "x"})
	require.NoError(t, err)

	first, err := svc.Transition(ctx, created.ID, model.TicketStatusDone)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusDone, first.Status)

	time.Sleep(10 * time.Millisecond)
	second, err := svc.Transition(ctx, created.ID, model.TicketStatusDone)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusDone, second.Status)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "repeat transition still bumps updated_at")
}

func TestTransitionValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTicket{Description: "x"})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, created.ID, model.TicketStatus("exploded"))
	assert.ErrorIs(t, err, errs.ErrInvalidStatus)

	_, err = svc.Transition(ctx, 424242, model.TicketStatusDone)
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)

	// Reopen from done is allowed; the transition table is permissive.
	_, err = svc.Transition(ctx, created.ID, model.TicketStatusDone)
	require.NoError(t, err)
	got, err := svc.Transition(ctx, created.ID, model.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusInProgress, got.Status)
}

func TestListOrderFilterAndClamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, desc := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, CreateTicket{Description: desc})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	_, err := svc.Create(ctx, CreateTicket{Description: "closed", Status: "done"})
	require.NoError(t, err)

	items, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "closed", items[0].Description, "newest first")

	items, err = svc.List(ctx, "new", 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = svc.List(ctx, "", -3)
	require.NoError(t, err)
	assert.Len(t, items, 1, "limit below minimum clamps to 1")

	items, err = svc.List(ctx, "", 10000)
	require.NoError(t, err)
	assert.Len(t, items, 4, "limit above maximum clamps to 500")
}

func TestRemindSweep(t *testing.T) {
	svc, fn := newTestService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-10 * time.Minute)
	soon := now.Add(2 * time.Hour)
	far := now.Add(48 * time.Hour)

	overdue := &model.Ticket{Description: "overdue", Status: model.TicketStatusNew, Deadline: &past}
	upcoming := &model.Ticket{Description: "upcoming", Status: model.TicketStatusInProgress, Deadline: &soon}
	distant := &model.Ticket{Description: "distant", Status: model.TicketStatusNew, Deadline: &far}
	noDeadline := &model.Ticket{Description: "no deadline", Status: model.TicketStatusNew}
	done := &model.Ticket{Description: "done", Status: model.TicketStatusDone, Deadline: &past}
	cancelled := &model.Ticket{Description: "cancelled", Status: model.TicketStatusCancelled, Deadline: &past}
	for _, tk := range []*model.Ticket{overdue, upcoming, distant, noDeadline, done, cancelled} {
		require.NoError(t, svc.db.Create(tk).Error)
	}

	sent, err := svc.RemindSweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, sent, "overdue, upcoming and no-deadline tickets are due")
	assert.Equal(t, 3, fn.reminds)
	assert.Equal(t, 3, fn.edits, "cards are re-rendered before the reminder ping")

	stamped, err := svc.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	require.NotNil(t, stamped.LastRemindedAt)
	assert.WithinDuration(t, now, *stamped.LastRemindedAt, time.Second)

	// An immediate second sweep sends nothing: the interval has not elapsed.
	sent, err = svc.RemindSweep(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, sent)

	// After the interval the same tickets become due again.
	sent, err = svc.RemindSweep(ctx, now.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
}

func TestSweepDoesNotBumpUpdatedAt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTicket{Description: "x"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.RemindSweep(ctx, time.Now().UTC())
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastRemindedAt)
	assert.True(t, got.UpdatedAt.Sub(created.UpdatedAt) < 5*time.Millisecond,
		"the sweep stamps last_reminded_at without counting as a mutation")
}
