package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/clubops/ticket-desk/internal/errs"
	"github.com/clubops/ticket-desk/internal/model"
	"github.com/clubops/ticket-desk/internal/timeutil"
)

const (
	listDefaultLimit = 100
	listMinLimit     = 1
	listMaxLimit     = 500

	// How far ahead of a deadline the sweep starts nudging.
	remindLookahead = 3 * time.Hour
)

// Notifier is the outbound side of ticket notifications. Implementations
// are best-effort: a false/nil result means "not delivered", never an error
// the lifecycle should propagate.
type Notifier interface {
	Send(t *model.Ticket, chatID int64) (*model.NotificationRef, bool)
	Edit(t *model.Ticket) bool
	Remind(t *model.Ticket) bool
}

type TicketService struct {
	db             *gorm.DB
	notifier       Notifier
	remindInterval time.Duration
}

func NewTicketService(db *gorm.DB, notifier Notifier, remindInterval time.Duration) *TicketService {
	if remindInterval <= 0 {
		remindInterval = 4 * time.Hour
	}
	return &TicketService{db: db, notifier: notifier, remindInterval: remindInterval}
}

type CreateTicket struct {
	Club        string
	PC          string
	Description string
	Status      string
	Deadline    string
	// NotifyChatID overrides the default notification chat when non-zero.
	NotifyChatID int64
}

// Create persists a new ticket and then mirrors it to Telegram. The
// notification is strictly best-effort: its failure never fails the create.
func (s *TicketService) Create(ctx context.Context, in CreateTicket) (*model.Ticket, error) {
	status := model.TicketStatus(strings.TrimSpace(in.Status))
	if !status.Valid() {
		status = model.TicketStatusNew
	}
	t := &model.Ticket{
		Club:        strings.TrimSpace(in.Club),
		PC:          strings.TrimSpace(in.PC),
		Description: normalizeDescription(in.Description),
		Status:      status,
		Deadline:    timeutil.ParseDeadline(in.Deadline),
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	if ref, ok := s.notifier.Send(t, in.NotifyChatID); ok {
		t.SetNotification(*ref)
		err := s.db.WithContext(ctx).Model(t).Updates(map[string]interface{}{
			"notify_chat_id":    ref.ChatID,
			"notify_message_id": ref.MessageID,
		}).Error
		if err != nil {
			log.Printf("service: save notification ref for ticket #%d: %v", t.ID, err)
		}
	}
	return t, nil
}

func (s *TicketService) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns tickets newest-first, optionally filtered by status. limit
// is clamped to [1,500]; pass 0 for the default page size.
func (s *TicketService) List(ctx context.Context, status string, limit int) ([]model.Ticket, error) {
	if limit == 0 {
		limit = listDefaultLimit
	}
	if limit < listMinLimit {
		limit = listMinLimit
	}
	if limit > listMaxLimit {
		limit = listMaxLimit
	}
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var items []model.Ticket
	if err := tx.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// TicketUpdate is an explicit partial update: nil means "leave unchanged".
// The deadline is tri-state — DeadlineSet with a nil Deadline clears it.
type TicketUpdate struct {
	Club        *string
	PC          *string
	Description *string
	Status      *model.TicketStatus
	Deadline    *time.Time
	DeadlineSet bool
}

func (u TicketUpdate) Empty() bool {
	return u.Club == nil && u.PC == nil && u.Description == nil && u.Status == nil && !u.DeadlineSet
}

// Update applies the present fields, refreshes updated_at and re-renders the
// ticket's Telegram card when one exists. Unknown id → ErrTicketNotFound.
func (s *TicketService) Update(ctx context.Context, id uint64, u TicketUpdate) (*model.Ticket, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := make(map[string]interface{})
	if u.Club != nil {
		changes["club"] = strings.TrimSpace(*u.Club)
	}
	if u.PC != nil {
		changes["pc"] = strings.TrimSpace(*u.PC)
	}
	if u.Description != nil {
		changes["description"] = normalizeDescription(*u.Description)
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, errs.ErrInvalidStatus
		}
		changes["status"] = *u.Status
	}
	if u.DeadlineSet {
		changes["deadline"] = u.Deadline
	}
	changes["updated_at"] = time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(t).Updates(changes).Error; err != nil {
		return nil, err
	}
	// Re-fetch: Updates with a map does not refresh the struct.
	t, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.Edit(t)
	return t, nil
}

// Transition moves a ticket to a new status. Any enum value is reachable
// from any other; only values outside the enum are rejected.
func (s *TicketService) Transition(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error) {
	if !status.Valid() {
		return nil, errs.ErrInvalidStatus
	}
	return s.Update(ctx, id, TicketUpdate{Status: &status})
}

// RemindSweep scans open tickets and re-notifies the stale ones. A ticket is
// due when its deadline has passed or falls inside the look-ahead window, or
// when it has no deadline at all; in every case re-reminding is throttled by
// the configured interval. Done and cancelled tickets are skipped. Returns
// the number of reminders sent; per-ticket failures are logged and skipped.
func (s *TicketService) RemindSweep(ctx context.Context, now time.Time) (int, error) {
	var tickets []model.Ticket
	err := s.db.WithContext(ctx).
		Where("status NOT IN ?", []model.TicketStatus{model.TicketStatusDone, model.TicketStatusCancelled}).
		Find(&tickets).Error
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range tickets {
		t := &tickets[i]
		if !s.dueForReminder(t, now) {
			continue
		}
		s.notifier.Edit(t)
		s.notifier.Remind(t)
		// UpdateColumn on purpose: the sweep stamps last_reminded_at
		// without counting as a ticket mutation.
		if err := s.db.WithContext(ctx).Model(t).UpdateColumn("last_reminded_at", now).Error; err != nil {
			log.Printf("service: stamp last_reminded_at for ticket #%d: %v", t.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *TicketService) dueForReminder(t *model.Ticket, now time.Time) bool {
	if t.LastRemindedAt != nil && now.Sub(*t.LastRemindedAt) < s.remindInterval {
		return false
	}
	if t.Deadline == nil {
		return true
	}
	return t.Deadline.Before(now) || t.Deadline.Sub(now) <= remindLookahead
}

func normalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "—"
	}
	return s
}
