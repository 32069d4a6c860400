package model

import "time"

type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusDone, TicketStatusCancelled:
		return true
	}
	return false
}

// Label is the human-readable form used both in API responses and in
// Telegram message text.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusNew:
		return "New"
	case TicketStatusInProgress:
		return "In progress"
	case TicketStatusDone:
		return "Done"
	case TicketStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

func (s TicketStatus) Emoji() string {
	switch s {
	case TicketStatusNew:
		return "🆕"
	case TicketStatusInProgress:
		return "⏳"
	case TicketStatusDone:
		return "✅"
	case TicketStatusCancelled:
		return "🚫"
	}
	return ""
}

// NotificationRef identifies the single live Telegram message mirroring a
// ticket. Both parts are set together or not at all.
type NotificationRef struct {
	ChatID    int64
	MessageID int64
}

type Ticket struct {
	ID          uint64       `gorm:"primaryKey" json:"id"`
	Club        string       `gorm:"type:varchar(120)" json:"club"`
	PC          string       `gorm:"type:varchar(120)" json:"pc"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Status      TicketStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	Deadline    *time.Time   `gorm:"column:deadline" json:"deadline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NotifyChatID    *int64 `gorm:"column:notify_chat_id" json:"notification_chat_id"`
	NotifyMessageID *int64 `gorm:"column:notify_message_id" json:"notification_message_id"`

	LastRemindedAt *time.Time `gorm:"column:last_reminded_at" json:"-"`
}

func (Ticket) TableName() string { return "tickets" }

func (t *Ticket) SetNotification(ref NotificationRef) {
	t.NotifyChatID = &ref.ChatID
	t.NotifyMessageID = &ref.MessageID
}

// Notification returns the stored message ref, or nil when the ticket has
// never been mirrored to Telegram.
func (t *Ticket) Notification() *NotificationRef {
	if t.NotifyChatID == nil || t.NotifyMessageID == nil {
		return nil
	}
	return &NotificationRef{ChatID: *t.NotifyChatID, MessageID: *t.NotifyMessageID}
}
