package notify

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/clubops/ticket-desk/internal/model"
)

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func formatTicket(t *model.Ticket) string {
	head := fmt.Sprintf("%s Ticket #%d", t.Status.Emoji(), t.ID)
	body := fmt.Sprintf("🏢 Club: %s\n💻 PC: %s\n📝 %s",
		html.EscapeString(orDash(t.Club)),
		html.EscapeString(orDash(t.PC)),
		html.EscapeString(orDash(t.Description)))
	due := ""
	if t.Deadline != nil {
		due = fmt.Sprintf("\n🗓 Deadline: %s", t.Deadline.UTC().Format("2006-01-02 15:04"))
	}
	return fmt.Sprintf("%s\n%s%s\n\nStatus: %s %s", head, body, due, t.Status.Emoji(), t.Status.Label())
}

func actionData(status model.TicketStatus, id uint64) string {
	return fmt.Sprintf("act:%s:%d", status, id)
}

// keyboardFor builds the inline controls matching the ticket's state: a new
// ticket can be started, done or cancelled; one in progress can be finished
// or cancelled; a closed one can be reopened.
func keyboardFor(t *model.Ticket) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	switch t.Status {
	case model.TicketStatusNew:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start", actionData(model.TicketStatusInProgress, t.ID)),
		))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", actionData(model.TicketStatusDone, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel", actionData(model.TicketStatusCancelled, t.ID)),
		))
	case model.TicketStatusInProgress:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", actionData(model.TicketStatusDone, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel", actionData(model.TicketStatusCancelled, t.ID)),
		))
	case model.TicketStatusDone, model.TicketStatusCancelled:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Reopen", actionData(model.TicketStatusInProgress, t.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
