// Package notify mirrors ticket state into Telegram: one live message per
// ticket, edited in place as the ticket moves through its lifecycle.
// Every call is best-effort — failures are logged and swallowed, and an
// unconfigured client is a no-op — so the API never fails because of
// Telegram.
package notify

import (
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/clubops/ticket-desk/internal/model"
)

type Client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient builds the Telegram client. The BotAPI struct is assembled
// directly instead of via tgbotapi.NewBotAPI, which would call getMe and
// make startup depend on Telegram being reachable. Empty token disables the
// client entirely.
func NewClient(token string, chatID int64) *Client {
	if token == "" {
		return &Client{}
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(tgbotapi.APIEndpoint)
	return &Client{bot: bot, chatID: chatID}
}

func (c *Client) Enabled() bool { return c.bot != nil }

// Send posts a new ticket card. chatID overrides the configured default
// chat when non-zero. Returns the message ref on success.
func (c *Client) Send(t *model.Ticket, chatID int64) (*model.NotificationRef, bool) {
	if c.bot == nil {
		return nil, false
	}
	if chatID == 0 {
		chatID = c.chatID
	}
	if chatID == 0 {
		return nil, false
	}
	msg := tgbotapi.NewMessage(chatID, formatTicket(t))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboardFor(t)
	sent, err := c.bot.Send(msg)
	if err != nil {
		log.Printf("notify: send ticket #%d: %v", t.ID, err)
		return nil, false
	}
	return &model.NotificationRef{ChatID: sent.Chat.ID, MessageID: int64(sent.MessageID)}, true
}

// Edit re-renders the ticket's card in place. No-op when the ticket has no
// stored message ref.
func (c *Client) Edit(t *model.Ticket) bool {
	if c.bot == nil {
		return false
	}
	ref := t.Notification()
	if ref == nil {
		return false
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, int(ref.MessageID), formatTicket(t), keyboardFor(t))
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := c.bot.Send(edit); err != nil {
		log.Printf("notify: edit ticket #%d: %v", t.ID, err)
		return false
	}
	return true
}

// Remind sends a fresh reminder message, separate from the ticket's card so
// the chat gets a new notification ping.
func (c *Client) Remind(t *model.Ticket) bool {
	if c.bot == nil {
		return false
	}
	chatID := c.chatID
	if ref := t.Notification(); ref != nil {
		chatID = ref.ChatID
	}
	if chatID == 0 {
		return false
	}
	text := fmt.Sprintf("⏰ Reminder: ticket #%d is still %s %s", t.ID, t.Status.Emoji(), t.Status.Label())
	if t.Deadline != nil {
		text += fmt.Sprintf("\n🗓 Deadline: %s", t.Deadline.UTC().Format("2006-01-02 15:04"))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.bot.Send(msg); err != nil {
		log.Printf("notify: remind ticket #%d: %v", t.ID, err)
		return false
	}
	return true
}

// AnswerCallback clears the button spinner and flashes text at the user.
func (c *Client) AnswerCallback(callbackID, text string) {
	if c.bot == nil || callbackID == "" {
		return
	}
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("notify: answer callback: %v", err)
	}
}

func (c *Client) SendText(chatID int64, text string) {
	if c.bot == nil || chatID == 0 {
		return
	}
	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("notify: send text to %d: %v", chatID, err)
	}
}
