package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/clubops/ticket-desk/internal/errs"
	"github.com/clubops/ticket-desk/internal/model"
	"github.com/clubops/ticket-desk/internal/service"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const helpText = "Commands:\n" +
	"/help — this help\n" +
	"/done <id> — mark a ticket Done\n" +
	"/work <id> — take a ticket into work\n" +
	"/id — show this chat's id\n" +
	"You can also use the buttons under a ticket card."

// BotResponder is the slice of the Telegram client the webhook needs to
// reply with.
type BotResponder interface {
	AnswerCallback(callbackID, text string)
	SendText(chatID int64, text string)
}

type WebhookHandler struct {
	svc    *service.TicketService
	bot    BotResponder
	secret string
}

func NewWebhookHandler(svc *service.TicketService, bot BotResponder, secret string) *WebhookHandler {
	return &WebhookHandler{svc: svc, bot: bot, secret: secret}
}

// Handle processes one Telegram update. Apart from the secret check, every
// branch answers 200 "ok" — a non-200 here would make Telegram redeliver
// the update forever.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" && c.GetHeader(webhookSecretHeader) != h.secret {
		c.JSON(http.StatusForbidden, gin.H{"error": "bad secret"})
		return
	}
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err == nil {
		switch {
		case update.CallbackQuery != nil:
			h.handleCallback(c, update.CallbackQuery)
		case update.Message != nil:
			h.handleMessage(c, update.Message)
		}
	}
	c.String(http.StatusOK, "ok")
}

// handleCallback reacts to an inline button press. Button payloads look
// like "act:<status>:<id>".
func (h *WebhookHandler) handleCallback(c *gin.Context, cq *tgbotapi.CallbackQuery) {
	parts := strings.Split(cq.Data, ":")
	if len(parts) != 3 || parts[0] != "act" {
		h.bot.AnswerCallback(cq.ID, "Bad button data")
		return
	}
	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		h.bot.AnswerCallback(cq.ID, "Bad button data")
		return
	}
	status := model.TicketStatus(parts[1])
	_, err = h.svc.Transition(c.Request.Context(), id, status)
	switch {
	case errors.Is(err, errs.ErrTicketNotFound):
		h.bot.AnswerCallback(cq.ID, "Ticket not found")
	case errors.Is(err, errs.ErrInvalidStatus):
		h.bot.AnswerCallback(cq.ID, "Unknown action")
	case err != nil:
		h.bot.AnswerCallback(cq.ID, "Try again later")
	default:
		h.bot.AnswerCallback(cq.ID, "Status: "+status.Label())
	}
}

func (h *WebhookHandler) handleMessage(c *gin.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	fields := strings.Fields(strings.TrimSpace(msg.Text))
	if len(fields) == 0 {
		return
	}
	cmd := fields[0]
	// Group chats append the bot name: /done@club_desk_bot 12
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/start", "/help":
		h.bot.SendText(chatID, helpText)
	case "/id":
		h.bot.SendText(chatID, fmt.Sprintf("Chat id: %d", chatID))
	case "/done":
		h.commandTransition(c, chatID, fields, model.TicketStatusDone, "Usage: /done <id>")
	case "/work":
		h.commandTransition(c, chatID, fields, model.TicketStatusInProgress, "Usage: /work <id>")
	}
}

func (h *WebhookHandler) commandTransition(c *gin.Context, chatID int64, fields []string, status model.TicketStatus, usage string) {
	if len(fields) < 2 {
		h.bot.SendText(chatID, usage)
		return
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		h.bot.SendText(chatID, usage)
		return
	}
	_, err = h.svc.Transition(c.Request.Context(), id, status)
	switch {
	case errors.Is(err, errs.ErrTicketNotFound):
		h.bot.SendText(chatID, fmt.Sprintf("Ticket #%d not found", id))
	case err != nil:
		h.bot.SendText(chatID, "Try again later")
	default:
		h.bot.SendText(chatID, fmt.Sprintf("Ticket #%d — %s %s", id, status.Emoji(), status.Label()))
	}
}
