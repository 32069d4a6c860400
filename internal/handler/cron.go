package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clubops/ticket-desk/internal/service"
)

const cronSecretHeader = "X-Cron-Secret"

type CronHandler struct {
	svc    *service.TicketService
	secret string
}

func NewCronHandler(svc *service.TicketService, secret string) *CronHandler {
	return &CronHandler{svc: svc, secret: secret}
}

// Remind runs one reminder sweep. Internal errors are logged, not surfaced:
// the cron caller only needs an acknowledgment, not a retry trigger.
func (h *CronHandler) Remind(c *gin.Context) {
	if h.secret != "" {
		got := c.Query("secret")
		if got == "" {
			got = c.GetHeader(cronSecretHeader)
		}
		if got != h.secret {
			c.JSON(http.StatusForbidden, gin.H{"error": "bad secret"})
			return
		}
	}
	sent, err := h.svc.RemindSweep(c.Request.Context(), time.Now().UTC())
	if err != nil {
		log.Printf("cron: remind sweep: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"reminders_sent": sent})
}
