package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clubops/ticket-desk/internal/errs"
	"github.com/clubops/ticket-desk/internal/model"
	"github.com/clubops/ticket-desk/internal/service"
	"github.com/clubops/ticket-desk/internal/timeutil"
)

type TicketHandler struct {
	svc *service.TicketService
}

func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// Create accepts both JSON and form-urlencoded bodies; the frontend sends
// JSON, some club kiosks still post forms.
type createTicketRequest struct {
	Club        string `json:"club" form:"club"`
	PC          string `json:"pc" form:"pc"`
	Description string `json:"description" form:"description"`
	Status      string `json:"status" form:"status"`
	Deadline    string `json:"deadline" form:"deadline"`
	DeadlineAt  string `json:"deadline_at" form:"deadline_at"`
	TgChatID    int64  `json:"tg_chat_id" form:"tg_chat_id"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	deadline := req.DeadlineAt
	if deadline == "" {
		deadline = req.Deadline
	}
	t, err := h.svc.Create(c.Request.Context(), service.CreateTicket{
		Club:         req.Club,
		PC:           req.PC,
		Description:  req.Description,
		Status:       req.Status,
		Deadline:     deadline,
		NotifyChatID: req.TgChatID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TicketHandler) List(c *gin.Context) {
	// 0 means "default page size"; an explicit out-of-range value clamps
	// instead of erroring.
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			if parsed < 1 {
				parsed = 1
			}
			limit = parsed
		}
	}
	items, err := h.svc.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	if items == nil {
		items = []model.Ticket{}
	}
	c.JSON(http.StatusOK, items)
}

// optionalString distinguishes an absent JSON field from an explicit null.
type optionalString struct {
	Set   bool
	Null  bool
	Value string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

type updateTicketRequest struct {
	Club        *string        `json:"club"`
	PC          *string        `json:"pc"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Deadline    optionalString `json:"deadline"`
	DeadlineAt  optionalString `json:"deadline_at"`
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	u := service.TicketUpdate{
		Club:        req.Club,
		PC:          req.PC,
		Description: req.Description,
	}
	if req.Status != nil {
		status := model.TicketStatus(*req.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		u.Status = &status
	}
	deadline := req.DeadlineAt
	if !deadline.Set {
		deadline = req.Deadline
	}
	if deadline.Set {
		u.DeadlineSet = true
		if !deadline.Null {
			// Unparseable input clears the deadline rather than erroring.
			u.Deadline = timeutil.ParseDeadline(deadline.Value)
		}
	}
	if u.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, u)
	if err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		if errors.Is(err, errs.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
		return
	}
	c.JSON(http.StatusOK, t)
}
