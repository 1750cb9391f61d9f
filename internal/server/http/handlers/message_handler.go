package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/server/http/dto"
)

const (
	defaultMessagePageSize = 20
	maxMessagePageSize     = 100
)

// MessageHandler exposes direct messaging between users.
type MessageHandler struct {
	facade MessageFacade
}

func NewMessageHandler(facade MessageFacade) *MessageHandler {
	return &MessageHandler{facade: facade}
}

// Send handles POST /api/messages.
func (h *MessageHandler) Send(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ReceiverID == uuid.Nil {
		badRequest(c, "receiverId is required")
		return
	}

	message, err := h.facade.SendMessage(c.Request.Context(), actor, req.ReceiverID, req.Kind, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(*message))
}

// List handles GET /api/messages.
func (h *MessageHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, ok := positiveQuery(c, "page", 1, 0)
	if !ok {
		return
	}
	pageSize, ok := positiveQuery(c, "pageSize", defaultMessagePageSize, maxMessagePageSize)
	if !ok {
		return
	}
	filter := model.MessageFilter{
		Status:  model.MessageStatus(strings.ToUpper(c.Query("status"))),
		Keyword: c.Query("keyword"),
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}
	if raw := c.Query("contactId"); raw != "" {
		contactID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "contactId must be a UUID")
			return
		}
		filter.ContactID = &contactID
	}

	messages, total, err := h.facade.Messages(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessagePageResponse{
		Items:    toMessageResponses(messages),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Conversations handles GET /api/messages/conversations.
func (h *MessageHandler) Conversations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	convs, err := h.facade.Conversations(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		resp = append(resp, dto.ConversationResponse{
			ContactID:   conv.ContactID,
			LastMessage: toMessageResponse(conv.LastMessage),
			UnreadCount: conv.UnreadCount,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Thread handles GET /api/messages/conversations/:contactId.
func (h *MessageHandler) Thread(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	contactID, ok := uuidParam(c, "contactId")
	if !ok {
		return
	}
	limit, ok := positiveQuery(c, "limit", defaultMessagePageSize, maxMessagePageSize)
	if !ok {
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "before must be an RFC 3339 timestamp")
			return
		}
		before = &ts
	}

	thread, err := h.facade.Thread(c.Request.Context(), actor, contactID, limit, before)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(thread))
}

// UnreadCount handles GET /api/messages/unread-count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	count, err := h.facade.UnreadMessages(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkRead handles POST /api/messages/:id/read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	messageID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.MarkMessageRead(c.Request.Context(), actor, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/messages/:id.
func (h *MessageHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	messageID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteMessage(c.Request.Context(), actor, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// positiveQuery reads an optional positive integer, clamped to ceiling when ceiling > 0.
func positiveQuery(c *gin.Context, name string, def, ceiling int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	if ceiling > 0 && n > ceiling {
		n = ceiling
	}
	return n, true
}

func toMessageResponse(m model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Kind:       string(m.Kind),
		Content:    m.Content,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}

func toMessageResponses(messages []model.Message) []dto.MessageResponse {
	resp := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toMessageResponse(m))
	}
	return resp
}
