package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/server/http/dto"
	"github.com/polkiloo/adbroker/internal/usecase"
)

const (
	defaultOpenLimit = 50
	maxOpenLimit     = 200
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), actor, usecase.PlaceOrderInput{
		Title:       req.Title,
		Description: req.Description,
		Kind:        req.Kind,
		Priority:    req.Priority,
		Amount:      req.Amount,
		Deadline:    req.Deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orders, err := h.facade.Orders(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Open handles GET /api/orders/open.
func (h *OrderHandler) Open(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	limit := defaultOpenLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxOpenLimit)
	}

	orders, err := h.facade.OpenOrders(c.Request.Context(), actor, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Stats handles GET /api/orders/stats.
func (h *OrderHandler) Stats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stats, err := h.facade.OrderStats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.StatsResponse{}
	for _, status := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusInProgress, model.OrderStatusCompleted, model.OrderStatusCancelled,
	} {
		resp[string(status)] = stats[status]
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.facade.Delete(c.Request.Context(), actor, orderID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Apply handles POST /api/orders/:id/apply.
func (h *OrderHandler) Apply(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	application, err := h.facade.Apply(c.Request.Context(), actor, orderID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toApplicationResponse(*application))
}

// Applications handles GET /api/orders/:id/applications.
func (h *OrderHandler) Applications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	applications, err := h.facade.Applications(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		resp = append(resp, toApplicationResponse(a))
	}
	c.JSON(http.StatusOK, resp)
}

// Accept handles POST /api/orders/:id/accept/:applicationId.
func (h *OrderHandler) Accept(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	applicationID, ok := uuidParam(c, "applicationId")
	if !ok {
		return
	}
	order, err := h.facade.Accept(c.Request.Context(), actor, orderID, applicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Complete handles POST /api/orders/:id/complete.
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.facade.Complete)
}

// Confirm handles POST /api/orders/:id/confirm.
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.facade.Confirm)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.facade.Cancel(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.CancelResponse{Deleted: result.Deleted, Refunded: result.Refunded}
	if !result.Deleted && result.Order != nil {
		order := toOrderResponse(*result.Order)
		resp.Order = &order
	}
	c.JSON(http.StatusOK, resp)
}

type orderTransition func(ctx context.Context, actor model.Actor, orderID uuid.UUID) (*model.Order, error)

func (h *OrderHandler) transition(c *gin.Context, fn orderTransition) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:             order.ID,
		FundingPartyID: order.FundingPartyID,
		FulfillerID:    order.FulfillerID,
		Title:          order.Title,
		Description:    order.Description,
		Kind:           string(order.Kind),
		Priority:       string(order.Priority),
		Amount:         order.Amount,
		Status:         string(order.Status),
		Deadline:       order.Deadline,
		DeliveredAt:    order.DeliveredAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}

func toApplicationResponse(a model.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:          a.ID,
		OrderID:     a.OrderID,
		CandidateID: a.CandidateID,
		Message:     a.Message,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
