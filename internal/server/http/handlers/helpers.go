package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/server/http/dto"
	"github.com/polkiloo/adbroker/internal/server/http/middleware"
)

var errorStatuses = []struct {
	kind   error
	code   string
	status int
}{
	{domainErrors.ErrNotFound, "not_found", http.StatusNotFound},
	{domainErrors.ErrPermissionDenied, "permission_denied", http.StatusForbidden},
	{domainErrors.ErrInvalidState, "invalid_state", http.StatusUnprocessableEntity},
	{domainErrors.ErrInsufficientFunds, "insufficient_funds", http.StatusPaymentRequired},
	{domainErrors.ErrConflict, "conflict", http.StatusConflict},
	{domainErrors.ErrInvalidInput, "invalid_input", http.StatusBadRequest},
	{domainErrors.ErrAlreadyExists, "already_exists", http.StatusConflict},
	{domainErrors.ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
}

// respondError maps a domain error to its HTTP status and writes the error body.
// Unclassified errors become 500 without leaking their text.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.kind) {
			c.AbortWithStatusJSON(e.status, dto.ErrorResponse{Error: e.code, Reason: domainErrors.Reason(err)})
			return
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal"})
}

func badRequest(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_input", Reason: reason})
}

// currentActor extracts the authenticated caller, answering 401 when it is missing.
func currentActor(c *gin.Context) (model.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}
	return actor, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "malformed request body")
		return false
	}
	return true
}
