package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/server/http/dto"
)

// MaterialHandler exposes order attachments. Files themselves live in external storage.
type MaterialHandler struct {
	facade MaterialFacade
}

func NewMaterialHandler(facade MaterialFacade) *MaterialHandler {
	return &MaterialHandler{facade: facade}
}

// Attach handles POST /api/orders/:id/materials.
func (h *MaterialHandler) Attach(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.AttachMaterialRequest
	if !bindJSON(c, &req) {
		return
	}

	material, err := h.facade.AttachMaterial(c.Request.Context(), actor, orderID, req.Name, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMaterialResponse(*material))
}

// List handles GET /api/orders/:id/materials.
func (h *MaterialHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	materials, err := h.facade.Materials(c.Request.Context(), actor, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		resp = append(resp, toMaterialResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

func toMaterialResponse(m model.Material) dto.MaterialResponse {
	return dto.MaterialResponse{
		ID:         m.ID,
		OrderID:    m.OrderID,
		UploaderID: m.UploaderID,
		Name:       m.Name,
		URL:        m.URL,
		CreatedAt:  m.CreatedAt,
	}
}
