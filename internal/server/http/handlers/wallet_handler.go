package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/adbroker/internal/domain/model"
	"github.com/polkiloo/adbroker/internal/server/http/dto"
)

// WalletHandler manages wallet endpoints.
type WalletHandler struct {
	facade WalletFacade
}

// NewWalletHandler constructs WalletHandler.
func NewWalletHandler(facade WalletFacade) *WalletHandler {
	return &WalletHandler{facade: facade}
}

// Summary handles GET /api/user/wallet.
func (h *WalletHandler) Summary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	wallet, err := h.facade.Wallet(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WalletResponse{UserID: wallet.UserID, Balance: wallet.Balance})
}

// Deposit handles POST /api/user/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.DepositRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.facade.Deposit(c.Request.Context(), actor, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLedgerEntryResponse(*entry))
}

// Withdraw handles POST /api/user/wallet/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.facade.Withdraw(c.Request.Context(), actor, req.Amount, req.Card)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLedgerEntryResponse(*entry))
}

// Transactions handles GET /api/user/wallet/transactions.
func (h *WalletHandler) Transactions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	entries, err := h.facade.Transactions(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toLedgerEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func toLedgerEntryResponse(e model.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:        e.ID,
		OrderID:   e.OrderID,
		Type:      string(e.Type),
		Status:    string(e.Status),
		Amount:    e.Amount,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}
