package handlers

import (
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/finance_dashboard/internal/core/ports/services"
	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/SscSPs/finance_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
)

type transactionHandler struct {
	transactionService    portssvc.TransactionSvcFacade
	reconciliationService portssvc.ReconciliationSvc
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade, rs portssvc.ReconciliationSvc) *transactionHandler {
	return &transactionHandler{transactionService: ts, reconciliationService: rs}
}

// RegisterTransactionRoutes registers the transaction list, the mutations and the ownership backfill.
func RegisterTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, rs portssvc.ReconciliationSvc) {
	h := newTransactionHandler(ts, rs)
	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listTransactions)
		txns.POST("", h.createTransaction)
		txns.POST("/claim", h.claimTransactions)
		txns.PUT("/:transactionID", h.updateTransaction)
		txns.DELETE("/:transactionID", h.deleteTransaction)
	}
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists the user's transactions and, when enabled, the unclaimed ones, newest first.
// @Tags transactions
// @Produce json
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	txns, err := h.transactionService.FetchTransactions(c.Request.Context(), session)
	if err != nil {
		writeError(c, err, http.StatusBadGateway, "Não foi possível carregar as transações.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns)}})
}

// createTransaction godoc
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.TransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	created, err := h.transactionService.CreateTransaction(c.Request.Context(), session, req.ToInput())
	if err != nil {
		writeError(c, err, http.StatusBadGateway, "Não foi possível salvar a transação.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": dto.ToTransactionResponse(*created)})
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Overwrites every editable field of the transaction.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param transaction body dto.TransactionRequest true "Transaction"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{transactionID} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	updated, err := h.transactionService.UpdateTransaction(c.Request.Context(), session, c.Param("transactionID"), req.ToInput())
	if err != nil {
		writeError(c, err, http.StatusBadGateway, "Não foi possível atualizar a transação.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToTransactionResponse(*updated)})
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Description Requires confirm=true; without it the server answers 428.
// @Tags transactions
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param confirm query bool true "Confirm the deletion"
// @Success 200 {object} dto.DeleteTransactionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 428 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	id := c.Param("transactionID")

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), session, id, confirmed); err != nil {
		writeError(c, err, http.StatusBadGateway, "Não foi possível excluir a transação.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.DeleteTransactionResponse{TransactionID: id, Deleted: true}})
}

// claimTransactions godoc
// @Summary Claim unowned transactions
// @Description Assigns every unowned transaction to the signed-in user. Runs once per session.
// @Tags transactions
// @Produce json
// @Success 200 {object} dto.ClaimResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/claim [post]
func (h *transactionHandler) claimTransactions(c *gin.Context) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.reconciliationService.ClaimUnowned(c.Request.Context(), session)
	if err != nil {
		writeError(c, err, http.StatusBadGateway, "Não foi possível vincular as transações.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.ToClaimResponse(result)})
}
