package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/feria-api/internal/middleware"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/services"
)

type SettlementHandler struct {
	settlementService *services.SettlementService
}

func NewSettlementHandler(settlementService *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

type recordPaymentRequest struct {
	AmountCents *int64 `json:"amount_cents"`
}

type rescheduleRequest struct {
	DueDate string `json:"due_date"`
}

// @Summary Record Payment
// @Description Apply a payment to an installment and record it in the audit trail
// @Tags Settlement
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param payment body recordPaymentRequest true "Amount in cents"
// @Success 200 {object} services.PaymentActionResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/payments [post]
func (h *SettlementHandler) RecordPayment(c *gin.Context) {
	installmentID, ok := parseID(c, "installment_id")
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido")
		return
	}
	if req.AmountCents == nil {
		badRequest(c, "amount_cents es requerido")
		return
	}

	result, err := h.settlementService.RecordPayment(c.Request.Context(), installmentID, *req.AmountCents, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Reschedule Installment
// @Description Move the due date of an installment
// @Tags Settlement
// @Accept json
// @Produce json
// @Param installment_id path int true "Installment ID"
// @Param schedule body rescheduleRequest true "New due date (YYYY-MM-DD)"
// @Success 200 {object} services.PaymentActionResult
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /installments/{installment_id}/due_date [patch]
func (h *SettlementHandler) Reschedule(c *gin.Context) {
	installmentID, ok := parseID(c, "installment_id")
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := BindNestedOrFlat(c, "installment", &req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido")
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(models.DateLayout, req.DueDate)
		if err != nil {
			badRequest(c, "due_date debe tener el formato YYYY-MM-DD")
			return
		}
		dueDate = parsed
	}

	result, err := h.settlementService.Reschedule(c.Request.Context(), installmentID, dueDate, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
