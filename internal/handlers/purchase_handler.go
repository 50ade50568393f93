package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/feria-api/internal/middleware"
	"github.com/sjperalta/feria-api/internal/models"
	"github.com/sjperalta/feria-api/internal/services"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
	reportService   *services.ReportService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService, reportService *services.ReportService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService, reportService: reportService}
}

type installmentPlanRequest struct {
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
}

type registerPurchaseRequest struct {
	ExhibitorID  uint                     `json:"exhibitor_id"`
	FairID       uint                     `json:"fair_id"`
	TotalCents   int64                    `json:"total_cents"`
	Installments []installmentPlanRequest `json:"installments"`
}

// @Summary Register Purchase
// @Description Register an exhibitor purchase together with its installment plan
// @Tags Purchases
// @Accept json
// @Produce json
// @Param purchase body registerPurchaseRequest true "Purchase and plan"
// @Success 201 {object} models.PurchaseResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req registerPurchaseRequest
	if err := BindNestedOrFlat(c, "purchase", &req); err != nil {
		badRequest(c, "Cuerpo de la solicitud inválido")
		return
	}

	input := services.RegisterPurchaseInput{
		ExhibitorID:  req.ExhibitorID,
		FairID:       req.FairID,
		TotalCents:   req.TotalCents,
		Installments: make([]services.InstallmentPlanItem, 0, len(req.Installments)),
	}
	for i, item := range req.Installments {
		due, err := time.Parse(models.DateLayout, item.DueDate)
		if err != nil {
			badRequest(c, fmt.Sprintf("cuota #%d: due_date debe tener el formato YYYY-MM-DD", i+1))
			return
		}
		input.Installments = append(input.Installments, services.InstallmentPlanItem{
			AmountCents: item.AmountCents,
			DueDate:     due,
		})
	}

	purchase, err := h.purchaseService.Register(c.Request.Context(), input, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase.ToResponse(time.Now()))
}

// @Summary Get Purchase
// @Description Get a purchase with its installments and current display status
// @Tags Purchases
// @Produce json
// @Param purchase_id path int true "Purchase ID"
// @Success 200 {object} models.PurchaseResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /purchases/{purchase_id} [get]
func (h *PurchaseHandler) Show(c *gin.Context) {
	purchaseID, ok := parseID(c, "purchase_id")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.Get(c.Request.Context(), purchaseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase.ToResponse(time.Now()))
}

// @Summary Purchase Statement
// @Description Download the account statement of a purchase as PDF
// @Tags Purchases
// @Produce application/pdf
// @Param purchase_id path int true "Purchase ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /purchases/{purchase_id}/statement [get]
func (h *PurchaseHandler) Statement(c *gin.Context) {
	purchaseID, ok := parseID(c, "purchase_id")
	if !ok {
		return
	}

	buf, err := h.reportService.PurchaseStatementPDF(c.Request.Context(), purchaseID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=estado_compra_%d.pdf", purchaseID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
