package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/sjperalta/feria-api/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AuditHandler struct {
	auditService  *services.AuditService
	reportService *services.ReportService
}

func NewAuditHandler(auditService *services.AuditService, reportService *services.ReportService) *AuditHandler {
	return &AuditHandler{auditService: auditService, reportService: reportService}
}

func auditQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	query.Filters["action"] = c.Query("action")
	query.Filters["entity"] = c.Query("entity")
	query.Filters["entity_id"] = c.Query("entity_id")
	query.Filters["actor_id"] = c.Query("actor_id")
	return query
}

// @Summary List Audit Logs
// @Description Get a paginated list of audit entries, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param action query string false "Filter by action"
// @Param entity query string false "Filter by entity kind"
// @Param entity_id query int false "Filter by entity ID"
// @Param actor_id query int false "Filter by actor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := auditQuery(c)

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": logs,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Export Audit Logs
// @Description Download the filtered audit trail as XLSX
// @Tags Audit
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param action query string false "Filter by action"
// @Param entity query string false "Filter by entity kind"
// @Param entity_id query int false "Filter by entity ID"
// @Param actor_id query int false "Filter by actor ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /audits/export [get]
func (h *AuditHandler) Export(c *gin.Context) {
	buf, err := h.reportService.ExportAuditXLSX(c.Request.Context(), auditQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("auditoria_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
