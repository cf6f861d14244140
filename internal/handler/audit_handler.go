package handler

import (
	"net/http"

	"hrcore/internal/middleware"
	"hrcore/internal/service"
	"hrcore/pkg/pagination"
	"hrcore/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(middleware.RequireAuth(), middleware.RequireHR())
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves the paginated lifecycle history of approval requests
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)
	params := pagination.Parse(c)

	logs, total, err := h.auditService.List(c.Request.Context(), caller, params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Page{
		Items: logs,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}
