package handler

import (
	"net/http"
	"strconv"
	"time"

	"hrcore/internal/middleware"
	"hrcore/internal/service"
	"hrcore/pkg/pagination"
	"hrcore/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/approvals")
	approvals.Use(middleware.RequireAuth())
	{
		approvals.POST("/vacation", h.CreateVacation)
		approvals.POST("/certificate", h.CreateCertificate)
		approvals.POST("/absence", h.CreateAbsence)

		approvals.GET("", middleware.RequireHR(), h.List)
		approvals.GET("/mine", h.ListMine)
		approvals.GET("/processed", middleware.RequireHR(), h.ListProcessedByMe)
		approvals.GET("/leave-status", h.LeaveStatus)
		approvals.GET("/:id", h.GetByID)

		approvals.PUT("/:id/approve", middleware.RequireHR(), h.Approve)
		approvals.PUT("/:id/reject", middleware.RequireHR(), h.Reject)
		approvals.PATCH("/:id", h.Amend)
		approvals.DELETE("/:id", h.Cancel)
	}
}

// CreateVacation submits a vacation request for approval
// @Summary      Create vacation approval request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        request body service.CreateVacationDTO true "Vacation request"
// @Success      201 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/vacation [post]
func (h *ApprovalHandler) CreateVacation(c *gin.Context) {
	caller, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.CreateVacationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.approvalService.CreateVacation(c.Request.Context(), caller, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// CreateCertificate submits a certificate request for approval
// @Summary      Create certificate approval request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        request body service.CreateCertificateDTO true "Certificate request"
// @Success      201 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/certificate [post]
func (h *ApprovalHandler) CreateCertificate(c *gin.Context) {
	caller, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.CreateCertificateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.approvalService.CreateCertificate(c.Request.Context(), caller, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// CreateAbsence submits an absence request for approval
// @Summary      Create absence approval request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        request body service.CreateAbsenceDTO true "Absence request"
// @Success      201 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/absence [post]
func (h *ApprovalHandler) CreateAbsence(c *gin.Context) {
	caller, ok := middleware.CallerIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.CreateAbsenceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.approvalService.CreateAbsence(c.Request.Context(), caller, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// List returns approval requests, optionally filtered by status (HR only)
// @Summary      List approval requests
// @Tags         approvals
// @Produce      json
// @Param        status query string false "PENDING, APPROVED or REJECTED"
// @Param        page query int false "Page"
// @Param        limit query int false "Limit"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals [get]
func (h *ApprovalHandler) List(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)
	params := pagination.Parse(c)

	filter := service.ApprovalFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	approvals, total, err := h.approvalService.List(c.Request.Context(), caller, filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Page{
		Items: approvals,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// ListMine returns the caller's own approval requests
// @Summary      List own approval requests
// @Tags         approvals
// @Produce      json
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/mine [get]
func (h *ApprovalHandler) ListMine(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	approvals, err := h.approvalService.ListMine(c.Request.Context(), caller)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}

// ListProcessedByMe returns requests the caller decided (HR only)
// @Summary      List requests processed by the caller
// @Tags         approvals
// @Produce      json
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/processed [get]
func (h *ApprovalHandler) ListProcessedByMe(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	approvals, err := h.approvalService.ListProcessedByMe(c.Request.Context(), caller)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}

// LeaveStatus classifies a day as on-leave for the attendance service
// @Summary      Approved-leave lookup for one employee and day
// @Tags         approvals
// @Produce      json
// @Param        employee query int true "Employee number"
// @Param        date query string true "Day (YYYY-MM-DD)"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/leave-status [get]
func (h *ApprovalHandler) LeaveStatus(c *gin.Context) {
	employeeNo, err := strconv.ParseInt(c.Query("employee"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid employee number"))
		return
	}
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid date: expected YYYY-MM-DD"))
		return
	}

	leaveType, err := h.approvalService.ApprovedLeaveType(c.Request.Context(), employeeNo, day)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"on_leave":   leaveType != nil,
		"leave_type": leaveType,
	}))
}

// GetByID returns one approval request
// @Summary      Get approval request by id
// @Tags         approvals
// @Produce      json
// @Param        id path string true "Request id"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/{id} [get]
func (h *ApprovalHandler) GetByID(c *gin.Context) {
	result, err := h.approvalService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Approve approves a pending approval request (HR only)
// @Summary      Approve request
// @Tags         approvals
// @Produce      json
// @Param        id path string true "Request id"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/{id}/approve [put]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	result, err := h.approvalService.Approve(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Reject rejects a pending approval request (HR only)
// @Summary      Reject request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id path string true "Request id"
// @Param        request body service.RejectDTO false "Rejection comment"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/{id}/reject [put]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var req service.RejectDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — comment is optional
		req.Comment = ""
	}

	result, err := h.approvalService.Reject(c.Request.Context(), caller, c.Param("id"), req.Comment)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Amend patches a still-pending absence request (applicant only)
// @Summary      Amend pending absence request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id path string true "Request id"
// @Param        request body service.AmendAbsenceDTO true "Fields to change"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/{id} [patch]
func (h *ApprovalHandler) Amend(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	var patch service.AmendAbsenceDTO
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.approvalService.Amend(c.Request.Context(), caller, c.Param("id"), patch)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Cancel withdraws a still-pending request (applicant only)
// @Summary      Cancel pending request
// @Tags         approvals
// @Produce      json
// @Param        id path string true "Request id"
// @Success      200 {object} response.Response
// @Security     BearerAuth
// @Router       /api/approvals/{id} [delete]
func (h *ApprovalHandler) Cancel(c *gin.Context) {
	caller, _ := middleware.CallerIdentity(c)

	if err := h.approvalService.Cancel(c.Request.Context(), caller, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cancelled": true}))
}
