package handler

import (
	"net/http"

	"github.com/paytrack/paytrack-api/internal/middleware"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/service"
	"github.com/paytrack/paytrack-api/pkg/pagination"
	"github.com/paytrack/paytrack-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee))
	payments := router.Group("/api/payments")
	{
		payments.GET("", staff, h.ListPayments)
		payments.GET("/summary", staff, h.GetSummary)
		payments.GET("/:id", staff, h.GetPayment)
		payments.POST("", staff, h.CreatePayment)
		payments.PUT("/:id", staff, h.UpdatePayment)
		payments.POST("/:id/process", staff, h.ProcessPayment)
		payments.POST("/:id/cancel", staff, h.CancelPayment)
		payments.POST("/:id/overdue", staff, h.MarkOverdue)
		payments.DELETE("/:id", middleware.RequireRole(string(model.RoleAdmin)), h.DeletePayment)
	}
}

// ListPayments returns paginated payments with optional filters
// @Summary      List payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Param        status          query     string  false  "Filter by status"
// @Param        payment_method  query     string  false  "Filter by method"
// @Param        client_id       query     string  false  "Filter by client"
// @Param        responsible_id  query     string  false  "Filter by responsible user"
// @Param        search          query     string  false  "Search by client name or reference"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Router       /api/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	p := pagination.Parse(c)
	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), service.ListPaymentsQuery{
		Status:        c.Query("status"),
		Method:        c.Query("payment_method"),
		ClientID:      c.Query("client_id"),
		ResponsibleID: c.Query("responsible_id"),
		Search:        c.Query("search"),
		Page:          p.Page,
		Limit:         p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, payments, p.Page, p.Limit, total))
}

// GetSummary returns payment totals and counts grouped by status
// @Summary      Payment summary
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.PaymentSummaryResponse}
// @Router       /api/payments/summary [get]
func (h *PaymentHandler) GetSummary(c *gin.Context) {
	summary, err := h.paymentService.GetPaymentSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetPayment returns a single payment
// @Summary      Get payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// CreatePayment registers a pending payment
// @Summary      Create payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePaymentRequest  true  "Payment payload"
// @Success      201      {object}  response.Response{data=service.PaymentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// UpdatePayment edits an unpaid payment
// @Summary      Update payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Payment ID"
// @Param        payload  body      service.UpdatePaymentRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.PaymentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// ProcessPayment marks a payment as paid on the given date
// @Summary      Process payment
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Payment ID"
// @Param        payload  body      service.ProcessPaymentRequest  true  "Payment date"
// @Success      200      {object}  response.Response{data=service.PaymentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/payments/{id}/process [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req service.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	payment, err := h.paymentService.ProcessPayment(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// CancelPayment cancels an unpaid payment
// @Summary      Cancel payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/payments/{id}/cancel [post]
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	payment, err := h.paymentService.CancelPayment(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// MarkOverdue flags an unpaid payment as overdue
// @Summary      Mark payment overdue
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response{data=service.PaymentResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/payments/{id}/overdue [post]
func (h *PaymentHandler) MarkOverdue(c *gin.Context) {
	payment, err := h.paymentService.MarkPaymentOverdue(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// DeletePayment soft deletes an unpaid payment
// @Summary      Delete payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.paymentService.DeletePayment(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
