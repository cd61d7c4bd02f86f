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

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee))
	admin := middleware.RequireRole(string(model.RoleAdmin))
	expenses := router.Group("/api/expenses")
	{
		expenses.GET("", staff, h.ListExpenses)
		expenses.GET("/summary", staff, h.GetSummary)
		expenses.GET("/:id", staff, h.GetExpense)
		expenses.POST("", staff, h.CreateExpense)
		expenses.PUT("/:id", staff, h.UpdateExpense)
		expenses.POST("/:id/approve", admin, h.ApproveExpense)
		expenses.POST("/:id/reject", admin, h.RejectExpense)
		expenses.POST("/:id/pay", admin, h.PayExpense)
		expenses.DELETE("/:id", admin, h.DeleteExpense)
	}
}

// ListExpenses returns paginated expenses with optional filters
// @Summary      List expenses
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Param        status          query     string  false  "Filter by status"
// @Param        category        query     string  false  "Filter by category"
// @Param        supplier_id     query     string  false  "Filter by supplier"
// @Param        responsible_id  query     string  false  "Filter by responsible user"
// @Param        search          query     string  false  "Search by description or invoice number"
// @Success      200  {object}  response.Response{data=[]service.ExpenseResponse}
// @Router       /api/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	p := pagination.Parse(c)
	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), service.ListExpensesQuery{
		Status:        c.Query("status"),
		Category:      c.Query("category"),
		SupplierID:    c.Query("supplier_id"),
		ResponsibleID: c.Query("responsible_id"),
		Search:        c.Query("search"),
		Page:          p.Page,
		Limit:         p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, expenses, p.Page, p.Limit, total))
}

// GetSummary returns expense totals per status plus paid totals by category
// @Summary      Expense summary
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ExpenseSummaryResponse}
// @Router       /api/expenses/summary [get]
func (h *ExpenseHandler) GetSummary(c *gin.Context) {
	summary, err := h.expenseService.GetExpenseSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetExpense returns a single expense
// @Summary      Get expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// CreateExpense registers a pending expense
// @Summary      Create expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateExpenseRequest  true  "Expense payload"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// UpdateExpense edits a pending or rejected expense
// @Summary      Update expense
// @Tags         expenses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Expense ID"
// @Param        payload  body      service.UpdateExpenseRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// ApproveExpense approves a pending expense
// @Summary      Approve expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/expenses/{id}/approve [post]
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	expense, err := h.expenseService.ApproveExpense(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// RejectExpense rejects a pending or approved expense
// @Summary      Reject expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/expenses/{id}/reject [post]
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	expense, err := h.expenseService.RejectExpense(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// PayExpense disburses an approved expense
// @Summary      Pay expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/expenses/{id}/pay [post]
func (h *ExpenseHandler) PayExpense(c *gin.Context) {
	expense, err := h.expenseService.PayExpense(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// DeleteExpense soft deletes a pending or rejected expense
// @Summary      Delete expense
// @Tags         expenses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
