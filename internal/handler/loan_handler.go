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

type LoanHandler struct {
	loanService service.LoanService
}

func NewLoanHandler(loanService service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

func (h *LoanHandler) RegisterRoutes(router *gin.RouterGroup) {
	loans := router.Group("/api/loans")
	{
		loans.GET("", middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee)), h.ListLoans)
		loans.GET("/:id", middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee)), h.GetLoan)
		loans.POST("", middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee)), h.CreateLoan)
		loans.PUT("/:id", middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee)), h.UpdateLoan)
		loans.POST("/:id/approve", middleware.RequireRole(string(model.RoleAdmin)), h.ApproveLoan)
		loans.POST("/:id/reject", middleware.RequireRole(string(model.RoleAdmin)), h.RejectLoan)
		loans.DELETE("/:id", middleware.RequireRole(string(model.RoleAdmin)), h.DeleteLoan)
	}
}

// ListLoans returns paginated loans with optional filters
// @Summary      List loans
// @Tags         loans
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Param        status         query     string  false  "Filter by status"
// @Param        client_id      query     string  false  "Filter by client"
// @Param        authorizer_id  query     string  false  "Filter by authorizer"
// @Param        search         query     string  false  "Search by client name or national id"
// @Success      200  {object}  response.Response{data=[]service.LoanResponse}
// @Router       /api/loans [get]
func (h *LoanHandler) ListLoans(c *gin.Context) {
	p := pagination.Parse(c)
	loans, total, err := h.loanService.ListLoans(c.Request.Context(), service.ListLoansQuery{
		Status:       c.Query("status"),
		ClientID:     c.Query("client_id"),
		AuthorizerID: c.Query("authorizer_id"),
		Search:       c.Query("search"),
		Page:         p.Page,
		Limit:        p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, loans, p.Page, p.Limit, total))
}

// GetLoan returns a single loan
// @Summary      Get loan
// @Tags         loans
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Loan ID"
// @Success      200  {object}  response.Response{data=service.LoanResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	loan, err := h.loanService.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loan))
}

// CreateLoan creates a loan in pending approval
// @Summary      Create loan
// @Tags         loans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLoanRequest  true  "Loan payload"
// @Success      201      {object}  response.Response{data=service.LoanResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/loans [post]
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req service.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, loan))
}

// UpdateLoan edits a pending loan
// @Summary      Update loan
// @Tags         loans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Loan ID"
// @Param        payload  body      service.UpdateLoanRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.LoanResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/loans/{id} [put]
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	var req service.UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	loan, err := h.loanService.UpdateLoan(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loan))
}

// ApproveLoan activates a pending loan
// @Summary      Approve loan
// @Tags         loans
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Loan ID"
// @Success      200  {object}  response.Response{data=service.LoanResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/loans/{id}/approve [post]
func (h *LoanHandler) ApproveLoan(c *gin.Context) {
	loan, err := h.loanService.ApproveLoan(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loan))
}

// RejectLoan cancels a pending loan
// @Summary      Reject loan
// @Tags         loans
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Loan ID"
// @Success      200  {object}  response.Response{data=service.LoanResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/loans/{id}/reject [post]
func (h *LoanHandler) RejectLoan(c *gin.Context) {
	loan, err := h.loanService.RejectLoan(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loan))
}

// DeleteLoan soft deletes a pending or cancelled loan
// @Summary      Delete loan
// @Tags         loans
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Loan ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	if err := h.loanService.DeleteLoan(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
