package handler

import (
	"net/http"
	"strconv"

	"github.com/paytrack/paytrack-api/internal/middleware"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/service"
	"github.com/paytrack/paytrack-api/pkg/pagination"
	"github.com/paytrack/paytrack-api/pkg/response"

	"github.com/gin-gonic/gin"
)

type DailyCutoffHandler struct {
	cutoffService service.DailyCutoffService
}

func NewDailyCutoffHandler(cutoffService service.DailyCutoffService) *DailyCutoffHandler {
	return &DailyCutoffHandler{cutoffService: cutoffService}
}

func (h *DailyCutoffHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee))
	cutoffs := router.Group("/api/cutoffs")
	{
		cutoffs.GET("", staff, h.ListCutoffs)
		cutoffs.GET("/:id", staff, h.GetCutoff)
		cutoffs.POST("", staff, h.CreateCutoff)
		cutoffs.PUT("/:id", staff, h.UpdateCutoff)
		cutoffs.POST("/:id/close", staff, h.CloseCutoff)
		cutoffs.DELETE("/:id", middleware.RequireRole(string(model.RoleAdmin)), h.DeleteCutoff)
	}
}

// ListCutoffs returns paginated daily cash cutoffs with optional filters
// @Summary      List daily cutoffs
// @Tags         cutoffs
// @Security     BearerAuth
// @Produce      json
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Number of items per page (default 20)"
// @Param        responsible_id  query     string  false  "Filter by responsible user"
// @Param        cutoff_date     query     string  false  "Filter by exact date (YYYY-MM-DD)"
// @Param        date_from       query     string  false  "Filter from date (YYYY-MM-DD)"
// @Param        date_to         query     string  false  "Filter to date (YYYY-MM-DD)"
// @Param        closed          query     bool    false  "Filter by closed state"
// @Success      200  {object}  response.Response{data=[]service.CutoffResponse}
// @Router       /api/cutoffs [get]
func (h *DailyCutoffHandler) ListCutoffs(c *gin.Context) {
	p := pagination.Parse(c)
	q := service.ListCutoffsQuery{
		ResponsibleID: c.Query("responsible_id"),
		CutoffDate:    c.Query("cutoff_date"),
		DateFrom:      c.Query("date_from"),
		DateTo:        c.Query("date_to"),
		Page:          p.Page,
		Limit:         p.Limit,
	}
	if raw := c.Query("closed"); raw != "" {
		closed, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "closed must be a boolean")
			return
		}
		q.Closed = &closed
	}

	cutoffs, total, err := h.cutoffService.ListCutoffs(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, cutoffs, p.Page, p.Limit, total))
}

// GetCutoff returns a single daily cutoff
// @Summary      Get daily cutoff
// @Tags         cutoffs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cutoff ID"
// @Success      200  {object}  response.Response{data=service.CutoffResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/cutoffs/{id} [get]
func (h *DailyCutoffHandler) GetCutoff(c *gin.Context) {
	cutoff, err := h.cutoffService.GetCutoff(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cutoff))
}

// CreateCutoff opens a daily cash cutoff
// @Summary      Create daily cutoff
// @Tags         cutoffs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCutoffRequest  true  "Cutoff payload"
// @Success      201      {object}  response.Response{data=service.CutoffResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/cutoffs [post]
func (h *DailyCutoffHandler) CreateCutoff(c *gin.Context) {
	var req service.CreateCutoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	cutoff, err := h.cutoffService.CreateCutoff(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cutoff))
}

// UpdateCutoff edits an open daily cutoff
// @Summary      Update daily cutoff
// @Tags         cutoffs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Cutoff ID"
// @Param        payload  body      service.UpdateCutoffRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.CutoffResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/cutoffs/{id} [put]
func (h *DailyCutoffHandler) UpdateCutoff(c *gin.Context) {
	var req service.UpdateCutoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	cutoff, err := h.cutoffService.UpdateCutoff(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cutoff))
}

// CloseCutoff finalizes a daily cutoff
// @Summary      Close daily cutoff
// @Tags         cutoffs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cutoff ID"
// @Success      200  {object}  response.Response{data=service.CutoffResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/cutoffs/{id}/close [post]
func (h *DailyCutoffHandler) CloseCutoff(c *gin.Context) {
	cutoff, err := h.cutoffService.CloseCutoff(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cutoff))
}

// DeleteCutoff soft deletes an open daily cutoff
// @Summary      Delete daily cutoff
// @Tags         cutoffs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cutoff ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/cutoffs/{id} [delete]
func (h *DailyCutoffHandler) DeleteCutoff(c *gin.Context) {
	if err := h.cutoffService.DeleteCutoff(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
