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

type CollectionRouteHandler struct {
	routeService service.CollectionRouteService
}

func NewCollectionRouteHandler(routeService service.CollectionRouteService) *CollectionRouteHandler {
	return &CollectionRouteHandler{routeService: routeService}
}

func (h *CollectionRouteHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(string(model.RoleAdmin), string(model.RoleEmployee))
	routes := router.Group("/api/collection-routes")
	{
		routes.GET("", staff, h.ListRoutes)
		routes.GET("/:id", staff, h.GetRoute)
		routes.POST("", staff, h.CreateRoute)
		routes.PUT("/:id", staff, h.UpdateRoute)
		routes.DELETE("/:id", middleware.RequireRole(string(model.RoleAdmin)), h.DeleteRoute)
	}
}

// ListRoutes returns paginated collection routes with optional filters
// @Summary      List collection routes
// @Tags         collection-routes
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        status       query     string  false  "Filter by status"
// @Param        priority     query     string  false  "Filter by priority"
// @Param        employee_id  query     string  false  "Filter by employee"
// @Param        loan_id      query     string  false  "Filter by loan"
// @Success      200  {object}  response.Response{data=[]service.RouteResponse}
// @Router       /api/collection-routes [get]
func (h *CollectionRouteHandler) ListRoutes(c *gin.Context) {
	p := pagination.Parse(c)
	routes, total, err := h.routeService.ListRoutes(c.Request.Context(), service.ListRoutesQuery{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		EmployeeID: c.Query("employee_id"),
		LoanID:     c.Query("loan_id"),
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, routes, p.Page, p.Limit, total))
}

// GetRoute returns a single collection route
// @Summary      Get collection route
// @Tags         collection-routes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Route ID"
// @Success      200  {object}  response.Response{data=service.RouteResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/collection-routes/{id} [get]
func (h *CollectionRouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeService.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, route))
}

// CreateRoute assigns an employee to collect on a loan
// @Summary      Create collection route
// @Tags         collection-routes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRouteRequest  true  "Route payload"
// @Success      201      {object}  response.Response{data=service.RouteResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/collection-routes [post]
func (h *CollectionRouteHandler) CreateRoute(c *gin.Context) {
	var req service.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	route, err := h.routeService.CreateRoute(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, route))
}

// UpdateRoute edits a collection route
// @Summary      Update collection route
// @Tags         collection-routes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Route ID"
// @Param        payload  body      service.UpdateRouteRequest  true  "Fields to update"
// @Success      200      {object}  response.Response{data=service.RouteResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/collection-routes/{id} [put]
func (h *CollectionRouteHandler) UpdateRoute(c *gin.Context) {
	var req service.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	route, err := h.routeService.UpdateRoute(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, route))
}

// DeleteRoute soft deletes a collection route
// @Summary      Delete collection route
// @Tags         collection-routes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Route ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/collection-routes/{id} [delete]
func (h *CollectionRouteHandler) DeleteRoute(c *gin.Context) {
	if err := h.routeService.DeleteRoute(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
