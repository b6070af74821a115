package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
	auditService   service.AuditService
}

// NewRequestHandler sets up the routing dependencies for WFH request endpoints
func NewRequestHandler(requestService service.RequestService, auditService service.AuditService) *RequestHandler {
	return &RequestHandler{requestService: requestService, auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The auto-reject callback is invoked by the background worker, which
	// carries no user token.
	router.PUT("/requests/auto-reject", h.AutoReject)

	requests := router.Group("/requests", middleware.RequireAuth())
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.GET("/:id/audit", h.AuditTrail)
		requests.DELETE("/:id", h.DeleteRequest)

		requests.GET("/staff/:staff_id", h.ListByStaff)
		requests.GET("/approved/:staff_id", h.ListApproved)
		requests.GET("/department/:dept", h.ListByDepartment)
		requests.GET("/date/:date", h.ListByDate)

		requests.PUT("/approve", h.action(h.requestService.Approve))
		requests.PUT("/reject", h.action(h.requestService.Reject))
		requests.PUT("/withdraw", h.action(h.requestService.Withdraw))
		requests.PUT("/cancel", h.action(h.requestService.Cancel))
		requests.PUT("/revoke", h.action(h.requestService.Revoke))
		requests.PUT("/acknowledge", h.action(h.requestService.Acknowledge))

		requests.GET("/notifications/count/:staff_id", h.NotificationCount)
		requests.GET("/notifications/:staff_id", h.NotificationFeed)
		requests.GET("/audit/staff/:staff_id", h.StaffActivity)
	}
}

// respondError maps service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// pageOf applies page/limit query params to an already-loaded list
func pageOf[T any](items []T, p pagination.Params) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// CreateRequest handles POST /requests
// @Summary      Create a WFH request
// @Description  Creates a request with one or more date entries; self-requests by a manager are approved immediately
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Create Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Router       /requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.CreateRequest(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests handles GET /requests
// @Summary      List all WFH requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	results, err := h.requestService.ListRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pageOf(results, pagination.Parse(c))))
}

// GetRequest handles GET /requests/:id
// @Summary      Get a WFH request with its entries
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// AuditTrail handles GET /requests/:id/audit
// @Summary      Get the transition history of a request, oldest first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.AuditResponse}
// @Router       /requests/{id}/audit [get]
func (h *RequestHandler) AuditTrail(c *gin.Context) {
	results, err := h.auditService.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// DeleteRequest handles DELETE /requests/:id
// @Summary      Delete a request and its entries
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	if err := h.requestService.DeleteRequest(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request deleted"}))
}

// ListByStaff handles GET /requests/staff/:staff_id
// @Summary      List requests where the staff member is requester or approver
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      int  true  "Staff ID"
// @Success      200       {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests/staff/{staff_id} [get]
func (h *RequestHandler) ListByStaff(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	results, err := h.requestService.ListByStaff(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pageOf(results, pagination.Parse(c))))
}

// ListApproved handles GET /requests/approved/:staff_id
// @Summary      List a requester's requests with only their approved entries
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      int  true  "Staff ID"
// @Success      200       {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests/approved/{staff_id} [get]
func (h *RequestHandler) ListApproved(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	results, err := h.requestService.ListApprovedByRequester(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// ListByDepartment handles GET /requests/department/:dept
// @Summary      List requests for a department
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        dept  path      string  true  "Department"
// @Success      200   {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests/department/{dept} [get]
func (h *RequestHandler) ListByDepartment(c *gin.Context) {
	results, err := h.requestService.ListByDepartment(c.Request.Context(), c.Param("dept"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pageOf(results, pagination.Parse(c))))
}

// ListByDate handles GET /requests/date/:date
// @Summary      List requests that contain an entry for the given date
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        date  path      string  true  "Entry date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests/date/{date} [get]
func (h *RequestHandler) ListByDate(c *gin.Context) {
	results, err := h.requestService.ListByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// action builds a handler for the entry-level workflow endpoints, which all
// share the same payload shape
// @Summary      Apply a workflow action to request entries
// @Description  Shared shape for approve, reject, withdraw, cancel, revoke and acknowledge
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.EntryActionRequest  true  "Entry Action Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
func (h *RequestHandler) action(fn func(ctx context.Context, req service.EntryActionRequest) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.EntryActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}

		if err := fn(c.Request.Context(), req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Request updated"}))
	}
}

// AutoReject handles PUT /requests/auto-reject, the worker callback that
// expires entries still pending past their deadline
// @Summary      Auto-reject stale pending entries
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        payload  body      service.EntryActionRequest  true  "Entry Action Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /requests/auto-reject [put]
func (h *RequestHandler) AutoReject(c *gin.Context) {
	var req service.EntryActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.requestService.AutoReject(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Stale entries rejected"}))
}

// NotificationCount handles GET /requests/notifications/count/:staff_id
// @Summary      Count unseen request notifications for a staff member
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      int  true  "Staff ID"
// @Success      200       {object}  response.Response
// @Router       /requests/notifications/count/{staff_id} [get]
func (h *RequestHandler) NotificationCount(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	count, err := h.requestService.CountUnseen(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"count": count}))
}

// NotificationFeed handles GET /requests/notifications/:staff_id. Reading the
// feed marks it seen unless mark_seen=false is passed.
// @Summary      Notification feed for a staff member
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id   path      int     true   "Staff ID"
// @Param        mark_seen  query     string  false  "Set to false to peek without marking seen"
// @Success      200        {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests/notifications/{staff_id} [get]
func (h *RequestHandler) NotificationFeed(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	markSeen := c.DefaultQuery("mark_seen", "true") != "false"
	results, err := h.requestService.NotificationFeed(c.Request.Context(), staffID, markSeen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// StaffActivity handles GET /requests/audit/staff/:staff_id, the read-only
// activity view. Unlike the notification feed it never marks anything seen.
// @Summary      Activity history involving a staff member
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      int  true  "Staff ID"
// @Success      200       {object}  response.Response{data=[]service.RequestResponse}
// @Router       /requests/audit/staff/{staff_id} [get]
func (h *RequestHandler) StaffActivity(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	results, err := h.requestService.NotificationFeed(c.Request.Context(), staffID, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}
