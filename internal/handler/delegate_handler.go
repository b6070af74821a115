package handler

import (
	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DelegateHandler struct {
	delegateService service.DelegateService
}

func NewDelegateHandler(delegateService service.DelegateService) *DelegateHandler {
	return &DelegateHandler{delegateService: delegateService}
}

func (h *DelegateHandler) RegisterRoutes(router *gin.RouterGroup) {
	delegates := router.Group("/delegates", middleware.RequireAuth())
	{
		delegates.POST("", h.CreateDelegate)
		delegates.GET("", h.ListDelegates)
		delegates.GET("/staff/:staff_id", h.ListByStaff)
		delegates.GET("/:id/history", h.History)
		delegates.PUT("/:id/status", h.DecideDelegate)

		delegates.GET("/notifications/count/:staff_id", h.NotificationCount)
		delegates.GET("/notifications/:staff_id", h.NotificationFeed)
	}
}

// CreateDelegate handles POST /delegates
// @Summary      Propose an approval delegation
// @Description  Creates a pending delegation of approval duties for a date window
// @Tags         delegates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDelegateDTO  true  "Create Delegate Payload"
// @Success      201      {object}  response.Response{data=service.DelegateResponse}
// @Failure      400      {object}  response.Response
// @Router       /delegates [post]
func (h *DelegateHandler) CreateDelegate(c *gin.Context) {
	var req service.CreateDelegateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.delegateService.CreateDelegate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// DecideDelegate handles PUT /delegates/:id/status
// @Summary      Accept or reject a pending delegation
// @Description  Acceptance schedules the reporting-line swap at the window boundaries
// @Tags         delegates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Delegate ID"
// @Param        payload  body      service.DelegateDecisionDTO  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.DelegateResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /delegates/{id}/status [put]
func (h *DelegateHandler) DecideDelegate(c *gin.Context) {
	var req service.DelegateDecisionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.delegateService.DecideDelegate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListDelegates handles GET /delegates
// @Summary      List all delegations
// @Tags         delegates
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]service.DelegateResponse}
// @Router       /delegates [get]
func (h *DelegateHandler) ListDelegates(c *gin.Context) {
	results, err := h.delegateService.ListDelegates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pageOf(results, pagination.Parse(c))))
}

// ListByStaff handles GET /delegates/staff/:staff_id
// @Summary      List delegations involving a staff member
// @Tags         delegates
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      int  true  "Staff ID"
// @Success      200       {object}  response.Response{data=[]service.DelegateResponse}
// @Router       /delegates/staff/{staff_id} [get]
func (h *DelegateHandler) ListByStaff(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	results, err := h.delegateService.ListByStaff(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// History handles GET /delegates/:id/history
// @Summary      Status history of a delegation, oldest first
// @Tags         delegates
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Delegate ID"
// @Success      200  {object}  response.Response{data=[]service.DelegateHistoryResponse}
// @Router       /delegates/{id}/history [get]
func (h *DelegateHandler) History(c *gin.Context) {
	results, err := h.delegateService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}

// NotificationCount handles GET /delegates/notifications/count/:staff_id
// @Summary      Count unseen delegation notifications for a staff member
// @Tags         delegates
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id  path      int  true  "Staff ID"
// @Success      200       {object}  response.Response
// @Router       /delegates/notifications/count/{staff_id} [get]
func (h *DelegateHandler) NotificationCount(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	count, err := h.delegateService.CountUnseen(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"count": count}))
}

// NotificationFeed handles GET /delegates/notifications/:staff_id
// @Summary      Delegation notification feed for a staff member
// @Tags         delegates
// @Produce      json
// @Security     BearerAuth
// @Param        staff_id   path      int     true   "Staff ID"
// @Param        mark_seen  query     string  false  "Set to false to peek without marking seen"
// @Success      200        {object}  response.Response{data=[]service.DelegateResponse}
// @Router       /delegates/notifications/{staff_id} [get]
func (h *DelegateHandler) NotificationFeed(c *gin.Context) {
	staffID, err := strconv.Atoi(c.Param("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid staff id"))
		return
	}
	markSeen := c.DefaultQuery("mark_seen", "true") != "false"
	results, err := h.delegateService.NotificationFeed(c.Request.Context(), staffID, markSeen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}
