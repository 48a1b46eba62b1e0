package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	service sessions.SessionUseCase
}

func NewSessionHandler(service sessions.SessionUseCase) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.GET("/active", h.listActive)
	router.GET("/:id", h.get)
	router.POST("/enter", h.enter)
	router.POST("/:id/exit", h.exit)
}

func (h *SessionHandler) listActive(c *gin.Context) {
	filter := domain.ActiveFilter{
		VehicleType:    domain.VehicleType(c.Query("vehicle_type")),
		PlateSubstring: c.Query("plate"),
	}
	if v := c.Query("min_hours"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil {
			badRequest(c, "invalid min_hours")
			return
		}
		filter.MinElapsedHours = hours
	}
	if v := c.Query("alert"); v != "" {
		alert, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "invalid alert")
			return
		}
		filter.Alert = alert
	}

	active, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, active)
}

func (h *SessionHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) enter(c *gin.Context) {
	var req sessions.EnterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.service.Enter(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) exit(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req sessions.ExitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	receipt, err := h.service.Exit(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}
