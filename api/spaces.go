package api

import (
	"net/http"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/spaces"
	"github.com/gin-gonic/gin"
)

type SpaceHandler struct {
	service spaces.SpaceUseCase
}

type setStateRequest struct {
	State string `json:"state"`
}

func NewSpaceHandler(service spaces.SpaceUseCase) *SpaceHandler {
	return &SpaceHandler{service: service}
}

// Register mounts read routes for every user; mutations need an admin.
func (h *SpaceHandler) Register(router *gin.RouterGroup, admin gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/stats", h.stats)
	router.GET("/:id", h.get)
	router.POST("", admin, h.create)
	router.PUT("/:id", admin, h.update)
	router.PATCH("/:id/state", admin, h.setState)
	router.DELETE("/:id", admin, h.delete)
}

func (h *SpaceHandler) list(c *gin.Context) {
	filter := domain.SpaceFilter{
		State:   domain.SpaceState(c.Query("state")),
		Type:    domain.VehicleType(c.Query("type")),
		Section: c.Query("section"),
	}
	list, err := h.service.ListSpaces(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SpaceHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *SpaceHandler) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	space, err := h.service.GetSpace(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

func (h *SpaceHandler) create(c *gin.Context) {
	var req spaces.CreateSpaceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	space, err := h.service.CreateSpace(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, space)
}

func (h *SpaceHandler) update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req spaces.UpdateSpaceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	space, err := h.service.UpdateSpace(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

func (h *SpaceHandler) setState(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req setStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	space, err := h.service.SetState(c.Request.Context(), id, domain.SpaceState(req.State))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, space)
}

func (h *SpaceHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSpace(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
