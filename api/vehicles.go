package api

import (
	"net/http"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/vehicles"
	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	service vehicles.VehicleUseCase
}

func NewVehicleHandler(service vehicles.VehicleUseCase) *VehicleHandler {
	return &VehicleHandler{service: service}
}

func (h *VehicleHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:plate", h.get)
	router.PUT("/:plate", h.update)
	router.DELETE("/:plate", h.delete)
}

func (h *VehicleHandler) list(c *gin.Context) {
	filter := domain.VehicleFilter{
		Category: domain.VehicleCategory(c.Query("category")),
		Search:   c.Query("search"),
	}
	list, err := h.service.ListVehicles(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VehicleHandler) get(c *gin.Context) {
	vehicle, err := h.service.GetVehicle(c.Request.Context(), c.Param("plate"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) create(c *gin.Context) {
	var req vehicles.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	vehicle, err := h.service.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) update(c *gin.Context) {
	var req vehicles.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	vehicle, err := h.service.UpdateVehicle(c.Request.Context(), c.Param("plate"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) delete(c *gin.Context) {
	if err := h.service.DeleteVehicle(c.Request.Context(), c.Param("plate")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
