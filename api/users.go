package api

import (
	"net/http"

	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service auth.UserUseCase
}

type passwordRequest struct {
	Password string `json:"password"`
}

type roleRequest struct {
	Role string `json:"role"`
}

func NewUserHandler(service auth.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

// Register mounts user administration. Password changes are open to the
// account owner, so only that route skips the admin check.
func (h *UserHandler) Register(router *gin.RouterGroup, admin gin.HandlerFunc) {
	router.GET("", admin, h.list)
	router.POST("", admin, h.create)
	router.DELETE("/:id", admin, h.delete)
	router.PUT("/:id/password", h.changePassword)
	router.PUT("/:id/role", admin, h.changeRole)
}

func (h *UserHandler) list(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) create(c *gin.Context) {
	var req auth.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), currentClaims(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) changePassword(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), currentClaims(c), id, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *UserHandler) changeRole(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.service.ChangeRole(c.Request.Context(), currentClaims(c), id, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
