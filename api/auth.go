package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service      auth.AuthUseCase
	cookieSecure bool
	now          func() time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(service auth.AuthUseCase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: service, cookieSecure: cookieSecure, now: time.Now}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
	router.GET("/session-info", h.sessionInfo)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	maxAge := int(result.ExpiresAt.Sub(h.now()) / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, result.Token, maxAge, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), tokenFromRequest(c)); err != nil {
		writeError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) sessionInfo(c *gin.Context) {
	info, err := h.service.SessionInfo(c.Request.Context(), tokenFromRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
