package api

import (
	"net/http"

	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/Domenick1991/parkinglot/internal/service/reports"
	"github.com/Domenick1991/parkinglot/internal/service/sessions"
	"github.com/Domenick1991/parkinglot/internal/service/spaces"
	"github.com/Domenick1991/parkinglot/internal/service/vehicles"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth         auth.AuthUseCase
	Users        auth.UserUseCase
	Spaces       spaces.SpaceUseCase
	Sessions     sessions.SessionUseCase
	Vehicles     vehicles.VehicleUseCase
	Reports      reports.ReportUseCase
	CookieSecure bool
}

// NewRouter builds the gin engine: /auth and /healthz are public, every /api
// route requires a token.
func NewRouter(s Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	NewAuthHandler(s.Auth, s.CookieSecure).Register(router.Group("/auth"))

	apiGroup := router.Group("/api", RequireAuth(s.Auth))
	admin := RequireAdmin()

	NewSpaceHandler(s.Spaces).Register(apiGroup.Group("/spaces"), admin)
	NewSessionHandler(s.Sessions).Register(apiGroup.Group("/sessions"))
	NewVehicleHandler(s.Vehicles).Register(apiGroup.Group("/vehicles"))

	reportHandler := NewReportHandler(s.Reports)
	reportHandler.RegisterTransactions(apiGroup.Group("/transactions"))
	reportHandler.Register(apiGroup.Group("/reports"))

	NewUserHandler(s.Users).Register(apiGroup.Group("/users"), admin)

	return router
}
