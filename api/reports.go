package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/parkinglot/internal/service/reports"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service reports.ReportUseCase
}

func NewReportHandler(service reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) RegisterTransactions(router *gin.RouterGroup) {
	router.GET("", h.transactions)
	router.GET("/stats", h.transactionStats)
}

func (h *ReportHandler) Register(router *gin.RouterGroup) {
	router.GET("/dashboard", h.dashboard)
	router.GET("/occupancy", h.occupancy)
	router.GET("/revenue", h.revenue)
	router.GET("/frequent", h.frequent)
	router.GET("/payment-methods", h.paymentMethods)
	router.GET("/recent", h.recent)
}

// transactions accepts an optional RFC 3339 "since" bound.
func (h *ReportHandler) transactions(c *gin.Context) {
	var since time.Time
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(c, "invalid since")
			return
		}
		since = t
	}
	list, err := h.service.ListTransactions(c.Request.Context(), since)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReportHandler) transactionStats(c *gin.Context) {
	respond(c)(h.service.TransactionStats(c.Request.Context()))
}

func (h *ReportHandler) dashboard(c *gin.Context) {
	respond(c)(h.service.Dashboard(c.Request.Context()))
}

func (h *ReportHandler) occupancy(c *gin.Context) {
	respond(c)(h.service.OccupancyByType(c.Request.Context()))
}

func (h *ReportHandler) revenue(c *gin.Context) {
	respond(c)(h.service.RevenueByPeriod(c.Request.Context()))
}

func (h *ReportHandler) frequent(c *gin.Context) {
	respond(c)(h.service.FrequentVehicles(c.Request.Context(), queryLimit(c, 10)))
}

func (h *ReportHandler) paymentMethods(c *gin.Context) {
	respond(c)(h.service.PaymentMethods(c.Request.Context()))
}

func (h *ReportHandler) recent(c *gin.Context) {
	respond(c)(h.service.RecentActivity(c.Request.Context(), queryLimit(c, 10)))
}

func respond(c *gin.Context) func(any, error) {
	return func(body any, err error) {
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}
