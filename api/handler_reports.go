package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/gateway"
	"terraprime/internal/reports"
)

type reportsHandler struct {
	reportsService *reports.Service
	logger         *zap.Logger
}

func NewReportsHandler(reportsService *reports.Service, logger *zap.Logger) *reportsHandler {
	return &reportsHandler{reportsService: reportsService, logger: logger}
}

// handleGeneratePDF relays the request body to the report service and its
// answer back, status included.
func (h *reportsHandler) handleGeneratePDF(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	doc, err := h.reportsService.GeneratePDF(c.Request.Context(), sessionOf(c), body, c.ContentType())
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		case errors.Is(err, reports.ErrUnreachable):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		case errors.Is(err, gateway.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			respondError(c, h.logger, err)
		}
		return
	}

	if doc.ContentDisposition != "" {
		c.Header("Content-Disposition", doc.ContentDisposition)
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(doc.StatusCode, contentType, doc.Body)
}
