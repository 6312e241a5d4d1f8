package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/pagination"
	"terraprime/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

func (h *salesHandler) PatchSaleHandler(saleService *sales.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		saleID := c.Param("id")
		var req struct {
			Status string `json:"status" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := saleService.UpdateSaleStatus(c.Request.Context(), sessionOf(c), saleID, req.Status)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.CreateSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, err)
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), sessionOf(ctx), req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

func (h *salesHandler) handlerGetSales(ctx *gin.Context) {
	f := sales.Filter{
		Status:   ctx.Query("status"),
		ClientID: ctx.Query("clientId"),
		Search:   ctx.Query("search"),
		Page:     pageParams(ctx),
	}

	// Busca y agrega la página devuelta
	page, metadata, err := h.salesService.SearchSales(ctx.Request.Context(), sessionOf(ctx), f)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": page.Data, "meta": page.Meta, "metadata": metadata})
}

func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.GetSale(ctx.Request.Context(), sessionOf(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

func (h *salesHandler) handleAmortization(ctx *gin.Context) {
	var req sales.AmortizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, err)
		return
	}
	schedule, err := h.salesService.PreviewAmortization(ctx.Request.Context(), sessionOf(ctx), req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, schedule)
}

func (h *salesHandler) handleFinancing(ctx *gin.Context) {
	fin, err := h.salesService.GetFinancing(ctx.Request.Context(), sessionOf(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, fin)
}

func pageParams(c *gin.Context) pagination.Params {
	return pagination.Parse(c.Query("page"), c.Query("limit"))
}

// listResponse is the shape of every paged listing.
func listResponse[T any](page *pagination.Page[T]) gin.H {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	return gin.H{"results": data, "meta": page.Meta}
}
