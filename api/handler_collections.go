package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/collections"
)

type collectionsHandler struct {
	collectionsService *collections.Service
	logger             *zap.Logger
}

func NewCollectionsHandler(collectionsService *collections.Service, logger *zap.Logger) *collectionsHandler {
	return &collectionsHandler{collectionsService: collectionsService, logger: logger}
}

func (h *collectionsHandler) handleDebtors(c *gin.Context) {
	overdueOnly, _ := strconv.ParseBool(c.Query("overdueOnly"))
	page, err := h.collectionsService.Debtors(c.Request.Context(), sessionOf(c), collections.Filter{
		Search:      c.Query("search"),
		OverdueOnly: overdueOnly,
		Page:        pageParams(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *collectionsHandler) handleStatement(c *gin.Context) {
	st, err := h.collectionsService.Statement(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, st, err)
}

func (h *collectionsHandler) handlePayInstallment(c *gin.Context) {
	var in collections.InstallmentPayment
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": collections.ErrMissingReceipt.Error()})
		return
	}
	receipt, err := readReceipt(fh)
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	inst, err := h.collectionsService.PayInstallment(c.Request.Context(), sessionOf(c), c.Param("id"), in, receipt)
	reply(c, h.logger, http.StatusCreated, inst, err)
}
