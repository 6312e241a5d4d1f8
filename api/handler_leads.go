package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/leads"
)

type leadsHandler struct {
	leadsService *leads.Service
	logger       *zap.Logger
}

func NewLeadsHandler(leadsService *leads.Service, logger *zap.Logger) *leadsHandler {
	return &leadsHandler{leadsService: leadsService, logger: logger}
}

func (h *leadsHandler) handleListLeads(c *gin.Context) {
	f := leads.Filter{
		Search:   c.Query("search"),
		VendorID: c.Query("vendorId"),
		Page:     pageParams(c),
	}
	if raw := c.Query("isInOffice"); raw != "" {
		inOffice, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isInOffice must be true or false"})
			return
		}
		f.InOffice = &inOffice
	}

	page, err := h.leadsService.List(c.Request.Context(), sessionOf(c), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *leadsHandler) handleGetLead(c *gin.Context) {
	lead, err := h.leadsService.Get(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *leadsHandler) handleCreateLead(c *gin.Context) {
	var in leads.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	lead, err := h.leadsService.Create(c.Request.Context(), sessionOf(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *leadsHandler) handleUpdateLead(c *gin.Context) {
	var in leads.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	lead, err := h.leadsService.Update(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *leadsHandler) handleDeleteLead(c *gin.Context) {
	if err := h.leadsService.Delete(c.Request.Context(), sessionOf(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *leadsHandler) handleAssignLead(c *gin.Context) {
	var a leads.Assignment
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	lead, err := h.leadsService.Assign(c.Request.Context(), sessionOf(c), c.Param("id"), a)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

func (h *leadsHandler) handleListVisits(c *gin.Context) {
	visits, err := h.leadsService.Visits(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if visits == nil {
		visits = []leads.Visit{}
	}
	c.JSON(http.StatusOK, visits)
}

func (h *leadsHandler) handleArrival(c *gin.Context) {
	visit, err := h.leadsService.RegisterArrival(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, visit)
}

func (h *leadsHandler) handleDeparture(c *gin.Context) {
	visit, err := h.leadsService.RegisterDeparture(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, visit)
}
