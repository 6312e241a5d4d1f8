package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/projects"
)

type projectsHandler struct {
	projectsService *projects.Service
	logger          *zap.Logger
}

func NewProjectsHandler(projectsService *projects.Service, logger *zap.Logger) *projectsHandler {
	return &projectsHandler{projectsService: projectsService, logger: logger}
}

// reply writes v with status, or the error.
func reply(c *gin.Context, logger *zap.Logger, status int, v any, err error) {
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(status, v)
}

// replyEmpty answers 204, or the error.
func replyEmpty(c *gin.Context, logger *zap.Logger, err error) {
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *projectsHandler) handleListProjects(c *gin.Context) {
	page, err := h.projectsService.ListProjects(c.Request.Context(), sessionOf(c), projects.Filter{
		Search: c.Query("search"),
		Page:   pageParams(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *projectsHandler) handleGetProject(c *gin.Context) {
	p, err := h.projectsService.GetProject(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, p, err)
}

func (h *projectsHandler) handleCreateProject(c *gin.Context) {
	var in projects.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	p, err := h.projectsService.CreateProject(c.Request.Context(), sessionOf(c), in)
	reply(c, h.logger, http.StatusCreated, p, err)
}

func (h *projectsHandler) handleUpdateProject(c *gin.Context) {
	var in projects.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	p, err := h.projectsService.UpdateProject(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusOK, p, err)
}

func (h *projectsHandler) handleDeleteProject(c *gin.Context) {
	replyEmpty(c, h.logger, h.projectsService.DeleteProject(c.Request.Context(), sessionOf(c), c.Param("id")))
}

func (h *projectsHandler) handleTree(c *gin.Context) {
	tree, count, err := h.projectsService.Tree(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": tree, "lots": count})
}

func (h *projectsHandler) handleListStages(c *gin.Context) {
	stages, err := h.projectsService.ListStages(c.Request.Context(), sessionOf(c), c.Param("id"))
	if stages == nil {
		stages = []projects.Stage{}
	}
	reply(c, h.logger, http.StatusOK, stages, err)
}

func (h *projectsHandler) handleCreateStage(c *gin.Context) {
	var in projects.NodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	stage, err := h.projectsService.CreateStage(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusCreated, stage, err)
}

func (h *projectsHandler) handleUpdateStage(c *gin.Context) {
	var in projects.NodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	stage, err := h.projectsService.UpdateStage(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusOK, stage, err)
}

func (h *projectsHandler) handleDeleteStage(c *gin.Context) {
	replyEmpty(c, h.logger, h.projectsService.DeleteStage(c.Request.Context(), sessionOf(c), c.Param("id")))
}

func (h *projectsHandler) handleListBlocks(c *gin.Context) {
	blocks, err := h.projectsService.ListBlocks(c.Request.Context(), sessionOf(c), c.Param("id"))
	if blocks == nil {
		blocks = []projects.Block{}
	}
	reply(c, h.logger, http.StatusOK, blocks, err)
}

func (h *projectsHandler) handleCreateBlock(c *gin.Context) {
	var in projects.NodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	block, err := h.projectsService.CreateBlock(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusCreated, block, err)
}

func (h *projectsHandler) handleUpdateBlock(c *gin.Context) {
	var in projects.NodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	block, err := h.projectsService.UpdateBlock(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusOK, block, err)
}

func (h *projectsHandler) handleDeleteBlock(c *gin.Context) {
	replyEmpty(c, h.logger, h.projectsService.DeleteBlock(c.Request.Context(), sessionOf(c), c.Param("id")))
}

func (h *projectsHandler) handleListLots(c *gin.Context) {
	page, err := h.projectsService.ListLots(c.Request.Context(), sessionOf(c), c.Param("id"), projects.LotFilter{
		Status: c.Query("status"),
		Page:   pageParams(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *projectsHandler) handleGetLot(c *gin.Context) {
	lot, err := h.projectsService.GetLot(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, lot, err)
}

func (h *projectsHandler) handleCreateLot(c *gin.Context) {
	var in projects.LotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	lot, err := h.projectsService.CreateLot(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusCreated, lot, err)
}

func (h *projectsHandler) handleUpdateLot(c *gin.Context) {
	var in projects.LotInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	lot, err := h.projectsService.UpdateLot(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusOK, lot, err)
}

func (h *projectsHandler) handleDeleteLot(c *gin.Context) {
	replyEmpty(c, h.logger, h.projectsService.DeleteLot(c.Request.Context(), sessionOf(c), c.Param("id")))
}

func (h *projectsHandler) handleUpdateLotStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	lot, err := h.projectsService.UpdateLotStatus(c.Request.Context(), sessionOf(c), c.Param("id"), req.Status)
	reply(c, h.logger, http.StatusOK, lot, err)
}
