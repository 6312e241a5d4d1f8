package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/users"
)

type usersHandler struct {
	usersService *users.Service
	logger       *zap.Logger
}

func NewUsersHandler(usersService *users.Service, logger *zap.Logger) *usersHandler {
	return &usersHandler{usersService: usersService, logger: logger}
}

func (h *usersHandler) handleListUsers(c *gin.Context) {
	page, err := h.usersService.ListUsers(c.Request.Context(), sessionOf(c), users.Filter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   pageParams(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *usersHandler) handleVendors(c *gin.Context) {
	page, err := h.usersService.Vendors(c.Request.Context(), sessionOf(c), c.Query("search"), pageParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *usersHandler) handleGetUser(c *gin.Context) {
	u, err := h.usersService.GetUser(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, u, err)
}

func (h *usersHandler) handleCreateUser(c *gin.Context) {
	var in users.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	u, err := h.usersService.CreateUser(c.Request.Context(), sessionOf(c), in)
	reply(c, h.logger, http.StatusCreated, u, err)
}

func (h *usersHandler) handleUpdateUser(c *gin.Context) {
	var in users.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	u, err := h.usersService.UpdateUser(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusOK, u, err)
}

func (h *usersHandler) handleDeleteUser(c *gin.Context) {
	replyEmpty(c, h.logger, h.usersService.DeleteUser(c.Request.Context(), sessionOf(c), c.Param("id")))
}

func (h *usersHandler) handleListRoles(c *gin.Context) {
	page, err := h.usersService.ListRoles(c.Request.Context(), sessionOf(c), users.Filter{
		Search: c.Query("search"),
		Page:   pageParams(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *usersHandler) handleGetRole(c *gin.Context) {
	role, err := h.usersService.GetRole(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, role, err)
}

func (h *usersHandler) handleCreateRole(c *gin.Context) {
	var in users.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	role, err := h.usersService.CreateRole(c.Request.Context(), sessionOf(c), in)
	reply(c, h.logger, http.StatusCreated, role, err)
}

func (h *usersHandler) handleUpdateRole(c *gin.Context) {
	var in users.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	role, err := h.usersService.UpdateRole(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	reply(c, h.logger, http.StatusOK, role, err)
}

func (h *usersHandler) handleDeleteRole(c *gin.Context) {
	replyEmpty(c, h.logger, h.usersService.DeleteRole(c.Request.Context(), sessionOf(c), c.Param("id")))
}

func (h *usersHandler) handleSetRoleViews(c *gin.Context) {
	var grant users.ViewGrant
	if err := c.ShouldBindJSON(&grant); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	role, err := h.usersService.SetRoleViews(c.Request.Context(), sessionOf(c), c.Param("id"), grant.ViewIDs)
	reply(c, h.logger, http.StatusOK, role, err)
}

func (h *usersHandler) handleViews(c *gin.Context) {
	views, err := h.usersService.Views(c.Request.Context(), sessionOf(c))
	if views == nil {
		views = []users.View{}
	}
	reply(c, h.logger, http.StatusOK, views, err)
}

func (h *usersHandler) handleMenu(c *gin.Context) {
	views, err := h.usersService.Menu(c.Request.Context(), sessionOf(c))
	reply(c, h.logger, http.StatusOK, views, err)
}
