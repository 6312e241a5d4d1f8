package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/collections"
	"terraprime/internal/leads"
	"terraprime/internal/payments"
	"terraprime/internal/projects"
	"terraprime/internal/reports"
	"terraprime/internal/sales"
	"terraprime/internal/session"
	"terraprime/internal/users"
	"terraprime/internal/wizard"
)

// Deps are the services the routes are built on. Metrics, MetricsHandler
// and Limiter are optional.
type Deps struct {
	Logger         *zap.Logger
	Sessions       *session.Parser
	Limiter        *RateLimiter
	Metrics        *Metrics
	MetricsHandler http.Handler

	Leads       *leads.Service
	Projects    *projects.Service
	Sales       *sales.Service
	Payments    *payments.Service
	Collections *collections.Service
	Users       *users.Service
	Reports     *reports.Service
	Wizard      *wizard.Service
}

// InitRoutes registers every back-office endpoint on the given Gin engine.
func InitRoutes(e *gin.Engine, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Use(gin.Recovery(), RequestLogger(logger))
	if d.Metrics != nil {
		e.Use(d.Metrics.Handler())
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if d.MetricsHandler != nil {
		e.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	sessions := d.Sessions
	if sessions == nil {
		sessions = session.NewParser("")
	}
	r := e.Group("/api", Authenticate(sessions))
	if d.Limiter != nil {
		r.Use(d.Limiter.Handler())
	}

	leadsHandler := NewLeadsHandler(d.Leads, logger)
	r.GET("/leads", leadsHandler.handleListLeads)
	r.POST("/leads", leadsHandler.handleCreateLead)
	r.GET("/leads/:id", leadsHandler.handleGetLead)
	r.PUT("/leads/:id", leadsHandler.handleUpdateLead)
	r.DELETE("/leads/:id", leadsHandler.handleDeleteLead)
	r.POST("/leads/:id/assign", leadsHandler.handleAssignLead)
	r.GET("/leads/:id/visits", leadsHandler.handleListVisits)
	r.POST("/leads/:id/visits/arrival", leadsHandler.handleArrival)
	r.POST("/leads/:id/visits/departure", leadsHandler.handleDeparture)

	projectsHandler := NewProjectsHandler(d.Projects, logger)
	r.GET("/projects", projectsHandler.handleListProjects)
	r.POST("/projects", projectsHandler.handleCreateProject)
	r.GET("/projects/:id", projectsHandler.handleGetProject)
	r.PUT("/projects/:id", projectsHandler.handleUpdateProject)
	r.DELETE("/projects/:id", projectsHandler.handleDeleteProject)
	r.GET("/projects/:id/tree", projectsHandler.handleTree)
	r.GET("/projects/:id/stages", projectsHandler.handleListStages)
	r.POST("/projects/:id/stages", projectsHandler.handleCreateStage)
	r.PUT("/stages/:id", projectsHandler.handleUpdateStage)
	r.DELETE("/stages/:id", projectsHandler.handleDeleteStage)
	r.GET("/stages/:id/blocks", projectsHandler.handleListBlocks)
	r.POST("/stages/:id/blocks", projectsHandler.handleCreateBlock)
	r.PUT("/blocks/:id", projectsHandler.handleUpdateBlock)
	r.DELETE("/blocks/:id", projectsHandler.handleDeleteBlock)
	r.GET("/blocks/:id/lots", projectsHandler.handleListLots)
	r.POST("/blocks/:id/lots", projectsHandler.handleCreateLot)
	r.GET("/lots/:id", projectsHandler.handleGetLot)
	r.PUT("/lots/:id", projectsHandler.handleUpdateLot)
	r.DELETE("/lots/:id", projectsHandler.handleDeleteLot)
	r.PATCH("/lots/:id/status", projectsHandler.handleUpdateLotStatus)

	salesHandler := NewSalesHandler(d.Sales, logger)
	r.POST("/sales", salesHandler.handleCreateSale)
	r.GET("/sales", salesHandler.handlerGetSales)
	r.POST("/sales/amortization", salesHandler.handleAmortization)
	r.GET("/sales/:id", salesHandler.handleGetSale)
	r.PATCH("/sales/:id/status", salesHandler.PatchSaleHandler(d.Sales))
	r.GET("/sales/:id/financing", salesHandler.handleFinancing)

	paymentsHandler := NewPaymentsHandler(d.Payments, logger)
	r.POST("/sales/:id/payments", paymentsHandler.handleSubmitPayments)
	r.GET("/payments", paymentsHandler.handleListPayments)
	r.GET("/payments/:id", paymentsHandler.handleGetPayment)
	r.POST("/payments/:id/approve", paymentsHandler.handleApprove)
	r.POST("/payments/:id/reject", paymentsHandler.handleReject)
	r.POST("/payments/:id/complete", paymentsHandler.handleComplete)

	collectionsHandler := NewCollectionsHandler(d.Collections, logger)
	r.GET("/collections/clients", collectionsHandler.handleDebtors)
	r.GET("/collections/clients/:id/installments", collectionsHandler.handleStatement)
	r.POST("/collections/installments/:id/payments", collectionsHandler.handlePayInstallment)

	usersHandler := NewUsersHandler(d.Users, logger)
	r.GET("/users", usersHandler.handleListUsers)
	r.POST("/users", usersHandler.handleCreateUser)
	r.GET("/users/:id", usersHandler.handleGetUser)
	r.PUT("/users/:id", usersHandler.handleUpdateUser)
	r.DELETE("/users/:id", usersHandler.handleDeleteUser)
	r.GET("/vendors", usersHandler.handleVendors)
	r.GET("/roles", usersHandler.handleListRoles)
	r.POST("/roles", usersHandler.handleCreateRole)
	r.GET("/roles/:id", usersHandler.handleGetRole)
	r.PUT("/roles/:id", usersHandler.handleUpdateRole)
	r.DELETE("/roles/:id", usersHandler.handleDeleteRole)
	r.PUT("/roles/:id/views", usersHandler.handleSetRoleViews)
	r.GET("/views", usersHandler.handleViews)
	r.GET("/me/menu", usersHandler.handleMenu)

	reportsHandler := NewReportsHandler(d.Reports, logger)
	r.POST("/reports/pdf", reportsHandler.handleGeneratePDF)

	wizardHandler := NewWizardHandler(d.Wizard, logger)
	r.POST("/sales/:id/payment-wizard", wizardHandler.handleOpen)
	r.GET("/payment-wizards/:wid", wizardHandler.handleGet)
	r.DELETE("/payment-wizards/:wid", wizardHandler.handleDiscard)
	r.POST("/payment-wizards/:wid/payments", wizardHandler.handleAddPayment)
	r.PUT("/payment-wizards/:wid/payments/:index", wizardHandler.handleEditPayment)
	r.DELETE("/payment-wizards/:wid/payments/:index", wizardHandler.handleDeletePayment)
	r.POST("/payment-wizards/:wid/submit", wizardHandler.handleSubmit)
}
