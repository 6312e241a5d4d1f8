package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/wizard"
)

// draftForm is one voucher posted from the payment step. Vouchers are not
// validated here: zero amounts and overpayment are accepted until submit.
type draftForm struct {
	BankName             string    `form:"bankName"`
	TransactionReference string    `form:"transactionReference"`
	TransactionDate      time.Time `form:"transactionDate" time_format:"2006-01-02"`
	Amount               float64   `form:"amount" binding:"gte=0"`
}

type wizardHandler struct {
	wizardService *wizard.Service
	logger        *zap.Logger
}

func NewWizardHandler(wizardService *wizard.Service, logger *zap.Logger) *wizardHandler {
	return &wizardHandler{wizardService: wizardService, logger: logger}
}

// bindDraft reads the voucher fields and the optional "file" part.
func (h *wizardHandler) bindDraft(c *gin.Context) (wizard.Draft, bool) {
	var form draftForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, h.logger, err)
		return wizard.Draft{}, false
	}
	d := wizard.Draft{
		BankName:             form.BankName,
		TransactionReference: form.TransactionReference,
		TransactionDate:      form.TransactionDate,
		Amount:               form.Amount,
	}

	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		badRequest(c, h.logger, err)
		return wizard.Draft{}, false
	default:
		receipt, err := readReceipt(fh)
		if err != nil {
			badRequest(c, h.logger, err)
			return wizard.Draft{}, false
		}
		d.File = &receipt
	}
	return d, true
}

func (h *wizardHandler) draft(c *gin.Context) (*wizard.SaleDraft, bool) {
	d, err := h.wizardService.Get(sessionOf(c), c.Param("wid"))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return d, true
}

func index(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a number"})
		return 0, false
	}
	return i, true
}

func (h *wizardHandler) handleOpen(c *gin.Context) {
	d, err := h.wizardService.Open(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, wizard.Summarize(d))
}

func (h *wizardHandler) handleGet(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, wizard.Summarize(d))
}

func (h *wizardHandler) handleDiscard(c *gin.Context) {
	replyEmpty(c, h.logger, h.wizardService.Discard(sessionOf(c), c.Param("wid")))
}

func (h *wizardHandler) handleAddPayment(c *gin.Context) {
	p, ok := h.bindDraft(c)
	if !ok {
		return
	}
	d, err := h.wizardService.AddPayment(sessionOf(c), c.Param("wid"), p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, wizard.Summarize(d))
}

// handleEditPayment replaces a voucher. Without a new file the previous one
// is kept.
func (h *wizardHandler) handleEditPayment(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	p, ok := h.bindDraft(c)
	if !ok {
		return
	}
	d, err := h.wizardService.EditPayment(sessionOf(c), c.Param("wid"), i, p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, wizard.Summarize(d))
}

func (h *wizardHandler) handleDeletePayment(c *gin.Context) {
	i, ok := index(c)
	if !ok {
		return
	}
	d, err := h.wizardService.DeletePayment(sessionOf(c), c.Param("wid"), i)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, wizard.Summarize(d))
}

// handleSubmit answers 422 with a warning when the wizard refuses or the
// backend rejects the batch.
func (h *wizardHandler) handleSubmit(c *gin.Context) {
	res, err := h.wizardService.Submit(c.Request.Context(), sessionOf(c), c.Param("wid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !res.OK() {
		h.logger.Info("payment wizard submission refused",
			zap.String("draft_id", c.Param("wid")),
			zap.String("reason", res.Message()),
		)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"warning": res.Message()})
		return
	}
	c.JSON(http.StatusOK, res.Value())
}
