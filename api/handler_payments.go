package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/payments"
)

// maxReceiptSize bounds one uploaded voucher image.
const maxReceiptSize = 10 << 20

type paymentsHandler struct {
	paymentsService *payments.Service
	logger          *zap.Logger
}

func NewPaymentsHandler(paymentsService *payments.Service, logger *zap.Logger) *paymentsHandler {
	return &paymentsHandler{paymentsService: paymentsService, logger: logger}
}

func readReceipt(fh *multipart.FileHeader) (payments.Receipt, error) {
	if fh.Size > maxReceiptSize {
		return payments.Receipt{}, fmt.Errorf("file %s is larger than %d bytes", fh.Filename, maxReceiptSize)
	}
	f, err := fh.Open()
	if err != nil {
		return payments.Receipt{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxReceiptSize))
	if err != nil {
		return payments.Receipt{}, err
	}
	return payments.Receipt{Name: fh.Filename, Data: data}, nil
}

// handleSubmitPayments takes a "payments" JSON field and "files" parts in the
// same order, and forwards them as one batch.
func (h *paymentsHandler) handleSubmitPayments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	var vouchers []payments.VoucherInput
	if err := json.Unmarshal([]byte(c.PostForm("payments")), &vouchers); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	sub := payments.Submission{SaleID: c.Param("id"), Vouchers: vouchers}
	for _, fh := range form.File["files"] {
		receipt, err := readReceipt(fh)
		if err != nil {
			badRequest(c, h.logger, err)
			return
		}
		sub.Files = append(sub.Files, receipt)
	}

	payment, err := h.paymentsService.Submit(c.Request.Context(), sessionOf(c), sub)
	reply(c, h.logger, http.StatusCreated, payment, err)
}

func (h *paymentsHandler) handleListPayments(c *gin.Context) {
	page, err := h.paymentsService.List(c.Request.Context(), sessionOf(c), payments.Filter{
		Status: c.Query("status"),
		SaleID: c.Query("saleId"),
		Page:   pageParams(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(page))
}

func (h *paymentsHandler) handleGetPayment(c *gin.Context) {
	payment, err := h.paymentsService.Get(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, payment, err)
}

func (h *paymentsHandler) handleApprove(c *gin.Context) {
	payment, err := h.paymentsService.Approve(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, payment, err)
}

func (h *paymentsHandler) handleReject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	payment, err := h.paymentsService.Reject(c.Request.Context(), sessionOf(c), c.Param("id"), req.Reason)
	reply(c, h.logger, http.StatusOK, payment, err)
}

func (h *paymentsHandler) handleComplete(c *gin.Context) {
	payment, err := h.paymentsService.Complete(c.Request.Context(), sessionOf(c), c.Param("id"))
	reply(c, h.logger, http.StatusOK, payment, err)
}
