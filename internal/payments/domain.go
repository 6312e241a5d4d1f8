package payments

import (
	"time"

	"terraprime/internal/pagination"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
)

// Voucher is one proof of payment stored by the backend.
type Voucher struct {
	ID                   string    `json:"id"`
	BankName             string    `json:"bankName"`
	TransactionReference string    `json:"transactionReference"`
	TransactionDate      time.Time `json:"transactionDate"`
	Amount               float64   `json:"amount" validate:"gte=0"`
	FileURL              string    `json:"fileUrl,omitempty"`
}

// Reviewer is the user who approved or rejected a payment.
type Reviewer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Payment groups the vouchers submitted against a sale.
type Payment struct {
	ID              string    `json:"id" validate:"required"`
	SaleID          string    `json:"saleId"`
	Status          string    `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED COMPLETED"`
	Amount          float64   `json:"amount" validate:"gte=0"`
	Vouchers        []Voucher `json:"vouchers" validate:"dive"`
	Reviewer        *Reviewer `json:"reviewer,omitempty"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// VoucherInput is the metadata of one voucher in a submission. FileIndex
// points at the uploaded file with the same position.
type VoucherInput struct {
	BankName             string    `json:"bankName"`
	TransactionReference string    `json:"transactionReference"`
	TransactionDate      time.Time `json:"transactionDate"`
	Amount               float64   `json:"amount"`
	FileIndex            int       `json:"fileIndex"`
}

// Receipt is an uploaded voucher image.
type Receipt struct {
	Name string
	Data []byte
}

// Submission pairs voucher metadata with their receipts by position.
type Submission struct {
	SaleID   string
	Vouchers []VoucherInput
	Files    []Receipt
}

// Filter narrows a payment listing.
type Filter struct {
	Status string
	SaleID string
	Page   pagination.Params
}

// PaymentList is one page of payments.
type PaymentList = pagination.Page[Payment]
