package collections

import (
	"time"

	"terraprime/internal/pagination"
	"terraprime/internal/sales"
)

// Debtor is a client with a financed sale under collection.
type Debtor struct {
	ClientID            string     `json:"clientId" validate:"required"`
	FullName            string     `json:"fullName"`
	Document            string     `json:"document"`
	Phone               string     `json:"phone"`
	SaleID              string     `json:"saleId"`
	LotName             string     `json:"lotName"`
	PendingInstallments int        `json:"pendingInstallments" validate:"gte=0"`
	OverdueInstallments int        `json:"overdueInstallments" validate:"gte=0"`
	OverdueAmount       float64    `json:"overdueAmount" validate:"gte=0"`
	NextDueDate         *time.Time `json:"nextDueDate,omitempty"`
}

// Filter narrows the debtor listing.
type Filter struct {
	Search      string
	OverdueOnly bool
	Page        pagination.Params
}

type DebtorList = pagination.Page[Debtor]

// Statement summarizes the installments of one client.
type Statement struct {
	Installments []sales.Installment `json:"installments"`
	Total        float64             `json:"total"`
	Paid         float64             `json:"paid"`
	Outstanding  float64             `json:"outstanding"`
	Overdue      int                 `json:"overdue"`
}

// InstallmentPayment is the voucher paid against one installment.
type InstallmentPayment struct {
	BankName             string    `form:"bankName" binding:"required"`
	TransactionReference string    `form:"transactionReference" binding:"required"`
	TransactionDate      time.Time `form:"transactionDate" time_format:"2006-01-02" binding:"required"`
	Amount               float64   `form:"amount" binding:"required,gt=0"`
}
