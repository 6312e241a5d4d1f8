package sales

import (
	"time"

	"terraprime/internal/pagination"
)

// PaymentMethod tells whether a sale is paid in full or financed.
type PaymentMethod string

const (
	MethodDirect   PaymentMethod = "DIRECT"
	MethodFinanced PaymentMethod = "FINANCED"
)

const (
	StatusPending      = "PENDING"
	StatusInPayment    = "IN_PAYMENT_PROCESS"
	StatusCompleted    = "COMPLETED"
	StatusCancelled    = "CANCELLED"
	InstallmentPaid    = "PAID"
	InstallmentDue     = "PENDING"
	InstallmentLate    = "OVERDUE"
	InstallmentPartial = "PARTIAL"
)

// Client is the buyer of a sale.
type Client struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Document  string `json:"document"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// LotRef is the lot being sold, flattened with its location.
type LotRef struct {
	ID      string  `json:"id" validate:"required"`
	Name    string  `json:"name"`
	Project string  `json:"projectName"`
	Stage   string  `json:"stageName"`
	Block   string  `json:"blockName"`
	Price   float64 `json:"price" validate:"gte=0"`
	Area    float64 `json:"area" validate:"gte=0"`
}

// Installment is one scheduled payment of a financed sale.
type Installment struct {
	ID         string    `json:"id"`
	Number     int       `json:"number" validate:"gte=0"`
	DueDate    time.Time `json:"dueDate"`
	Amount     float64   `json:"amount" validate:"gte=0"`
	PaidAmount float64   `json:"paidAmount" validate:"gte=0"`
	Status     string    `json:"status"`
}

// Financing is the installment plan attached to a financed sale.
type Financing struct {
	ID               string        `json:"id"`
	InitialAmount    float64       `json:"initialAmount" validate:"gte=0"`
	InterestRate     float64       `json:"interestRate" validate:"gte=0"`
	InstallmentCount int           `json:"installmentCount" validate:"gte=0"`
	MonthlyPayment   float64       `json:"monthlyPayment" validate:"gte=0"`
	Installments     []Installment `json:"installments" validate:"dive"`
}

// Sale represents a sales transaction in the system.
type Sale struct {
	ID            string        `json:"id" validate:"required"`
	Client        Client        `json:"client"`
	Lot           LotRef        `json:"lot"`
	VendorID      string        `json:"vendorId"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=DIRECT FINANCED"`
	TotalAmount   float64       `json:"totalAmount" validate:"gte=0"`
	Status        string        `json:"status" validate:"required"`
	Financing     *Financing    `json:"financing,omitempty" validate:"omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// RequiredAmount is what must be paid up front: the full total for a direct
// sale, the initial amount for a financed one.
func (s Sale) RequiredAmount() float64 {
	if s.PaymentMethod == MethodFinanced {
		if s.Financing == nil {
			return 0
		}
		return s.Financing.InitialAmount
	}
	return s.TotalAmount
}

// CreateSaleRequest is the payload for registering a sale.
type CreateSaleRequest struct {
	ClientID             string        `json:"clientId" binding:"required"`
	LotID                string        `json:"lotId" binding:"required"`
	VendorID             string        `json:"vendorId"`
	PaymentMethod        PaymentMethod `json:"paymentMethod" binding:"required,oneof=DIRECT FINANCED"`
	TotalAmount          float64       `json:"totalAmount"`
	InitialAmount        float64       `json:"initialAmount,omitempty"`
	InstallmentCount     int           `json:"installmentCount,omitempty"`
	InterestRate         float64       `json:"interestRate,omitempty"`
	FirstInstallmentDate *time.Time    `json:"firstInstallmentDate,omitempty"`
}

// AmortizationRequest asks the backend for a financing schedule preview.
type AmortizationRequest struct {
	TotalAmount      float64   `json:"totalAmount"`
	InitialAmount    float64   `json:"initialAmount"`
	InterestRate     float64   `json:"interestRate"`
	InstallmentCount int       `json:"installmentCount"`
	FirstPaymentDate time.Time `json:"firstPaymentDate"`
}

// ScheduledInstallment is one row of an amortization schedule.
type ScheduledInstallment struct {
	Number    int       `json:"number" validate:"gte=1"`
	DueDate   time.Time `json:"dueDate"`
	Amount    float64   `json:"amount" validate:"gte=0"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Balance   float64   `json:"balance"`
}

// AmortizationSchedule is the backend's computed financing plan.
type AmortizationSchedule struct {
	FinancedAmount float64                `json:"financedAmount" validate:"gte=0"`
	MonthlyPayment float64                `json:"monthlyPayment" validate:"gte=0"`
	TotalInterest  float64                `json:"totalInterest" validate:"gte=0"`
	Installments   []ScheduledInstallment `json:"installments" validate:"dive"`
}

// Filter narrows a sales listing.
type Filter struct {
	Status   string
	ClientID string
	Search   string
	Page     pagination.Params
}

// SaleList is one page of sales.
type SaleList = pagination.Page[Sale]

// SalesMetadata aggregates a page of sales.
type SalesMetadata struct {
	Quantity    int     `json:"quantity"`
	Pending     int     `json:"pending"`
	InPayment   int     `json:"inPayment"`
	Completed   int     `json:"completed"`
	Cancelled   int     `json:"cancelled"`
	TotalAmount float64 `json:"totalAmount"`
}
