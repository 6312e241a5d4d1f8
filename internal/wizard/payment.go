// Package wizard holds the transient state behind the sale-creation screens:
// the payment collection wizard, the step tracker and the draft store.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"terraprime/internal/payments"
	"terraprime/internal/result"
	"terraprime/internal/session"
)

var (
	// ErrOverpayment is the only hard gate before submission: the vouchers
	// add up to more than the sale requires.
	ErrOverpayment = errors.New("the payments exceed the required amount")

	ErrIndexOutOfRange      = errors.New("payment index out of range")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrAlreadySubmitted     = errors.New("the payments were already submitted")
)

// Draft is one voucher being built up by the user. FileIndex always equals
// the draft's position in the wizard.
type Draft struct {
	BankName             string            `json:"bankName"`
	TransactionReference string            `json:"transactionReference"`
	TransactionDate      time.Time         `json:"transactionDate"`
	Amount               float64           `json:"amount"`
	File                 *payments.Receipt `json:"-"`
	FileIndex            int               `json:"fileIndex"`
}

// HasFile reports whether a receipt is attached.
func (d Draft) HasFile() bool { return d.File != nil }

// Submitter sends a finished voucher batch to the backend.
type Submitter interface {
	Submit(ctx context.Context, sess session.Session, sub payments.Submission) (*payments.Payment, error)
}

// PaymentWizard accumulates vouchers against a sale's required amount.
type PaymentWizard struct {
	mu         sync.Mutex
	saleID     string
	required   int64
	drafts     []Draft
	submitting bool
	submitted  bool
	submitter  Submitter
	logger     *zap.Logger
}

// NewPaymentWizard creates a wizard for saleID that must collect required.
func NewPaymentWizard(saleID string, required float64, submitter Submitter, logger *zap.Logger) *PaymentWizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentWizard{
		saleID:    saleID,
		required:  toCents(required),
		submitter: submitter,
		logger:    logger,
	}
}

// AddPayment appends d and returns its index. Amounts are not checked here;
// overpayment is caught by HandleAction.
func (w *PaymentWizard) AddPayment(d Draft) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	d.FileIndex = len(w.drafts)
	w.drafts = append(w.drafts, d)
	return d.FileIndex
}

// DeletePayment removes the draft at i and renumbers the rest.
func (w *PaymentWizard) DeletePayment(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i < 0 || i >= len(w.drafts) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	w.drafts = append(w.drafts[:i:i], w.drafts[i+1:]...)
	for j := range w.drafts {
		w.drafts[j].FileIndex = j
	}
	return nil
}

// EditPayment replaces the draft at i, keeping its FileIndex.
func (w *PaymentWizard) EditPayment(i int, d Draft) error {
	return w.edit(i, d, false)
}

// EditPaymentDetails is EditPayment, except that a nil File keeps the
// receipt already attached at i.
func (w *PaymentWizard) EditPaymentDetails(i int, d Draft) error {
	return w.edit(i, d, true)
}

func (w *PaymentWizard) edit(i int, d Draft, keepFile bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i < 0 || i >= len(w.drafts) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if keepFile && d.File == nil {
		d.File = w.drafts[i].File
	}
	d.FileIndex = w.drafts[i].FileIndex
	w.drafts[i] = d
	return nil
}

// Payments returns a copy of the current drafts.
func (w *PaymentWizard) Payments() []Draft {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Draft, len(w.drafts))
	copy(out, w.drafts)
	return out
}

// SaleID returns the sale the wizard collects for.
func (w *PaymentWizard) SaleID() string { return w.saleID }

// RequiredAmount is what the sale requires up front.
func (w *PaymentWizard) RequiredAmount() float64 { return fromCents(w.required) }

// TotalPaid is the sum of all draft amounts.
func (w *PaymentWizard) TotalPaid() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fromCents(w.totalCents())
}

// RemainingAmount is what is still missing, never negative.
func (w *PaymentWizard) RemainingAmount() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fromCents(max(0, w.required-w.totalCents()))
}

// IsAmountReached reports whether the drafts cover the required amount,
// overpayment included.
func (w *PaymentWizard) IsAmountReached() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalCents() >= w.required
}

// IsPaymentComplete reports whether the drafts match the required amount
// exactly. Unlike IsAmountReached it is false on overpayment.
func (w *PaymentWizard) IsPaymentComplete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.drafts) > 0 && w.totalCents() == w.required
}

// IsSubmitting reports whether HandleAction is waiting on the backend.
func (w *PaymentWizard) IsSubmitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Submitted reports whether the backend already accepted the drafts.
func (w *PaymentWizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// Snapshot is the whole wizard state read under a single lock.
type Snapshot struct {
	SaleID            string
	RequiredAmount    float64
	TotalPaid         float64
	RemainingAmount   float64
	IsAmountReached   bool
	IsPaymentComplete bool
	IsSubmitting      bool
	Submitted         bool
	Payments          []Draft
}

// Snapshot returns the current state of the wizard.
func (w *PaymentWizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := w.totalCents()
	drafts := make([]Draft, len(w.drafts))
	copy(drafts, w.drafts)
	return Snapshot{
		SaleID:            w.saleID,
		RequiredAmount:    fromCents(w.required),
		TotalPaid:         fromCents(total),
		RemainingAmount:   fromCents(max(0, w.required-total)),
		IsAmountReached:   total >= w.required,
		IsPaymentComplete: len(w.drafts) > 0 && total == w.required,
		IsSubmitting:      w.submitting,
		Submitted:         w.submitted,
		Payments:          drafts,
	}
}

// HandleAction submits the drafts that carry a file. It fails without
// calling the submitter when the drafts exceed the required amount, and
// turns submitter errors into a failed result. The drafts are left untouched
// either way so the user can retry. Once the backend accepts a batch every
// later call fails with ErrAlreadySubmitted.
func (w *PaymentWizard) HandleAction(ctx context.Context, sess session.Session) result.Result[*payments.Payment] {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return result.Failure[*payments.Payment](ErrSubmissionInProgress)
	}
	if w.submitted {
		w.mu.Unlock()
		return result.Failure[*payments.Payment](ErrAlreadySubmitted)
	}
	total := w.totalCents()
	if total > w.required {
		w.mu.Unlock()
		w.logger.Warn("payment submission blocked",
			zap.String("sale_id", w.saleID),
			zap.Float64("total_paid", fromCents(total)),
			zap.Float64("required", fromCents(w.required)),
		)
		return result.Failure[*payments.Payment](fmt.Errorf("%w: %.2f paid, %.2f required",
			ErrOverpayment, fromCents(total), fromCents(w.required)))
	}
	sub := w.submission()
	w.submitting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	payment, err := w.submitter.Submit(ctx, sess, sub)
	if err != nil {
		w.logger.Warn("payment submission failed", zap.String("sale_id", w.saleID), zap.Error(err))
		return result.Failure[*payments.Payment](err)
	}
	w.mu.Lock()
	w.submitted = true
	w.mu.Unlock()
	return result.Success(payment)
}

// submission pairs each draft that has a file with that file, by position
// among the kept drafts. Caller holds mu.
func (w *PaymentWizard) submission() payments.Submission {
	sub := payments.Submission{SaleID: w.saleID}
	for _, d := range w.drafts {
		if d.File == nil {
			continue
		}
		sub.Vouchers = append(sub.Vouchers, payments.VoucherInput{
			BankName:             d.BankName,
			TransactionReference: d.TransactionReference,
			TransactionDate:      d.TransactionDate,
			Amount:               d.Amount,
			FileIndex:            len(sub.Files),
		})
		sub.Files = append(sub.Files, *d.File)
	}
	return sub
}

func (w *PaymentWizard) totalCents() int64 {
	var total int64
	for _, d := range w.drafts {
		total += toCents(d.Amount)
	}
	return total
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
