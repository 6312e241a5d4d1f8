package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"terraprime/internal/payments"
	"terraprime/internal/result"
	"terraprime/internal/sales"
	"terraprime/internal/session"
)

// ErrForbidden is returned when a session touches a draft it did not open.
var ErrForbidden = errors.New("draft belongs to another user")

// ErrNothingToCollect is returned for sales that require no up-front amount.
var ErrNothingToCollect = errors.New("sale has no amount to collect")

// SaleGetter loads the sale a wizard collects for.
type SaleGetter interface {
	GetSale(ctx context.Context, sess session.Session, id string) (*sales.Sale, error)
}

// Summary is a snapshot of a draft for the dashboard.
type Summary struct {
	ID                string      `json:"id"`
	SaleID            string      `json:"saleId"`
	Step              Step        `json:"step"`
	RequiredAmount    float64     `json:"requiredAmount"`
	TotalPaid         float64     `json:"totalPaid"`
	RemainingAmount   float64     `json:"remainingAmount"`
	IsAmountReached   bool        `json:"isAmountReached"`
	IsPaymentComplete bool        `json:"isPaymentComplete"`
	IsSubmitting      bool        `json:"isSubmitting"`
	IsSubmitted       bool        `json:"isSubmitted"`
	Payments          []DraftView `json:"payments"`
}

// DraftView is a draft as shown to the dashboard.
type DraftView struct {
	Draft
	FileName string `json:"fileName,omitempty"`
	HasFile  bool   `json:"hasFile"`
}

// Service opens, serves and evicts sale drafts.
type Service struct {
	store     Storage
	sales     SaleGetter
	submitter Submitter
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
	cron      *cron.Cron
}

// NewService creates a new Service.
func NewService(store Storage, saleGetter SaleGetter, submitter Submitter, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{
		store:     store,
		sales:     saleGetter,
		submitter: submitter,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

// Open starts a payment wizard for an existing sale. The earlier steps are
// done once the sale exists, so the draft starts on the payments step.
func (s *Service) Open(ctx context.Context, sess session.Session, saleID string) (*SaleDraft, error) {
	sale, err := s.sales.GetSale(ctx, sess, saleID)
	if err != nil {
		return nil, err
	}
	required := sale.RequiredAmount()
	if required <= 0 {
		return nil, ErrNothingToCollect
	}

	steps := NewSteps()
	if err := steps.GoTo(StepPayments); err != nil {
		return nil, err
	}

	now := s.now()
	d := &SaleDraft{
		ID:        uuid.NewString(),
		OwnerID:   sess.UserID(),
		Payment:   NewPaymentWizard(sale.ID, required, s.submitter, s.logger),
		Steps:     steps,
		CreatedAt: now,
	}
	d.Touch(now)
	if err := s.store.Set(d); err != nil {
		return nil, err
	}

	s.logger.Info("payment wizard opened",
		zap.String("draft_id", d.ID),
		zap.String("sale_id", sale.ID),
		zap.Float64("required", required),
	)
	return d, nil
}

// Get returns the caller's draft.
func (s *Service) Get(sess session.Session, id string) (*SaleDraft, error) {
	d, err := s.store.Read(id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != sess.UserID() {
		return nil, ErrForbidden
	}
	d.Touch(s.now())
	return d, nil
}

// collecting returns the caller's draft while its vouchers can still change.
func (s *Service) collecting(sess session.Session, id string) (*SaleDraft, error) {
	d, err := s.Get(sess, id)
	if err != nil {
		return nil, err
	}
	if d.Payment.Submitted() || d.Steps.Current() != StepPayments {
		return nil, ErrAlreadySubmitted
	}
	return d, nil
}

// AddPayment appends p to the caller's draft.
func (s *Service) AddPayment(sess session.Session, id string, p Draft) (*SaleDraft, error) {
	d, err := s.collecting(sess, id)
	if err != nil {
		return nil, err
	}
	d.Payment.AddPayment(p)
	return d, nil
}

// EditPayment replaces voucher i of the caller's draft. Without a new file
// the previous receipt is kept.
func (s *Service) EditPayment(sess session.Session, id string, i int, p Draft) (*SaleDraft, error) {
	d, err := s.collecting(sess, id)
	if err != nil {
		return nil, err
	}
	if err := d.Payment.EditPaymentDetails(i, p); err != nil {
		return nil, err
	}
	return d, nil
}

// DeletePayment removes voucher i of the caller's draft.
func (s *Service) DeletePayment(sess session.Session, id string, i int) (*SaleDraft, error) {
	d, err := s.collecting(sess, id)
	if err != nil {
		return nil, err
	}
	if err := d.Payment.DeletePayment(i); err != nil {
		return nil, err
	}
	return d, nil
}

// Submit runs the payment wizard and moves the draft to the confirmation
// step when the backend accepts it. A draft is submitted at most once.
func (s *Service) Submit(ctx context.Context, sess session.Session, id string) (result.Result[*payments.Payment], error) {
	d, err := s.collecting(sess, id)
	if err != nil {
		return result.Result[*payments.Payment]{}, err
	}
	res := d.Payment.HandleAction(ctx, sess)
	if errors.Is(res.Reason(), ErrAlreadySubmitted) {
		return res, ErrAlreadySubmitted
	}
	if res.OK() {
		d.Steps.Next()
		s.logger.Info("payment wizard submitted",
			zap.String("draft_id", d.ID),
			zap.String("payment_id", res.Value().ID),
		)
	}
	return res, nil
}

// Discard drops the caller's draft.
func (s *Service) Discard(sess session.Session, id string) error {
	if _, err := s.Get(sess, id); err != nil {
		return err
	}
	return s.store.Delete(id)
}

// Summarize snapshots d.
func Summarize(d *SaleDraft) Summary {
	snap := d.Payment.Snapshot()
	views := make([]DraftView, len(snap.Payments))
	for i, p := range snap.Payments {
		views[i] = DraftView{Draft: p, HasFile: p.HasFile()}
		if p.File != nil {
			views[i].FileName = p.File.Name
		}
	}
	return Summary{
		ID:                d.ID,
		SaleID:            snap.SaleID,
		Step:              d.Steps.Current(),
		RequiredAmount:    snap.RequiredAmount,
		TotalPaid:         snap.TotalPaid,
		RemainingAmount:   snap.RemainingAmount,
		IsAmountReached:   snap.IsAmountReached,
		IsPaymentComplete: snap.IsPaymentComplete,
		IsSubmitting:      snap.IsSubmitting,
		IsSubmitted:       snap.Submitted,
		Payments:          views,
	}
}

// Evict removes drafts idle for longer than the TTL, skipping those with a
// submission in flight. It returns how many were removed.
func (s *Service) Evict() int {
	drafts, err := s.store.GetAll()
	if err != nil {
		s.logger.Error("failed to list drafts for eviction", zap.Error(err))
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for _, d := range drafts {
		if d.LastSeen().After(cutoff) || d.Payment.IsSubmitting() {
			continue
		}
		if err := s.store.Delete(d.ID); err == nil {
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info("evicted idle wizard drafts", zap.Int("count", evicted))
	}
	return evicted
}

// StartEviction schedules Evict on schedule, a cron expression such as
// "@every 1m".
func (s *Service) StartEviction(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.Evict() }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	return nil
}

// StopEviction stops the eviction schedule and waits for a running sweep.
func (s *Service) StopEviction() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
