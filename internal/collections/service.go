package collections

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"terraprime/internal/payments"
	"terraprime/internal/sales"
	"terraprime/internal/session"
)

var (
	ErrMissingReceipt = errors.New("a voucher file is required")
	ErrInvalidAmount  = errors.New("amount must be greater than zero")
)

type Service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{repo: repo, now: time.Now, logger: logger}
}

func (s *Service) Debtors(ctx context.Context, sess session.Session, f Filter) (*DebtorList, error) {
	page, err := s.repo.Debtors(ctx, sess, f)
	if err != nil {
		s.logger.Error("failed to list debtors", zap.Bool("overdue_only", f.OverdueOnly), zap.Error(err))
		return nil, err
	}
	return page, nil
}

// Statement lists the installments of a client with their running totals.
func (s *Service) Statement(ctx context.Context, sess session.Session, clientID string) (*Statement, error) {
	list, err := s.repo.Installments(ctx, sess, clientID)
	if err != nil {
		s.logger.Error("failed to list installments", zap.String("client_id", clientID), zap.Error(err))
		return nil, err
	}
	st := NewStatement(list, s.now())
	return &st, nil
}

// PayInstallment registers a voucher against one installment.
func (s *Service) PayInstallment(ctx context.Context, sess session.Session, installmentID string, in InstallmentPayment, receipt payments.Receipt) (*sales.Installment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(receipt.Data) == 0 {
		return nil, ErrMissingReceipt
	}

	inst, err := s.repo.PayInstallment(ctx, sess, installmentID, in, receipt)
	if err != nil {
		s.logger.Error("failed to pay installment",
			zap.String("installment_id", installmentID),
			zap.Float64("amount", in.Amount),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("installment payment registered",
		zap.String("installment_id", installmentID),
		zap.String("status", inst.Status),
		zap.String("user_id", sess.UserID()),
	)
	return inst, nil
}

// NewStatement totals list in cents. An installment is overdue when the
// backend says so, or when its due date is before now and it is not fully
// paid.
func NewStatement(list []sales.Installment, now time.Time) Statement {
	var total, paid int64
	overdue := 0
	for _, inst := range list {
		amount, got := cents(inst.Amount), cents(inst.PaidAmount)
		total += amount
		paid += got
		if inst.Status == sales.InstallmentLate || (inst.Status != sales.InstallmentPaid && got < amount && inst.DueDate.Before(now)) {
			overdue++
		}
	}
	if list == nil {
		list = []sales.Installment{}
	}
	return Statement{
		Installments: list,
		Total:        float64(total) / 100,
		Paid:         float64(paid) / 100,
		Outstanding:  float64(max(total-paid, 0)) / 100,
		Overdue:      overdue,
	}
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
