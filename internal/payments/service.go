package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"terraprime/internal/session"
)

var (
	ErrEmptySubmission = errors.New("at least one voucher is required")
	ErrFileMismatch    = errors.New("vouchers and files do not line up")
	ErrMissingReason   = errors.New("a rejection reason is required")
	ErrInvalidStatus   = errors.New("invalid status value")
)

// Service provides the payment review use-cases.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{repo: repo, logger: logger}
}

// Submit sends a voucher batch. Every voucher must carry the index of its
// file, and the files must be in the same order.
func (s *Service) Submit(ctx context.Context, sess session.Session, sub Submission) (*Payment, error) {
	if len(sub.Vouchers) == 0 {
		return nil, ErrEmptySubmission
	}
	if len(sub.Files) != len(sub.Vouchers) {
		return nil, fmt.Errorf("%w: %d vouchers, %d files", ErrFileMismatch, len(sub.Vouchers), len(sub.Files))
	}
	for i, v := range sub.Vouchers {
		if v.FileIndex != i {
			return nil, fmt.Errorf("%w: voucher %d points at file %d", ErrFileMismatch, i, v.FileIndex)
		}
	}

	payment, err := s.repo.Submit(ctx, sess, sub)
	if err != nil {
		s.logger.Error("failed to submit payment",
			zap.String("sale_id", sub.SaleID),
			zap.Int("vouchers", len(sub.Vouchers)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("payment submitted",
		zap.String("sale_id", sub.SaleID),
		zap.String("payment_id", payment.ID),
		zap.Int("vouchers", len(sub.Vouchers)),
	)
	return payment, nil
}

// List returns a page of payments.
func (s *Service) List(ctx context.Context, sess session.Session, f Filter) (*PaymentList, error) {
	switch f.Status {
	case "", StatusPending, StatusApproved, StatusRejected, StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, f.Status)
	}
	page, err := s.repo.List(ctx, sess, f)
	if err != nil {
		s.logger.Error("failed to list payments", zap.Error(err))
		return nil, err
	}
	return page, nil
}

// Get fetches one payment.
func (s *Service) Get(ctx context.Context, sess session.Session, id string) (*Payment, error) {
	return s.repo.Get(ctx, sess, id)
}

// Approve marks a payment as approved by the session user.
func (s *Service) Approve(ctx context.Context, sess session.Session, id string) (*Payment, error) {
	payment, err := s.repo.Approve(ctx, sess, id)
	if err != nil {
		s.logger.Error("failed to approve payment", zap.String("payment_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("payment approved", zap.String("payment_id", id), zap.String("reviewer", sess.UserID()))
	return payment, nil
}

// Reject marks a payment as rejected with a reason.
func (s *Service) Reject(ctx context.Context, sess session.Session, id, reason string) (*Payment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}
	payment, err := s.repo.Reject(ctx, sess, id, reason)
	if err != nil {
		s.logger.Error("failed to reject payment", zap.String("payment_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("payment rejected", zap.String("payment_id", id), zap.String("reviewer", sess.UserID()))
	return payment, nil
}

// Complete closes an approved payment.
func (s *Service) Complete(ctx context.Context, sess session.Session, id string) (*Payment, error) {
	payment, err := s.repo.Complete(ctx, sess, id)
	if err != nil {
		s.logger.Error("failed to complete payment", zap.String("payment_id", id), zap.Error(err))
		return nil, err
	}
	return payment, nil
}
