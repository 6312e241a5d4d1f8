package sales

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"terraprime/internal/session"
)

// ErrInvalidTransition is returned for a status change the sale cannot make.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidStatus is returned for an unknown status value.
var ErrInvalidStatus = errors.New("invalid status value")

// ErrInvalidAmount is returned when a sale total is not positive.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// ErrInvalidFinancing is returned when financing terms are inconsistent.
var ErrInvalidFinancing = errors.New("invalid financing terms")

var transitions = map[string]map[string]bool{
	StatusPending:   {StatusInPayment: true, StatusCancelled: true},
	StatusInPayment: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Service provides the sales use-cases on top of a Repository.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new Service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateSale validates the terms locally and registers the sale.
func (s *Service) CreateSale(ctx context.Context, sess session.Session, req CreateSaleRequest) (*Sale, error) {
	if req.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.PaymentMethod == MethodFinanced {
		if req.InstallmentCount <= 0 || req.InitialAmount < 0 || req.InitialAmount >= req.TotalAmount {
			return nil, fmt.Errorf("%w: initial amount must be below the total and installments positive", ErrInvalidFinancing)
		}
	}

	sale, err := s.repo.Create(ctx, sess, req)
	if err != nil {
		s.logger.Error("failed to create sale",
			zap.String("client_id", req.ClientID),
			zap.String("lot_id", req.LotID),
			zap.Float64("amount", req.TotalAmount),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("sale created", zap.String("sale_id", sale.ID), zap.String("user_id", sess.UserID()))
	return sale, nil
}

// SearchSales lists sales matching f and aggregates the returned page.
func (s *Service) SearchSales(ctx context.Context, sess session.Session, f Filter) (*SaleList, SalesMetadata, error) {
	if f.Status != "" {
		switch f.Status {
		case StatusPending, StatusInPayment, StatusCompleted, StatusCancelled:
		default:
			s.logger.Warn("invalid status filter provided", zap.String("status_filter", f.Status))
			return nil, SalesMetadata{}, fmt.Errorf("%w: '%s'", ErrInvalidStatus, f.Status)
		}
	}

	page, err := s.repo.List(ctx, sess, f)
	if err != nil {
		s.logger.Error("failed to list sales", zap.String("status_filter", f.Status), zap.Error(err))
		return nil, SalesMetadata{}, err
	}

	metadata := Summarize(page.Data)
	s.logger.Debug("sales search completed",
		zap.String("status_filter", f.Status),
		zap.Int("results_count", len(page.Data)),
		zap.Any("metadata", metadata),
	)
	return page, metadata, nil
}

// GetSale fetches one sale.
func (s *Service) GetSale(ctx context.Context, sess session.Session, id string) (*Sale, error) {
	sale, err := s.repo.Get(ctx, sess, id)
	if err != nil {
		s.logger.Error("failed to get sale", zap.String("sale_id", id), zap.Error(err))
		return nil, err
	}
	return sale, nil
}

// UpdateSaleStatus moves a sale to newStatus when the transition is allowed.
func (s *Service) UpdateSaleStatus(ctx context.Context, sess session.Session, id, newStatus string) (*Sale, error) {
	if _, known := transitions[newStatus]; !known {
		return nil, ErrInvalidStatus
	}

	sale, err := s.repo.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !transitions[sale.Status][newStatus] {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, sess, id, newStatus)
	if err != nil {
		s.logger.Error("failed to update sale", zap.String("sale_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale status updated",
		zap.String("sale_id", id),
		zap.String("from", sale.Status),
		zap.String("to", newStatus),
	)
	return updated, nil
}

// PreviewAmortization asks the backend for a financing schedule.
func (s *Service) PreviewAmortization(ctx context.Context, sess session.Session, req AmortizationRequest) (*AmortizationSchedule, error) {
	if req.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.InstallmentCount <= 0 || req.InitialAmount < 0 || req.InitialAmount >= req.TotalAmount || req.InterestRate < 0 {
		return nil, ErrInvalidFinancing
	}

	schedule, err := s.repo.Amortization(ctx, sess, req)
	if err != nil {
		s.logger.Error("failed to compute amortization", zap.Error(err))
		return nil, err
	}
	return schedule, nil
}

// GetFinancing fetches the financing plan of a sale.
func (s *Service) GetFinancing(ctx context.Context, sess session.Session, saleID string) (*Financing, error) {
	fin, err := s.repo.Financing(ctx, sess, saleID)
	if err != nil {
		s.logger.Error("failed to get financing", zap.String("sale_id", saleID), zap.Error(err))
		return nil, err
	}
	return fin, nil
}

// Summarize counts sales per status and adds up their totals.
func Summarize(list []Sale) SalesMetadata {
	metadata := SalesMetadata{}
	for _, sale := range list {
		metadata.Quantity++
		metadata.TotalAmount += sale.TotalAmount
		switch sale.Status {
		case StatusPending:
			metadata.Pending++
		case StatusInPayment:
			metadata.InPayment++
		case StatusCompleted:
			metadata.Completed++
		case StatusCancelled:
			metadata.Cancelled++
		}
	}
	return metadata
}
