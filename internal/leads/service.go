package leads

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"terraprime/internal/session"
)

var (
	ErrAlreadyInOffice = errors.New("lead is already in the office")
	ErrNotInOffice     = errors.New("lead is not in the office")
)

// Service provides the lead use-cases.
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

func (s *Service) List(ctx context.Context, sess session.Session, f Filter) (*LeadList, error) {
	page, err := s.repo.List(ctx, sess, f)
	if err != nil {
		s.logger.Error("failed to list leads", zap.String("search", f.Search), zap.Error(err))
		return nil, err
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, sess session.Session, id string) (*Lead, error) {
	return s.repo.Get(ctx, sess, id)
}

func (s *Service) Create(ctx context.Context, sess session.Session, in LeadInput) (*Lead, error) {
	lead, err := s.repo.Create(ctx, sess, in)
	if err != nil {
		s.logger.Error("failed to create lead", zap.String("phone", in.Phone), zap.Error(err))
		return nil, err
	}
	s.logger.Info("lead created", zap.String("lead_id", lead.ID), zap.String("user_id", sess.UserID()))
	return lead, nil
}

func (s *Service) Update(ctx context.Context, sess session.Session, id string, in LeadInput) (*Lead, error) {
	lead, err := s.repo.Update(ctx, sess, id, in)
	if err != nil {
		s.logger.Error("failed to update lead", zap.String("lead_id", id), zap.Error(err))
		return nil, err
	}
	return lead, nil
}

func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	if err := s.repo.Delete(ctx, sess, id); err != nil {
		s.logger.Error("failed to delete lead", zap.String("lead_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("lead deleted", zap.String("lead_id", id), zap.String("user_id", sess.UserID()))
	return nil
}

// Assign sets the vendor chain that works the lead.
func (s *Service) Assign(ctx context.Context, sess session.Session, id string, a Assignment) (*Lead, error) {
	lead, err := s.repo.Assign(ctx, sess, id, a)
	if err != nil {
		s.logger.Error("failed to assign lead", zap.String("lead_id", id), zap.String("vendor_id", a.VendorID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("lead assigned",
		zap.String("lead_id", id),
		zap.String("vendor_id", a.VendorID),
		zap.String("liner_id", a.LinerID),
		zap.String("telemarketer_id", a.TelemarketerID),
	)
	return lead, nil
}

// RegisterArrival opens a visit for a lead outside the office.
func (s *Service) RegisterArrival(ctx context.Context, sess session.Session, id string) (*Visit, error) {
	lead, err := s.repo.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if lead.IsInOffice {
		return nil, ErrAlreadyInOffice
	}
	return s.repo.Arrival(ctx, sess, id)
}

// RegisterDeparture closes the open visit of a lead in the office.
func (s *Service) RegisterDeparture(ctx context.Context, sess session.Session, id string) (*Visit, error) {
	lead, err := s.repo.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !lead.IsInOffice {
		return nil, ErrNotInOffice
	}
	return s.repo.Departure(ctx, sess, id)
}

func (s *Service) Visits(ctx context.Context, sess session.Session, id string) ([]Visit, error) {
	return s.repo.Visits(ctx, sess, id)
}
