package projects

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"terraprime/internal/session"
)

var (
	ErrInvalidTransition = errors.New("invalid lot status transition")
	ErrInvalidStatus     = errors.New("invalid lot status")
)

// lotTransitions lists the statuses a lot may move to. The backend has the
// final word; requests outside this table are not forwarded.
var lotTransitions = map[string]map[string]bool{
	LotActive:   {LotReserved: true, LotInactive: true},
	LotReserved: {LotSold: true, LotActive: true},
	LotInactive: {LotActive: true},
	LotSold:     {},
}

// CanTransition reports whether a lot in status from may move to status to.
func CanTransition(from, to string) bool {
	nexts, ok := lotTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// Service provides the project hierarchy use-cases.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListProjects(ctx context.Context, sess session.Session, f Filter) (*ProjectList, error) {
	return s.repo.ListProjects(ctx, sess, f)
}

func (s *Service) GetProject(ctx context.Context, sess session.Session, id string) (*Project, error) {
	return s.repo.GetProject(ctx, sess, id)
}

func (s *Service) CreateProject(ctx context.Context, sess session.Session, in ProjectInput) (*Project, error) {
	p, err := s.repo.CreateProject(ctx, sess, in)
	if err != nil {
		s.logger.Error("failed to create project", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("project created", zap.String("project_id", p.ID), zap.String("user_id", sess.UserID()))
	return p, nil
}

func (s *Service) UpdateProject(ctx context.Context, sess session.Session, id string, in ProjectInput) (*Project, error) {
	return s.repo.UpdateProject(ctx, sess, id, in)
}

func (s *Service) DeleteProject(ctx context.Context, sess session.Session, id string) error {
	if err := s.repo.DeleteProject(ctx, sess, id); err != nil {
		s.logger.Error("failed to delete project", zap.String("project_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Tree returns the project hierarchy with its lot tally.
func (s *Service) Tree(ctx context.Context, sess session.Session, projectID string) (*Tree, LotCount, error) {
	tree, err := s.repo.Tree(ctx, sess, projectID)
	if err != nil {
		s.logger.Error("failed to load project tree", zap.String("project_id", projectID), zap.Error(err))
		return nil, LotCount{}, err
	}
	return tree, tree.Count(), nil
}

func (s *Service) ListStages(ctx context.Context, sess session.Session, projectID string) ([]Stage, error) {
	return s.repo.ListStages(ctx, sess, projectID)
}

func (s *Service) CreateStage(ctx context.Context, sess session.Session, projectID string, in NodeInput) (*Stage, error) {
	return s.repo.CreateStage(ctx, sess, projectID, in)
}

func (s *Service) UpdateStage(ctx context.Context, sess session.Session, id string, in NodeInput) (*Stage, error) {
	return s.repo.UpdateStage(ctx, sess, id, in)
}

func (s *Service) DeleteStage(ctx context.Context, sess session.Session, id string) error {
	return s.repo.DeleteStage(ctx, sess, id)
}

func (s *Service) ListBlocks(ctx context.Context, sess session.Session, stageID string) ([]Block, error) {
	return s.repo.ListBlocks(ctx, sess, stageID)
}

func (s *Service) CreateBlock(ctx context.Context, sess session.Session, stageID string, in NodeInput) (*Block, error) {
	return s.repo.CreateBlock(ctx, sess, stageID, in)
}

func (s *Service) UpdateBlock(ctx context.Context, sess session.Session, id string, in NodeInput) (*Block, error) {
	return s.repo.UpdateBlock(ctx, sess, id, in)
}

func (s *Service) DeleteBlock(ctx context.Context, sess session.Session, id string) error {
	return s.repo.DeleteBlock(ctx, sess, id)
}

func (s *Service) ListLots(ctx context.Context, sess session.Session, blockID string, f LotFilter) (*LotList, error) {
	if f.Status != "" {
		if _, ok := lotTransitions[f.Status]; !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, f.Status)
		}
	}
	return s.repo.ListLots(ctx, sess, blockID, f)
}

func (s *Service) GetLot(ctx context.Context, sess session.Session, id string) (*Lot, error) {
	return s.repo.GetLot(ctx, sess, id)
}

func (s *Service) CreateLot(ctx context.Context, sess session.Session, blockID string, in LotInput) (*Lot, error) {
	lot, err := s.repo.CreateLot(ctx, sess, blockID, in)
	if err != nil {
		s.logger.Error("failed to create lot", zap.String("block_id", blockID), zap.Error(err))
		return nil, err
	}
	return lot, nil
}

func (s *Service) UpdateLot(ctx context.Context, sess session.Session, id string, in LotInput) (*Lot, error) {
	return s.repo.UpdateLot(ctx, sess, id, in)
}

func (s *Service) DeleteLot(ctx context.Context, sess session.Session, id string) error {
	return s.repo.DeleteLot(ctx, sess, id)
}

// UpdateLotStatus forwards a status change after checking it locally.
func (s *Service) UpdateLotStatus(ctx context.Context, sess session.Session, id, status string) (*Lot, error) {
	if _, known := lotTransitions[status]; !known {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, status)
	}

	lot, err := s.repo.GetLot(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(lot.Status, status) {
		s.logger.Warn("rejected lot transition",
			zap.String("lot_id", id),
			zap.String("from", lot.Status),
			zap.String("to", status),
		)
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, lot.Status, status)
	}

	updated, err := s.repo.UpdateLotStatus(ctx, sess, id, status)
	if err != nil {
		s.logger.Error("failed to update lot status", zap.String("lot_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("lot status updated",
		zap.String("lot_id", id),
		zap.String("from", lot.Status),
		zap.String("to", status),
		zap.String("user_id", sess.UserID()),
	)
	return updated, nil
}
