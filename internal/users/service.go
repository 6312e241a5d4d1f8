package users

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"terraprime/internal/pagination"
	"terraprime/internal/session"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrSelfDelete  = errors.New("users cannot delete themselves")
)

// Service provides user and role administration.
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

func (s *Service) ListUsers(ctx context.Context, sess session.Session, f Filter) (*UserList, error) {
	return s.repo.ListUsers(ctx, sess, f)
}

// Vendors lists the users holding the vendor role.
func (s *Service) Vendors(ctx context.Context, sess session.Session, search string, page pagination.Params) (*UserList, error) {
	return s.repo.ListUsers(ctx, sess, Filter{Search: search, Role: RoleVendor, Page: page})
}

func (s *Service) GetUser(ctx context.Context, sess session.Session, id string) (*User, error) {
	return s.repo.GetUser(ctx, sess, id)
}

func (s *Service) CreateUser(ctx context.Context, sess session.Session, in UserInput) (*User, error) {
	u, err := s.repo.CreateUser(ctx, sess, in)
	if err != nil {
		s.logger.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	s.logger.Info("user created", zap.String("new_user_id", u.ID), zap.String("role_id", in.RoleID), zap.String("user_id", sess.UserID()))
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, sess session.Session, id string, in UserInput) (*User, error) {
	return s.repo.UpdateUser(ctx, sess, id, in)
}

func (s *Service) DeleteUser(ctx context.Context, sess session.Session, id string) error {
	if id == sess.UserID() {
		return ErrSelfDelete
	}
	if err := s.repo.DeleteUser(ctx, sess, id); err != nil {
		s.logger.Error("failed to delete user", zap.String("target_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("user deleted", zap.String("target_id", id), zap.String("user_id", sess.UserID()))
	return nil
}

func (s *Service) ListRoles(ctx context.Context, sess session.Session, f Filter) (*RoleList, error) {
	return s.repo.ListRoles(ctx, sess, f)
}

func (s *Service) GetRole(ctx context.Context, sess session.Session, id string) (*Role, error) {
	return s.repo.GetRole(ctx, sess, id)
}

func (s *Service) CreateRole(ctx context.Context, sess session.Session, in RoleInput) (*Role, error) {
	return s.repo.CreateRole(ctx, sess, in)
}

func (s *Service) UpdateRole(ctx context.Context, sess session.Session, id string, in RoleInput) (*Role, error) {
	return s.repo.UpdateRole(ctx, sess, id, in)
}

func (s *Service) DeleteRole(ctx context.Context, sess session.Session, id string) error {
	if err := s.repo.DeleteRole(ctx, sess, id); err != nil {
		s.logger.Error("failed to delete role", zap.String("role_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Views(ctx context.Context, sess session.Session) ([]View, error) {
	return s.repo.Views(ctx, sess)
}

// SetRoleViews grants viewIDs to a role. Every id must exist in the view tree;
// duplicates are dropped.
func (s *Service) SetRoleViews(ctx context.Context, sess session.Session, roleID string, viewIDs []string) (*Role, error) {
	tree, err := s.repo.Views(ctx, sess)
	if err != nil {
		return nil, err
	}
	known := Flatten(tree)

	ids := make([]string, 0, len(viewIDs))
	for _, id := range viewIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownView, id)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	role, err := s.repo.SetRoleViews(ctx, sess, roleID, ids)
	if err != nil {
		s.logger.Error("failed to set role views", zap.String("role_id", roleID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("role views updated", zap.String("role_id", roleID), zap.Strings("view_ids", ids))
	return role, nil
}

// Menu returns the part of the view tree the caller's role grants.
func (s *Service) Menu(ctx context.Context, sess session.Session) ([]View, error) {
	me, err := s.repo.GetUser(ctx, sess, sess.UserID())
	if err != nil {
		return nil, err
	}
	tree, err := s.repo.Views(ctx, sess)
	if err != nil {
		return nil, err
	}
	if me.Role == nil {
		return []View{}, nil
	}
	granted := make(map[string]bool, len(me.Role.ViewIDs))
	for _, id := range me.Role.ViewIDs {
		granted[id] = true
	}
	return Prune(tree, granted), nil
}
