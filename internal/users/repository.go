package users

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"terraprime/internal/gateway"
)

// Repository is the backend surface for users, roles and views.
type Repository interface {
	ListUsers(ctx context.Context, creds gateway.Credentials, f Filter) (*UserList, error)
	GetUser(ctx context.Context, creds gateway.Credentials, id string) (*User, error)
	CreateUser(ctx context.Context, creds gateway.Credentials, in UserInput) (*User, error)
	UpdateUser(ctx context.Context, creds gateway.Credentials, id string, in UserInput) (*User, error)
	DeleteUser(ctx context.Context, creds gateway.Credentials, id string) error

	ListRoles(ctx context.Context, creds gateway.Credentials, f Filter) (*RoleList, error)
	GetRole(ctx context.Context, creds gateway.Credentials, id string) (*Role, error)
	CreateRole(ctx context.Context, creds gateway.Credentials, in RoleInput) (*Role, error)
	UpdateRole(ctx context.Context, creds gateway.Credentials, id string, in RoleInput) (*Role, error)
	DeleteRole(ctx context.Context, creds gateway.Credentials, id string) error
	SetRoleViews(ctx context.Context, creds gateway.Credentials, id string, viewIDs []string) (*Role, error)

	Views(ctx context.Context, creds gateway.Credentials) ([]View, error)
}

type HTTPRepository struct {
	gw *gateway.Client
}

func NewHTTPRepository(gw *gateway.Client) *HTTPRepository {
	return &HTTPRepository{gw: gw}
}

func one[T any](ctx context.Context, gw *gateway.Client, creds gateway.Credentials, method, path string, body any) (*T, error) {
	v, err := gateway.Call[T](ctx, gw, creds, gateway.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &v, nil
}

func (r *HTTPRepository) remove(ctx context.Context, creds gateway.Credentials, path string) error {
	if err := gateway.Exec(ctx, r.gw, creds, gateway.Request{Method: http.MethodDelete, Path: path}); err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	return nil
}

func filterQuery(f Filter) map[string]string {
	q := f.Page.Query()
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.Role != "" {
		q["role"] = f.Role
	}
	return q
}

func (r *HTTPRepository) ListUsers(ctx context.Context, creds gateway.Credentials, f Filter) (*UserList, error) {
	page, err := gateway.Call[UserList](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/users",
		Query:  filterQuery(f),
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &page, nil
}

func (r *HTTPRepository) GetUser(ctx context.Context, creds gateway.Credentials, id string) (*User, error) {
	return one[User](ctx, r.gw, creds, http.MethodGet, "/users/"+url.PathEscape(id), nil)
}

func (r *HTTPRepository) CreateUser(ctx context.Context, creds gateway.Credentials, in UserInput) (*User, error) {
	return one[User](ctx, r.gw, creds, http.MethodPost, "/users", in)
}

func (r *HTTPRepository) UpdateUser(ctx context.Context, creds gateway.Credentials, id string, in UserInput) (*User, error) {
	return one[User](ctx, r.gw, creds, http.MethodPut, "/users/"+url.PathEscape(id), in)
}

func (r *HTTPRepository) DeleteUser(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.remove(ctx, creds, "/users/"+url.PathEscape(id))
}

func (r *HTTPRepository) ListRoles(ctx context.Context, creds gateway.Credentials, f Filter) (*RoleList, error) {
	page, err := gateway.Call[RoleList](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/roles",
		Query:  filterQuery(Filter{Search: f.Search, Page: f.Page}),
	})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return &page, nil
}

func (r *HTTPRepository) GetRole(ctx context.Context, creds gateway.Credentials, id string) (*Role, error) {
	return one[Role](ctx, r.gw, creds, http.MethodGet, "/roles/"+url.PathEscape(id), nil)
}

func (r *HTTPRepository) CreateRole(ctx context.Context, creds gateway.Credentials, in RoleInput) (*Role, error) {
	return one[Role](ctx, r.gw, creds, http.MethodPost, "/roles", in)
}

func (r *HTTPRepository) UpdateRole(ctx context.Context, creds gateway.Credentials, id string, in RoleInput) (*Role, error) {
	return one[Role](ctx, r.gw, creds, http.MethodPut, "/roles/"+url.PathEscape(id), in)
}

func (r *HTTPRepository) DeleteRole(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.remove(ctx, creds, "/roles/"+url.PathEscape(id))
}

func (r *HTTPRepository) SetRoleViews(ctx context.Context, creds gateway.Credentials, id string, viewIDs []string) (*Role, error) {
	return one[Role](ctx, r.gw, creds, http.MethodPut, "/roles/"+url.PathEscape(id)+"/views", ViewGrant{ViewIDs: viewIDs})
}

func (r *HTTPRepository) Views(ctx context.Context, creds gateway.Credentials) ([]View, error) {
	views, err := gateway.Call[[]View](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: "/views"})
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return views, nil
}
