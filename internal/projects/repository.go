package projects

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"terraprime/internal/gateway"
)

// Repository is the backend surface for the project hierarchy.
type Repository interface {
	ListProjects(ctx context.Context, creds gateway.Credentials, f Filter) (*ProjectList, error)
	GetProject(ctx context.Context, creds gateway.Credentials, id string) (*Project, error)
	CreateProject(ctx context.Context, creds gateway.Credentials, in ProjectInput) (*Project, error)
	UpdateProject(ctx context.Context, creds gateway.Credentials, id string, in ProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, creds gateway.Credentials, id string) error
	Tree(ctx context.Context, creds gateway.Credentials, projectID string) (*Tree, error)

	ListStages(ctx context.Context, creds gateway.Credentials, projectID string) ([]Stage, error)
	CreateStage(ctx context.Context, creds gateway.Credentials, projectID string, in NodeInput) (*Stage, error)
	UpdateStage(ctx context.Context, creds gateway.Credentials, id string, in NodeInput) (*Stage, error)
	DeleteStage(ctx context.Context, creds gateway.Credentials, id string) error

	ListBlocks(ctx context.Context, creds gateway.Credentials, stageID string) ([]Block, error)
	CreateBlock(ctx context.Context, creds gateway.Credentials, stageID string, in NodeInput) (*Block, error)
	UpdateBlock(ctx context.Context, creds gateway.Credentials, id string, in NodeInput) (*Block, error)
	DeleteBlock(ctx context.Context, creds gateway.Credentials, id string) error

	ListLots(ctx context.Context, creds gateway.Credentials, blockID string, f LotFilter) (*LotList, error)
	GetLot(ctx context.Context, creds gateway.Credentials, id string) (*Lot, error)
	CreateLot(ctx context.Context, creds gateway.Credentials, blockID string, in LotInput) (*Lot, error)
	UpdateLot(ctx context.Context, creds gateway.Credentials, id string, in LotInput) (*Lot, error)
	DeleteLot(ctx context.Context, creds gateway.Credentials, id string) error
	UpdateLotStatus(ctx context.Context, creds gateway.Credentials, id, status string) (*Lot, error)
}

// HTTPRepository implements Repository over the backend gateway.
type HTTPRepository struct {
	gw *gateway.Client
}

// NewHTTPRepository creates a new HTTPRepository.
func NewHTTPRepository(gw *gateway.Client) *HTTPRepository {
	return &HTTPRepository{gw: gw}
}

func path(kind, id string, rest ...string) string {
	p := "/" + kind + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// fetch runs one call and decodes its answer into T.
func fetch[T any](ctx context.Context, gw *gateway.Client, creds gateway.Credentials, req gateway.Request) (*T, error) {
	v, err := gateway.Call[T](ctx, gw, creds, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return &v, nil
}

func (r *HTTPRepository) remove(ctx context.Context, creds gateway.Credentials, p string) error {
	if err := gateway.Exec(ctx, r.gw, creds, gateway.Request{Method: http.MethodDelete, Path: p}); err != nil {
		return fmt.Errorf("DELETE %s: %w", p, err)
	}
	return nil
}

func (r *HTTPRepository) ListProjects(ctx context.Context, creds gateway.Credentials, f Filter) (*ProjectList, error) {
	q := f.Page.Query()
	if f.Search != "" {
		q["search"] = f.Search
	}
	return fetch[ProjectList](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: "/projects", Query: q})
}

func (r *HTTPRepository) GetProject(ctx context.Context, creds gateway.Credentials, id string) (*Project, error) {
	return fetch[Project](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: path("projects", id)})
}

func (r *HTTPRepository) CreateProject(ctx context.Context, creds gateway.Credentials, in ProjectInput) (*Project, error) {
	return fetch[Project](ctx, r.gw, creds, gateway.Request{Method: http.MethodPost, Path: "/projects", Body: in})
}

func (r *HTTPRepository) UpdateProject(ctx context.Context, creds gateway.Credentials, id string, in ProjectInput) (*Project, error) {
	return fetch[Project](ctx, r.gw, creds, gateway.Request{Method: http.MethodPut, Path: path("projects", id), Body: in})
}

func (r *HTTPRepository) DeleteProject(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.remove(ctx, creds, path("projects", id))
}

func (r *HTTPRepository) Tree(ctx context.Context, creds gateway.Credentials, projectID string) (*Tree, error) {
	return fetch[Tree](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: path("projects", projectID, "tree")})
}

func (r *HTTPRepository) ListStages(ctx context.Context, creds gateway.Credentials, projectID string) ([]Stage, error) {
	stages, err := fetch[[]Stage](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: path("projects", projectID, "stages")})
	if err != nil {
		return nil, err
	}
	return *stages, nil
}

func (r *HTTPRepository) CreateStage(ctx context.Context, creds gateway.Credentials, projectID string, in NodeInput) (*Stage, error) {
	return fetch[Stage](ctx, r.gw, creds, gateway.Request{Method: http.MethodPost, Path: path("projects", projectID, "stages"), Body: in})
}

func (r *HTTPRepository) UpdateStage(ctx context.Context, creds gateway.Credentials, id string, in NodeInput) (*Stage, error) {
	return fetch[Stage](ctx, r.gw, creds, gateway.Request{Method: http.MethodPut, Path: path("stages", id), Body: in})
}

func (r *HTTPRepository) DeleteStage(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.remove(ctx, creds, path("stages", id))
}

func (r *HTTPRepository) ListBlocks(ctx context.Context, creds gateway.Credentials, stageID string) ([]Block, error) {
	blocks, err := fetch[[]Block](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: path("stages", stageID, "blocks")})
	if err != nil {
		return nil, err
	}
	return *blocks, nil
}

func (r *HTTPRepository) CreateBlock(ctx context.Context, creds gateway.Credentials, stageID string, in NodeInput) (*Block, error) {
	return fetch[Block](ctx, r.gw, creds, gateway.Request{Method: http.MethodPost, Path: path("stages", stageID, "blocks"), Body: in})
}

func (r *HTTPRepository) UpdateBlock(ctx context.Context, creds gateway.Credentials, id string, in NodeInput) (*Block, error) {
	return fetch[Block](ctx, r.gw, creds, gateway.Request{Method: http.MethodPut, Path: path("blocks", id), Body: in})
}

func (r *HTTPRepository) DeleteBlock(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.remove(ctx, creds, path("blocks", id))
}

func (r *HTTPRepository) ListLots(ctx context.Context, creds gateway.Credentials, blockID string, f LotFilter) (*LotList, error) {
	q := f.Page.Query()
	if f.Status != "" {
		q["status"] = f.Status
	}
	return fetch[LotList](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: path("blocks", blockID, "lots"), Query: q})
}

func (r *HTTPRepository) GetLot(ctx context.Context, creds gateway.Credentials, id string) (*Lot, error) {
	return fetch[Lot](ctx, r.gw, creds, gateway.Request{Method: http.MethodGet, Path: path("lots", id)})
}

func (r *HTTPRepository) CreateLot(ctx context.Context, creds gateway.Credentials, blockID string, in LotInput) (*Lot, error) {
	return fetch[Lot](ctx, r.gw, creds, gateway.Request{Method: http.MethodPost, Path: path("blocks", blockID, "lots"), Body: in})
}

func (r *HTTPRepository) UpdateLot(ctx context.Context, creds gateway.Credentials, id string, in LotInput) (*Lot, error) {
	return fetch[Lot](ctx, r.gw, creds, gateway.Request{Method: http.MethodPut, Path: path("lots", id), Body: in})
}

func (r *HTTPRepository) DeleteLot(ctx context.Context, creds gateway.Credentials, id string) error {
	return r.remove(ctx, creds, path("lots", id))
}

func (r *HTTPRepository) UpdateLotStatus(ctx context.Context, creds gateway.Credentials, id, status string) (*Lot, error) {
	return fetch[Lot](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodPatch,
		Path:   path("lots", id, "status"),
		Body:   map[string]string{"status": status},
	})
}
