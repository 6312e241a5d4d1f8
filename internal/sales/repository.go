package sales

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"terraprime/internal/gateway"
)

// Repository is the backend surface for sales.
type Repository interface {
	Create(ctx context.Context, creds gateway.Credentials, req CreateSaleRequest) (*Sale, error)
	List(ctx context.Context, creds gateway.Credentials, f Filter) (*SaleList, error)
	Get(ctx context.Context, creds gateway.Credentials, id string) (*Sale, error)
	UpdateStatus(ctx context.Context, creds gateway.Credentials, id, status string) (*Sale, error)
	Amortization(ctx context.Context, creds gateway.Credentials, req AmortizationRequest) (*AmortizationSchedule, error)
	Financing(ctx context.Context, creds gateway.Credentials, saleID string) (*Financing, error)
}

// HTTPRepository implements Repository over the backend gateway.
type HTTPRepository struct {
	gw *gateway.Client
}

// NewHTTPRepository creates a new HTTPRepository.
func NewHTTPRepository(gw *gateway.Client) *HTTPRepository {
	return &HTTPRepository{gw: gw}
}

func (r *HTTPRepository) Create(ctx context.Context, creds gateway.Credentials, req CreateSaleRequest) (*Sale, error) {
	sale, err := gateway.Call[Sale](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodPost,
		Path:   "/sales",
		Body:   req,
	})
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return &sale, nil
}

func (r *HTTPRepository) List(ctx context.Context, creds gateway.Credentials, f Filter) (*SaleList, error) {
	q := f.Page.Query()
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.ClientID != "" {
		q["clientId"] = f.ClientID
	}
	if f.Search != "" {
		q["search"] = f.Search
	}
	page, err := gateway.Call[SaleList](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/sales",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return &page, nil
}

func (r *HTTPRepository) Get(ctx context.Context, creds gateway.Credentials, id string) (*Sale, error) {
	sale, err := gateway.Call[Sale](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/sales/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get sale %s: %w", id, err)
	}
	return &sale, nil
}

func (r *HTTPRepository) UpdateStatus(ctx context.Context, creds gateway.Credentials, id, status string) (*Sale, error) {
	sale, err := gateway.Call[Sale](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodPatch,
		Path:   "/sales/" + url.PathEscape(id) + "/status",
		Body:   map[string]string{"status": status},
	})
	if err != nil {
		return nil, fmt.Errorf("update sale %s status: %w", id, err)
	}
	return &sale, nil
}

func (r *HTTPRepository) Amortization(ctx context.Context, creds gateway.Credentials, req AmortizationRequest) (*AmortizationSchedule, error) {
	schedule, err := gateway.Call[AmortizationSchedule](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodPost,
		Path:   "/sales/amortization",
		Body:   req,
	})
	if err != nil {
		return nil, fmt.Errorf("amortization schedule: %w", err)
	}
	return &schedule, nil
}

func (r *HTTPRepository) Financing(ctx context.Context, creds gateway.Credentials, saleID string) (*Financing, error) {
	fin, err := gateway.Call[Financing](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/sales/" + url.PathEscape(saleID) + "/financing",
	})
	if err != nil {
		return nil, fmt.Errorf("get financing for sale %s: %w", saleID, err)
	}
	return &fin, nil
}
