package leads

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"terraprime/internal/gateway"
)

// Repository is the backend surface for leads.
type Repository interface {
	List(ctx context.Context, creds gateway.Credentials, f Filter) (*LeadList, error)
	Get(ctx context.Context, creds gateway.Credentials, id string) (*Lead, error)
	Create(ctx context.Context, creds gateway.Credentials, in LeadInput) (*Lead, error)
	Update(ctx context.Context, creds gateway.Credentials, id string, in LeadInput) (*Lead, error)
	Delete(ctx context.Context, creds gateway.Credentials, id string) error
	Assign(ctx context.Context, creds gateway.Credentials, id string, a Assignment) (*Lead, error)
	Arrival(ctx context.Context, creds gateway.Credentials, id string) (*Visit, error)
	Departure(ctx context.Context, creds gateway.Credentials, id string) (*Visit, error)
	Visits(ctx context.Context, creds gateway.Credentials, id string) ([]Visit, error)
}

// HTTPRepository implements Repository over the backend gateway.
type HTTPRepository struct {
	gw *gateway.Client
}

// NewHTTPRepository creates a new HTTPRepository.
func NewHTTPRepository(gw *gateway.Client) *HTTPRepository {
	return &HTTPRepository{gw: gw}
}

func leadPath(id string, rest ...string) string {
	p := "/leads/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (r *HTTPRepository) List(ctx context.Context, creds gateway.Credentials, f Filter) (*LeadList, error) {
	q := f.Page.Query()
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.InOffice != nil {
		q["isInOffice"] = strconv.FormatBool(*f.InOffice)
	}
	if f.VendorID != "" {
		q["vendorId"] = f.VendorID
	}
	page, err := gateway.Call[LeadList](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/leads",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return &page, nil
}

func (r *HTTPRepository) Get(ctx context.Context, creds gateway.Credentials, id string) (*Lead, error) {
	return r.lead(ctx, creds, http.MethodGet, leadPath(id), nil)
}

func (r *HTTPRepository) Create(ctx context.Context, creds gateway.Credentials, in LeadInput) (*Lead, error) {
	return r.lead(ctx, creds, http.MethodPost, "/leads", in)
}

func (r *HTTPRepository) Update(ctx context.Context, creds gateway.Credentials, id string, in LeadInput) (*Lead, error) {
	return r.lead(ctx, creds, http.MethodPut, leadPath(id), in)
}

func (r *HTTPRepository) Delete(ctx context.Context, creds gateway.Credentials, id string) error {
	if err := gateway.Exec(ctx, r.gw, creds, gateway.Request{Method: http.MethodDelete, Path: leadPath(id)}); err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	return nil
}

func (r *HTTPRepository) Assign(ctx context.Context, creds gateway.Credentials, id string, a Assignment) (*Lead, error) {
	return r.lead(ctx, creds, http.MethodPost, leadPath(id, "assign"), a)
}

func (r *HTTPRepository) Arrival(ctx context.Context, creds gateway.Credentials, id string) (*Visit, error) {
	return r.visit(ctx, creds, leadPath(id, "visits", "arrival"))
}

func (r *HTTPRepository) Departure(ctx context.Context, creds gateway.Credentials, id string) (*Visit, error) {
	return r.visit(ctx, creds, leadPath(id, "visits", "departure"))
}

func (r *HTTPRepository) Visits(ctx context.Context, creds gateway.Credentials, id string) ([]Visit, error) {
	visits, err := gateway.Call[[]Visit](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   leadPath(id, "visits"),
	})
	if err != nil {
		return nil, fmt.Errorf("list visits of lead %s: %w", id, err)
	}
	return visits, nil
}

func (r *HTTPRepository) lead(ctx context.Context, creds gateway.Credentials, method, path string, body any) (*Lead, error) {
	lead, err := gateway.Call[Lead](ctx, r.gw, creds, gateway.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &lead, nil
}

func (r *HTTPRepository) visit(ctx context.Context, creds gateway.Credentials, path string) (*Visit, error) {
	visit, err := gateway.Call[Visit](ctx, r.gw, creds, gateway.Request{Method: http.MethodPost, Path: path})
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	return &visit, nil
}
