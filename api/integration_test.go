package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"terraprime/api"
	"terraprime/internal/collections"
	"terraprime/internal/gateway"
	"terraprime/internal/leads"
	"terraprime/internal/payments"
	"terraprime/internal/projects"
	"terraprime/internal/reports"
	"terraprime/internal/sales"
	"terraprime/internal/session"
	"terraprime/internal/users"
	"terraprime/internal/wizard"
)

const testSecret = "test-secret"

// fakeBackend stands in for the Terra Prime REST backend.
type fakeBackend struct {
	mu          sync.Mutex
	sales       map[string]*sales.Sale
	submissions []submission
}

type submission struct {
	vouchers []payments.VoucherInput
	files    []string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{sales: map[string]*sales.Sale{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sales", func(w http.ResponseWriter, r *http.Request) {
		var req sales.CreateSaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		id := fmt.Sprintf("s%d", len(b.sales)+1)
		sale := &sales.Sale{
			ID:            id,
			Client:        sales.Client{ID: req.ClientID, FirstName: "Rosa"},
			Lot:           sales.LotRef{ID: req.LotID, Name: "A-1"},
			PaymentMethod: req.PaymentMethod,
			TotalAmount:   req.TotalAmount,
			Status:        sales.StatusPending,
			CreatedAt:     time.Now(),
		}
		if req.PaymentMethod == sales.MethodFinanced {
			sale.Financing = &sales.Financing{InitialAmount: req.InitialAmount, InstallmentCount: req.InstallmentCount}
		}
		b.sales[id] = sale
		writeJSON(w, http.StatusCreated, sale)
	})
	mux.HandleFunc("GET /sales", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := sales.SaleList{Data: []sales.Sale{}}
		for _, s := range b.sales {
			if st := r.URL.Query().Get("status"); st != "" && s.Status != st {
				continue
			}
			list.Data = append(list.Data, *s)
		}
		list.Meta.Page, list.Meta.Limit, list.Meta.Total, list.Meta.TotalPages = 1, 10, len(list.Data), 1
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("GET /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.sales[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "sale not found"})
			return
		}
		writeJSON(w, http.StatusOK, s)
	})
	mux.HandleFunc("PATCH /sales/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		s := b.sales[r.PathValue("id")]
		s.Status = body.Status
		s.UpdatedAt = time.Now()
		writeJSON(w, http.StatusOK, s)
	})
	mux.HandleFunc("POST /sales/{id}/payments", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		var sub submission
		json.Unmarshal([]byte(r.FormValue("payments")), &sub.vouchers)
		total := 0.0
		for _, v := range sub.vouchers {
			total += v.Amount
		}
		for _, fh := range r.MultipartForm.File["files"] {
			sub.files = append(sub.files, fh.Filename)
		}
		b.mu.Lock()
		b.submissions = append(b.submissions, sub)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, payments.Payment{ID: "pay-1", SaleID: r.PathValue("id"), Status: payments.StatusPending, Amount: total})
	})
	mux.HandleFunc("POST /reports/pdf", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "slow") {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		if strings.Contains(string(body), "unknown") {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "unknown report type"})
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="ventas.pdf"`)
		w.Write([]byte("%PDF-1.7"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func InitRoutesTests(t *testing.T, backendURL string, opts ...func(*api.Deps)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := zaptest.NewLogger(t)
	gw := gateway.New(gateway.Options{BaseURL: backendURL, Timeout: 2 * time.Second}, logger)
	salesService := sales.NewService(sales.NewHTTPRepository(gw), logger)
	paymentsService := payments.NewService(payments.NewHTTPRepository(gw), logger)

	deps := api.Deps{
		Logger:      logger,
		Sessions:    session.NewParser(testSecret),
		Leads:       leads.NewService(leads.NewHTTPRepository(gw), logger),
		Projects:    projects.NewService(projects.NewHTTPRepository(gw), logger),
		Sales:       salesService,
		Payments:    paymentsService,
		Collections: collections.NewService(collections.NewHTTPRepository(gw), logger),
		Users:       users.NewService(users.NewHTTPRepository(gw), logger),
		Reports:     reports.NewService(gw, 200*time.Millisecond, logger),
		Wizard:      wizard.NewService(wizard.NewLocalStorage(), salesService, paymentsService, time.Hour, logger),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	api.InitRoutes(router, deps)
	return router
}

func token(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	claims := session.Claims{
		UserID: userID,
		Role:   "VENDOR",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func do(router http.Handler, tok, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doJSON(router http.Handler, tok, method, path string, v any) *httptest.ResponseRecorder {
	var body io.Reader
	if v != nil {
		b, _ := json.Marshal(v)
		body = bytes.NewReader(b)
	}
	return do(router, tok, method, path, body, "application/json")
}

// voucherForm builds the multipart body of a wizard voucher.
func voucherForm(t *testing.T, amount string, file string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("bankName", "BCP"))
	require.NoError(t, mw.WriteField("transactionReference", "OP-"+amount))
	require.NoError(t, mw.WriteField("transactionDate", "2026-10-14"))
	require.NoError(t, mw.WriteField("amount", amount))
	if file != "" {
		fw, err := mw.CreateFormFile("file", file)
		require.NoError(t, err)
		fw.Write([]byte("IMG-" + file))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPing(t *testing.T) {
	router := InitRoutesTests(t, "http://127.0.0.1:1")
	w := do(router, "", http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthentication(t *testing.T) {
	router := InitRoutesTests(t, "http://127.0.0.1:1")

	w := do(router, "", http.MethodGet, "/api/sales", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, token(t, "vendor-1", -time.Minute), http.MethodGet, "/api/sales", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")

	w = do(router, "not-a-jwt", http.MethodGet, "/api/sales", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestSalesHappyPath_FullFlow prueba el flujo completo de POST -> PATCH -> GET en el happy path.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	_, backend := newBackend(t)
	router := InitRoutesTests(t, backend.URL)
	tok := token(t, "vendor-1", time.Hour)

	var saleID string

	//1: POST /api/sales
	t.Run("POST_CreateSale", func(t *testing.T) {
		w := doJSON(router, tok, http.MethodPost, "/api/sales", map[string]any{
			"clientId":      "c1",
			"lotId":         "l1",
			"paymentMethod": "DIRECT",
			"totalAmount":   150.75,
		})
		assert.Equal(t, http.StatusCreated, w.Code, "Expected HTTP 201 Created status for successful sale creation")

		var createdSale sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createdSale))
		assert.NotEmpty(t, createdSale.ID, "Expected sale ID to be generated")
		assert.Equal(t, "c1", createdSale.Client.ID)
		assert.Equal(t, 150.75, createdSale.TotalAmount)
		assert.Equal(t, sales.StatusPending, createdSale.Status)

		saleID = createdSale.ID
	})

	if saleID == "" {
		t.Fatal("Sale ID was not successfully generated in POST_CreateSale step.")
	}

	//2: PATCH /api/sales/:id/status
	t.Run("PATCH_UpdateSaleStatus", func(t *testing.T) {
		w := doJSON(router, tok, http.MethodPatch, "/api/sales/"+saleID+"/status", map[string]string{
			"status": sales.StatusInPayment,
		})
		assert.Equal(t, http.StatusOK, w.Code, "Expected HTTP 200 OK for successful sale status update")

		var updatedSale sales.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updatedSale))
		assert.Equal(t, saleID, updatedSale.ID)
		assert.Equal(t, sales.StatusInPayment, updatedSale.Status)
	})

	//3: PATCH with a transition the sale cannot make
	t.Run("PATCH_InvalidTransition", func(t *testing.T) {
		w := doJSON(router, tok, http.MethodPatch, "/api/sales/"+saleID+"/status", map[string]string{
			"status": sales.StatusPending,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	//4: GET /api/sales
	t.Run("GET_SearchSaleByStatus", func(t *testing.T) {
		w := do(router, tok, http.MethodGet, "/api/sales?status="+sales.StatusInPayment, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Results  []sales.Sale        `json:"results"`
			Metadata sales.SalesMetadata `json:"metadata"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Results, 1)
		assert.Equal(t, saleID, response.Results[0].ID)
		assert.Equal(t, 1, response.Metadata.Quantity)
		assert.Equal(t, 1, response.Metadata.InPayment)
		assert.Equal(t, 0, response.Metadata.Pending)
		assert.Equal(t, 150.75, response.Metadata.TotalAmount)
	})

	//5: GET /api/sales with an unknown status
	t.Run("GET_SearchSaleInvalidStatus", func(t *testing.T) {
		w := do(router, tok, http.MethodGet, "/api/sales?status=approved", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	//6: GET /api/sales/:id relays the backend 404
	t.Run("GET_MissingSale", func(t *testing.T) {
		w := do(router, tok, http.MethodGet, "/api/sales/nope", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"sale not found"}`, w.Body.String())
	})
}

func TestPaymentWizard_FullFlow(t *testing.T) {
	b, backend := newBackend(t)
	router := InitRoutesTests(t, backend.URL)
	tok := token(t, "vendor-1", time.Hour)

	w := doJSON(router, tok, http.MethodPost, "/api/sales", map[string]any{
		"clientId": "c1", "lotId": "l1", "paymentMethod": "DIRECT", "totalAmount": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var sale sales.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))

	var summary wizard.Summary
	decode := func(w *httptest.ResponseRecorder) {
		t.Helper()
		summary = wizard.Summary{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	}

	w = do(router, tok, http.MethodPost, "/api/sales/"+sale.ID+"/payment-wizard", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	decode(w)
	wid := summary.ID
	assert.Equal(t, 1000.0, summary.RequiredAmount)
	assert.Equal(t, wizard.StepPayments, summary.Step)

	body, ct := voucherForm(t, "400", "a.jpg")
	w = do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/payments", body, ct)
	require.Equal(t, http.StatusCreated, w.Code)

	body, ct = voucherForm(t, "700", "b.jpg")
	w = do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/payments", body, ct)
	require.Equal(t, http.StatusCreated, w.Code)
	decode(w)
	assert.Equal(t, 1100.0, summary.TotalPaid)
	assert.True(t, summary.IsAmountReached)
	assert.False(t, summary.IsPaymentComplete)

	t.Run("zero amount voucher is accepted", func(t *testing.T) {
		body, ct := voucherForm(t, "0", "")
		w := do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/payments", body, ct)
		require.Equal(t, http.StatusCreated, w.Code)
		decode(w)
		require.Len(t, summary.Payments, 3)
		assert.Equal(t, 0.0, summary.Payments[2].Amount)
		assert.Equal(t, 1100.0, summary.TotalPaid)

		w = do(router, tok, http.MethodDelete, "/api/payment-wizards/"+wid+"/payments/2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		decode(w)
		assert.Len(t, summary.Payments, 2)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		body, ct := voucherForm(t, "-5", "")
		w := do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/payments", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("overpayment is refused without reaching the backend", func(t *testing.T) {
		w := do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/submit", nil, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "warning")
		b.mu.Lock()
		assert.Empty(t, b.submissions)
		b.mu.Unlock()
	})

	t.Run("edit keeps the receipt", func(t *testing.T) {
		body, ct := voucherForm(t, "600", "")
		w := do(router, tok, http.MethodPut, "/api/payment-wizards/"+wid+"/payments/1", body, ct)
		require.Equal(t, http.StatusOK, w.Code)
		decode(w)
		assert.True(t, summary.IsPaymentComplete)
		assert.Equal(t, 0.0, summary.RemainingAmount)
		require.Len(t, summary.Payments, 2)
		assert.Equal(t, "b.jpg", summary.Payments[1].FileName)
		assert.Equal(t, 1, summary.Payments[1].FileIndex)
	})

	t.Run("out of range index", func(t *testing.T) {
		w := do(router, tok, http.MethodDelete, "/api/payment-wizards/"+wid+"/payments/9", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("another user cannot touch the draft", func(t *testing.T) {
		w := do(router, token(t, "vendor-2", time.Hour), http.MethodGet, "/api/payment-wizards/"+wid, nil, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("submit", func(t *testing.T) {
		w := do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/submit", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var payment payments.Payment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payment))
		assert.Equal(t, 1000.0, payment.Amount)

		b.mu.Lock()
		require.Len(t, b.submissions, 1)
		sub := b.submissions[0]
		b.mu.Unlock()
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, sub.files)
		require.Len(t, sub.vouchers, 2)
		assert.Equal(t, 0, sub.vouchers[0].FileIndex)
		assert.Equal(t, 1, sub.vouchers[1].FileIndex)

		w = do(router, tok, http.MethodGet, "/api/payment-wizards/"+wid, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		decode(w)
		assert.Equal(t, wizard.StepConfirmation, summary.Step)
		assert.True(t, summary.IsSubmitted)
	})

	t.Run("a submitted draft is closed", func(t *testing.T) {
		w := do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/submit", nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)

		body, ct := voucherForm(t, "10", "c.jpg")
		w = do(router, tok, http.MethodPost, "/api/payment-wizards/"+wid+"/payments", body, ct)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = do(router, tok, http.MethodDelete, "/api/payment-wizards/"+wid+"/payments/0", nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)

		b.mu.Lock()
		assert.Len(t, b.submissions, 1, "the batch must reach the backend once")
		b.mu.Unlock()
	})

	t.Run("discard", func(t *testing.T) {
		w := do(router, tok, http.MethodDelete, "/api/payment-wizards/"+wid, nil, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = do(router, tok, http.MethodGet, "/api/payment-wizards/"+wid, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReportsProxy(t *testing.T) {
	_, backend := newBackend(t)
	router := InitRoutesTests(t, backend.URL)
	tok := token(t, "admin-1", time.Hour)

	t.Run("document is relayed", func(t *testing.T) {
		w := do(router, tok, http.MethodPost, "/api/reports/pdf", strings.NewReader(`{"type":"sales"}`), "application/json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "ventas.pdf")
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})

	t.Run("backend status is relayed", func(t *testing.T) {
		w := do(router, tok, http.MethodPost, "/api/reports/pdf", strings.NewReader(`{"type":"unknown"}`), "application/json")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("timeout", func(t *testing.T) {
		w := do(router, tok, http.MethodPost, "/api/reports/pdf", strings.NewReader(`{"type":"slow"}`), "application/json")
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.JSONEq(t, `{"error":"report generation timed out"}`, w.Body.String())
	})
}

func TestReportsProxy_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	router := InitRoutesTests(t, url)
	w := do(router, token(t, "admin-1", time.Hour), http.MethodPost, "/api/reports/pdf", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"report service unreachable"}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	router := InitRoutesTests(t, "http://127.0.0.1:1", func(d *api.Deps) {
		d.Limiter = api.NewRateLimiter(0.001, 2, d.Logger)
	})
	tok := token(t, "vendor-1", time.Hour)

	for i := 0; i < 2; i++ {
		w := do(router, tok, http.MethodGet, "/api/payment-wizards/none", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	w := do(router, tok, http.MethodGet, "/api/payment-wizards/none", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = do(router, token(t, "vendor-2", time.Hour), http.MethodGet, "/api/payment-wizards/none", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := api.NewMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.Collectors()...)

	router := InitRoutesTests(t, "http://127.0.0.1:1", func(d *api.Deps) {
		d.Metrics = metrics
		d.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	})

	do(router, "", http.MethodGet, "/ping", nil, "")
	w := do(router, "", http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `terra_prime_http_requests_total{method="GET",path="/ping",status="200"} 1`)
}
