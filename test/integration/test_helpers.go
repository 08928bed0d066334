//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/app"
	"bizdesk/internal/config"
	"bizdesk/internal/model"
)

// fakeBackend plays every upstream service on one listener.
type fakeBackend struct {
	mu       sync.Mutex
	invoices []model.Invoice
	nextID   int
	failPut  bool
	secret   []byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		secret: []byte("backend-secret"),
		nextID: 100,
		invoices: []model.Invoice{
			{TransactionID: 1, InvoiceNumber: "INV-001", Amount: 1500, Status: "Paid", BankName: "Axis"},
			{TransactionID: 2, InvoiceNumber: "INV-002", Amount: 250, Status: "pending", BankName: "HDFC"},
			{TransactionID: 3, InvoiceNumber: "INV-003", Amount: 980, Status: "paid", BankName: "ICICI"},
		},
	}
}

func (b *fakeBackend) token(t *testing.T, email string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":  email,
		"role":   "Finance Manager",
		"org_id": 1,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(b.secret)
	require.NoError(t, err)
	return token
}

func (b *fakeBackend) routes(t *testing.T) http.Handler {
	r := chi.NewRouter()

	r.Post("/salogin", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": b.token(t, creds["email"])})
	})

	r.Route("/finance", func(fin chi.Router) {
		fin.Use(b.requireBearer)
		fin.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			_ = json.NewEncoder(w).Encode(b.invoices)
		})
		fin.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var inv model.Invoice
			_ = json.NewDecoder(r.Body).Decode(&inv)
			b.mu.Lock()
			defer b.mu.Unlock()
			b.nextID++
			inv.TransactionID = b.nextID
			b.invoices = append(b.invoices, inv)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": inv})
		})
		fin.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.failPut {
				http.Error(w, "database unavailable", http.StatusInternalServerError)
				return
			}
			raw, _ := io.ReadAll(r.Body)
			var inv model.Invoice
			_ = json.Unmarshal(raw, &inv)
			id, _ := strconv.Atoi(chi.URLParam(r, "id"))
			for i := range b.invoices {
				if b.invoices[i].TransactionID == id {
					b.invoices[i] = inv
				}
			}
			w.WriteHeader(http.StatusNoContent)
		})
		fin.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, _ := strconv.Atoi(chi.URLParam(r, "id"))
			b.mu.Lock()
			defer b.mu.Unlock()
			out := b.invoices[:0]
			for _, inv := range b.invoices {
				if inv.TransactionID != id {
					out = append(out, inv)
				}
			}
			b.invoices = out
			w.WriteHeader(http.StatusOK)
		})
	})

	return r
}

func (b *fakeBackend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.Header.Get("Authorization")) <= len("Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *fakeBackend) setFailPut(fail bool) {
	b.mu.Lock()
	b.failPut = fail
	b.mu.Unlock()
}

func newConsole(t *testing.T, backend *fakeBackend) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(backend.routes(t))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		ServerPort:       "0",
		ShutdownTimeout:  time.Second,
		RequestTimeout:   5 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		EmployeesURL:     upstream.URL,
		ClientsURL:       upstream.URL,
		FinanceURL:       upstream.URL,
		ProjectsURL:      upstream.URL,
		AuthURL:          upstream.URL,
		AuthLoginPath:    "salogin",
		UpstreamTimeout:  5 * time.Second,
		ViewTTL:          time.Minute,
		LogFormat:        "pretty",
	}
	require.NoError(t, cfg.Validate())

	application, err := app.New(cfg)
	require.NoError(t, err)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *model.Meta `json:"meta"`
}

type viewBody struct {
	ViewID  string           `json:"view_id"`
	State   string           `json:"state"`
	Term    string           `json:"term"`
	Editing string           `json:"editing"`
	Total   int              `json:"total"`
	Records []map[string]any `json:"records"`
	Sort    *struct {
		Field     string `json:"field"`
		Direction string `json:"direction"`
	} `json:"sort"`
}

func call(t *testing.T, method string, url string, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeView(t *testing.T, env envelope) viewBody {
	t.Helper()

	var v viewBody
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func login(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	status, env := call(t, http.MethodPost, server.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, status)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func invoiceNumbers(v viewBody) []string {
	out := make([]string, 0, len(v.Records))
	for _, r := range v.Records {
		out = append(out, r["invoice_number"].(string))
	}
	return out
}
