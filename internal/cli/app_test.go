package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/collection"
	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/service"
	"bizdesk/internal/table"
)

type backend struct {
	mu        sync.Mutex
	employees []model.Employee
	lastPut   map[string]any
	failPut   bool
}

func (b *backend) routes(t *testing.T) http.Handler {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":  "ana@x.io",
		"role":   "admin",
		"org_id": 3,
	}).SignedString([]byte("backend-only"))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/salogin", func(w http.ResponseWriter, r *http.Request) {
		var creds restclient.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
	r.Get("/3/employees", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.employees)
	})
	r.Put("/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failPut {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		b.lastPut = map[string]any{}
		_ = json.Unmarshal(raw, &b.lastPut)
		_, _ = w.Write(raw)
	})
	r.Delete("/employees/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func newTestApp(t *testing.T, b *backend) (*App, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(b.routes(t))
	t.Cleanup(server.Close)

	upstreams, err := restclient.NewSet(map[string]string{
		collection.ServiceEmployees: server.URL,
		collection.ServiceAuth:      server.URL,
	}, server.Client())
	require.NoError(t, err)

	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	app := NewApp(collection.DefaultCatalog(), upstreams,
		service.NewAuthService(upstreams[collection.ServiceAuth], "salogin"), &out)
	t.Cleanup(app.Close)

	return app, &out
}

func TestAppSession(t *testing.T) {
	b := &backend{employees: []model.Employee{
		{EmployeeID: 1, Name: "Zoe", Email: "zoe@x.io", Role: "dev", LPA: 9},
		{EmployeeID: 2, Name: "ana", Email: "ana@x.io", Role: "ops", LPA: 12},
		{EmployeeID: 3, Name: "Bo", Email: "bo@x.io", Role: "dev", LPA: 10},
	}}
	app, out := newTestApp(t, b)
	ctx := context.Background()

	require.ErrorIs(t, app.Open(ctx, "employees"), errNotLoggedIn)

	require.NoError(t, app.Login(ctx, "ana@x.io"))
	require.Contains(t, out.String(), "Logged in as ana@x.io (admin)")
	require.Equal(t, "(ana@x.io)", app.status())

	require.NoError(t, app.Open(ctx, "employees"))
	require.Contains(t, out.String(), "3 of 3 employees")
	require.Equal(t, "(ana@x.io employees)", app.status())

	out.Reset()
	require.NoError(t, app.Sort("name"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Contains(t, lines[0], "NAME ^")
	require.Contains(t, lines[1], "ana")
	require.Contains(t, lines[2], "Bo")
	require.Contains(t, lines[3], "Zoe")

	out.Reset()
	require.NoError(t, app.Search("DEV"))
	require.Contains(t, out.String(), `2 of 3 employees matching "DEV"`)

	out.Reset()
	require.NoError(t, app.Edit(ctx, "3", []string{"name=Bob", "lpa=11.5"}))
	require.Equal(t, "Bob", b.lastPut["name"])
	require.Equal(t, 11.5, b.lastPut["lpa"])
	require.Contains(t, out.String(), "[ok] ")

	require.ErrorIs(t, app.Edit(ctx, "3", []string{"salary=1"}), table.ErrUnknownField)
	require.ErrorContains(t, app.Edit(ctx, "3", []string{"lpa=lots"}), "must be a number")

	out.Reset()
	require.NoError(t, app.Remove(ctx, "1"))
	require.Contains(t, out.String(), "1 of 2 employees")
}

func TestAppFailedEditShowsToastOnly(t *testing.T) {
	b := &backend{employees: []model.Employee{{EmployeeID: 1, Name: "Zoe", Email: "zoe@x.io", Role: "dev"}}, failPut: true}
	app, out := newTestApp(t, b)
	ctx := context.Background()

	require.NoError(t, app.Login(ctx, "ana@x.io"))
	require.NoError(t, app.Open(ctx, "employees"))

	out.Reset()
	err := app.Edit(ctx, "1", []string{"name=Zed"})
	require.ErrorIs(t, err, table.ErrOperationFailed)
	require.Contains(t, out.String(), "[!!] ")

	out.Reset()
	app.report(err)
	require.Empty(t, out.String())

	app.report(errNoView)
	require.Contains(t, out.String(), "error: no table open")
}

func TestAppWithoutView(t *testing.T) {
	app, out := newTestApp(t, &backend{})

	require.ErrorIs(t, app.Load(context.Background()), errNoView)
	require.ErrorIs(t, app.Show(), errNoView)
	require.ErrorIs(t, app.Remove(context.Background(), "1"), errNoView)

	require.NoError(t, app.Collections())
	require.Contains(t, out.String(), "organizations")
	require.Contains(t, out.String(), "[admin only]")
	require.Contains(t, out.String(), "[admin, Finance Manager only]")
}
