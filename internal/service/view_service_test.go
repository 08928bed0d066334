package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/collection"
	"bizdesk/internal/event"
	"bizdesk/internal/model"
	"bizdesk/internal/restclient"
	"bizdesk/internal/session"
	"bizdesk/internal/table"
)

func signedSession(t *testing.T, email string) session.Session {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":  email,
		"role":   "admin",
		"org_id": 7,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("not-checked"))
	require.NoError(t, err)

	sess, err := session.Parse(token)
	require.NoError(t, err)
	return sess
}

type employeeUpstream struct {
	failList atomic.Bool
	lastAuth atomic.Value
}

func (u *employeeUpstream) server(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/{org}/employees", func(w http.ResponseWriter, r *http.Request) {
		u.lastAuth.Store(r.Header.Get("Authorization"))
		if u.failList.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode([]model.Employee{
			{EmployeeID: 1, Name: "Ana", Email: "ana@x.io", Role: "dev"},
			{EmployeeID: 2, Name: "Bo", Email: "bo@x.io", Role: "ops"},
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func newViewService(t *testing.T, upstreamURL string, bus event.Bus, ttl time.Duration) *ViewService {
	t.Helper()

	client, err := restclient.New(upstreamURL, nil, nil)
	require.NoError(t, err)

	svc := NewViewService(collection.DefaultCatalog(), map[string]*restclient.Client{
		collection.ServiceEmployees: client,
	}, bus, ttl)
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestViewServiceOpenLoadsWithCallerToken(t *testing.T) {
	t.Parallel()

	upstream := &employeeUpstream{}
	svc := newViewService(t, upstream.server(t).URL, event.NewBus(), time.Minute)
	sess := signedSession(t, "ana@x.io")

	id, view, err := svc.Open(context.Background(), sess, "Employees")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap := view.Snapshot()
	require.Equal(t, table.StateReady, snap.State)
	require.Len(t, snap.Records, 2)
	require.Equal(t, "Bearer "+sess.Token, upstream.lastAuth.Load())
	require.Equal(t, 1, svc.Count())
}

func TestViewServiceOwnership(t *testing.T) {
	t.Parallel()

	upstream := &employeeUpstream{}
	svc := newViewService(t, upstream.server(t).URL, event.NewBus(), time.Minute)
	owner := signedSession(t, "ana@x.io")
	other := signedSession(t, "eve@x.io")

	id, _, err := svc.Open(context.Background(), owner, "employees")
	require.NoError(t, err)

	_, err = svc.Get(other, id)
	require.ErrorIs(t, err, model.ErrViewNotFound)
	require.ErrorIs(t, svc.CloseView(other, id), model.ErrViewNotFound)

	view, err := svc.Get(owner, id)
	require.NoError(t, err)

	require.NoError(t, svc.CloseView(owner, id))
	require.Equal(t, table.StateClosed, view.Snapshot().State)
	require.Equal(t, 0, svc.Count())

	_, err = svc.Get(owner, id)
	require.ErrorIs(t, err, model.ErrViewNotFound)
}

func TestViewServiceUnknownCollection(t *testing.T) {
	t.Parallel()

	svc := newViewService(t, "http://127.0.0.1:1", event.NewBus(), time.Minute)
	sess := signedSession(t, "ana@x.io")

	_, _, err := svc.Open(context.Background(), sess, "payroll")
	require.ErrorIs(t, err, model.ErrCollectionNotFound)

	// invoices exist in the catalog but no finance upstream is configured
	_, _, err = svc.Open(context.Background(), sess, "invoices")
	require.ErrorIs(t, err, model.ErrCollectionNotFound)
}

func TestViewServiceOpenWithoutOrganization(t *testing.T) {
	t.Parallel()

	svc := newViewService(t, "http://127.0.0.1:1", event.NewBus(), time.Minute)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "ana@x.io"}).SignedString([]byte("x"))
	require.NoError(t, err)
	sess, err := session.Parse(token)
	require.NoError(t, err)

	_, _, err = svc.Open(context.Background(), sess, "employees")
	require.ErrorIs(t, err, model.ErrInvalidInput)
	require.Zero(t, svc.Count())
}

func TestViewServiceCollectionsForRole(t *testing.T) {
	t.Parallel()

	svc := newViewService(t, "http://127.0.0.1:1", event.NewBus(), time.Minute)

	entries := svc.Collections(session.Session{Claims: session.Claims{Role: "dev"}})
	allowed := map[string]bool{}
	for _, e := range entries {
		allowed[e.Name] = e.Allowed
	}
	require.True(t, allowed["employees"])
	require.False(t, allowed["invoices"])
	require.False(t, allowed["users"])
}

func TestViewServiceFailedLoadNotifiesOwner(t *testing.T) {
	t.Parallel()

	upstream := &employeeUpstream{}
	upstream.failList.Store(true)

	bus := event.NewBus()
	svc := newViewService(t, upstream.server(t).URL, bus, time.Minute)
	sess := signedSession(t, "ana@x.io")

	events, unsubscribe := bus.Subscribe(event.ForActor("ana@x.io"))
	defer unsubscribe()

	id, view, err := svc.Open(context.Background(), sess, "employees")
	require.NoError(t, err)
	require.Equal(t, table.StateLoading, view.Snapshot().State)

	var notification *table.Notification
	deadline := time.After(time.Second)
	for notification == nil {
		select {
		case e := <-events:
			if e.Type == event.TypeNotification {
				n := e.Payload.(table.Notification)
				notification = &n
				require.Equal(t, id, e.ViewID)
			}
		case <-deadline:
			t.Fatal("no notification published")
		}
	}
	require.Equal(t, table.LevelError, notification.Level)
	require.Equal(t, "employees", notification.Collection)
}

func TestViewServiceExpiryClosesView(t *testing.T) {
	t.Parallel()

	upstream := &employeeUpstream{}
	svc := newViewService(t, upstream.server(t).URL, event.NewBus(), 40*time.Millisecond)
	sess := signedSession(t, "ana@x.io")

	_, view, err := svc.Open(context.Background(), sess, "employees")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return view.Snapshot().State == table.StateClosed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViewServiceShutdownClosesEverything(t *testing.T) {
	t.Parallel()

	upstream := &employeeUpstream{}
	svc := newViewService(t, upstream.server(t).URL, event.NewBus(), time.Minute)

	_, first, err := svc.Open(context.Background(), signedSession(t, "ana@x.io"), "employees")
	require.NoError(t, err)
	_, second, err := svc.Open(context.Background(), signedSession(t, "bo@x.io"), "employees")
	require.NoError(t, err)

	svc.Shutdown()

	require.Equal(t, table.StateClosed, first.Snapshot().State)
	require.Equal(t, table.StateClosed, second.Snapshot().State)
	require.Equal(t, 0, svc.Count())
	require.ErrorIs(t, first.Load(context.Background()), table.ErrClosed)
}
