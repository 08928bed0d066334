package restclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type invoice struct {
	TransactionID int     `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
}

type captured struct {
	method string
	path   string
	auth   string
	body   string
}

func newUpstream(t *testing.T, status int, response string) (*httptest.Server, *[]captured) {
	t.Helper()

	calls := &[]captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*calls = append(*calls, captured{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			auth:   r.Header.Get("Authorization"),
			body:   string(body),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	return server, calls
}

func TestCollectionList(t *testing.T) {
	t.Parallel()

	t.Run("bare array with bearer token", func(t *testing.T) {
		server, calls := newUpstream(t, http.StatusOK, `[{"transaction_id":1,"amount":10.5,"status":"paid"}]`)
		client, err := New(server.URL+"/", nil, StaticToken("tok"))
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").List(context.Background())
		require.NoError(t, err)
		require.Equal(t, []invoice{{TransactionID: 1, Amount: 10.5, Status: "paid"}}, got)
		require.Len(t, *calls, 1)
		require.Equal(t, http.MethodGet, (*calls)[0].method)
		require.Equal(t, "/finance", (*calls)[0].path)
		require.Equal(t, "Bearer tok", (*calls)[0].auth)
	})

	t.Run("envelope is unwrapped", func(t *testing.T) {
		server, _ := newUpstream(t, http.StatusOK, `{"success":true,"data":[{"transaction_id":7}]}`)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").List(context.Background())
		require.NoError(t, err)
		require.Equal(t, []invoice{{TransactionID: 7}}, got)
	})

	t.Run("no token means no header", func(t *testing.T) {
		server, calls := newUpstream(t, http.StatusOK, `[]`)
		client, err := New(server.URL, nil, StaticToken(""))
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").List(context.Background())
		require.NoError(t, err)
		require.Empty(t, got)
		require.Empty(t, (*calls)[0].auth)
	})

	t.Run("non-2xx becomes an Error", func(t *testing.T) {
		server, _ := newUpstream(t, http.StatusForbidden, `{"message":"nope"}`)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		_, err = NewCollection[invoice](client, "finance").List(context.Background())
		require.Error(t, err)
		require.True(t, IsStatus(err, http.StatusForbidden))

		var upstream *Error
		require.ErrorAs(t, err, &upstream)
		require.JSONEq(t, `{"message":"nope"}`, string(upstream.Body))
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		server, _ := newUpstream(t, http.StatusOK, `{"oops":`)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		_, err = NewCollection[invoice](client, "finance").List(context.Background())
		require.Error(t, err)
	})
}

func TestCollectionMutations(t *testing.T) {
	t.Parallel()

	t.Run("update sends the record and returns the server copy", func(t *testing.T) {
		server, calls := newUpstream(t, http.StatusOK, `{"transaction_id":3,"amount":99,"status":"paid"}`)
		client, err := New(server.URL, nil, StaticToken("tok"))
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").Update(context.Background(), "3", invoice{TransactionID: 3, Amount: 99})
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "paid", got.Status)

		require.Equal(t, http.MethodPut, (*calls)[0].method)
		require.Equal(t, "/finance/3", (*calls)[0].path)
		var sent invoice
		require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &sent))
		require.Equal(t, 99.0, sent.Amount)
	})

	t.Run("update without body returns nil", func(t *testing.T) {
		server, _ := newUpstream(t, http.StatusNoContent, ``)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").Update(context.Background(), "3", invoice{TransactionID: 3})
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("envelope without data returns nil", func(t *testing.T) {
		server, _ := newUpstream(t, http.StatusOK, `{"success":true,"data":null}`)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").Update(context.Background(), "3", invoice{TransactionID: 3})
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("envelope reporting failure is an error", func(t *testing.T) {
		server, _ := newUpstream(t, http.StatusOK, `{"success":false,"error":{"code":"X"}}`)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		_, err = NewCollection[invoice](client, "finance").Update(context.Background(), "3", invoice{TransactionID: 3})
		require.Error(t, err)
	})

	t.Run("delete escapes the id", func(t *testing.T) {
		server, calls := newUpstream(t, http.StatusOK, ``)
		client, err := New(server.URL+"/api", nil, nil)
		require.NoError(t, err)

		err = NewCollection[invoice](client, "auth/get").Delete(context.Background(), "a b/c@x.io")
		require.NoError(t, err)
		require.Equal(t, http.MethodDelete, (*calls)[0].method)
		require.Equal(t, "/api/auth/get/a%20b%2Fc@x.io", (*calls)[0].path)
	})

	t.Run("create posts to the collection", func(t *testing.T) {
		server, calls := newUpstream(t, http.StatusCreated, `{"transaction_id":12}`)
		client, err := New(server.URL, nil, nil)
		require.NoError(t, err)

		got, err := NewCollection[invoice](client, "finance").Create(context.Background(), invoice{Amount: 1})
		require.NoError(t, err)
		require.Equal(t, 12, got.TransactionID)
		require.Equal(t, http.MethodPost, (*calls)[0].method)
		require.Equal(t, "/finance", (*calls)[0].path)
	})
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	client, err := New(server.URL, &http.Client{Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = NewCollection[invoice](client, "finance").List(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	server, calls := newUpstream(t, http.StatusOK, `{"token":"abc.def.ghi"}`)
	client, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	token, err := client.Login(context.Background(), "salogin", Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)
	require.Equal(t, "/salogin", (*calls)[0].path)
	require.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, (*calls)[0].body)

	empty, _ := newUpstream(t, http.StatusOK, `{}`)
	client, err = New(empty.URL, nil, nil)
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "salogin", Credentials{})
	require.ErrorIs(t, err, ErrNoToken)
}

func TestNewRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := New("localhost:3000", nil, nil)
	require.Error(t, err)
}

func TestCollectionListPath(t *testing.T) {
	t.Parallel()

	server, calls := newUpstream(t, http.StatusOK, `[]`)
	client, err := New(server.URL, nil, nil)
	require.NoError(t, err)

	users := NewCollection[invoice](client, "api/auth/get").WithListPath("api/auth/org/42")
	_, err = users.List(context.Background())
	require.NoError(t, err)
	require.NoError(t, users.Delete(context.Background(), "x@y.z"))

	require.Equal(t, "/api/auth/org/42", (*calls)[0].path)
	require.Equal(t, "/api/auth/get/x@y.z", (*calls)[1].path)
}
