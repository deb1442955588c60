package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu        sync.Mutex
	access    string
	next      string
	refreshOK bool
	refreshes int
	expired   int
	stale     []string
}

func (f *fakeTokens) AccessToken(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) Refresh(_ context.Context, stale string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	f.stale = append(f.stale, stale)
	if !f.refreshOK {
		return false
	}
	f.access = f.next
	return true
}

func (f *fakeTokens) Expire(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired++
	f.access = ""
}

func newTestClient(t *testing.T, handler http.HandlerFunc, decoder Decoder, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts := []Option{WithHTTPClient(server.Client())}
	if tokens != nil {
		opts = append(opts, WithTokenSource(tokens))
	}
	client, err := NewClient("commerce", server.URL, decoder, opts...)
	require.NoError(t, err)
	return client
}

func TestDoAttachesBearerAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"code":200,"data":{"id":"o1"}}`)
	}, CommerceEnvelope{}, &fakeTokens{access: "tok-1"})

	var out struct {
		ID string `json:"id"`
	}
	err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/api/orders/o1",
		Query:  url.Values{"page": {"1"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "page=1", gotQuery)
	assert.Equal(t, "/api/orders/o1", gotPath)
	assert.Equal(t, "o1", out.ID)
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	var present bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, CommerceEnvelope{}, &fakeTokens{})

	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/api/orders/1"}, nil))
	assert.False(t, present)
}

func TestDoRefreshesOnceAndRetriesWithNewToken(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"token expired"}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":200,"data":[{"id":"a"}],"total":1,"page":1,"size":1000}`)
	}, CommerceEnvelope{}, nil)
	tokens := &fakeTokens{access: "stale", next: "fresh", refreshOK: true}
	client = client.WithTokens(tokens)

	var page struct {
		Items []map[string]string `json:"items"`
		Total int                 `json:"total"`
	}
	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/orders"}, &page)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer stale", "Bearer fresh"}, seen)
	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, []string{"stale"}, tokens.stale)
	assert.Equal(t, 0, tokens.expired)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
}

func TestDoSecondUnauthorizedIsNotRefreshedAgain(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"still no"}`)
	}, CommerceEnvelope{}, nil)
	tokens := &fakeTokens{access: "a", next: "b", refreshOK: true}
	client = client.WithTokens(tokens)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/products"}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, "still no", pkgerrors.MessageOf(err))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, tokens.refreshes)
	assert.Equal(t, 0, tokens.expired)
}

func TestDoFailedRefreshExpiresSession(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}, CommerceEnvelope{}, nil)
	tokens := &fakeTokens{access: "a"}
	client = client.WithTokens(tokens)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/orders"}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, "Unauthorized", pkgerrors.MessageOf(err))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, tokens.expired)
	assert.Equal(t, "", tokens.AccessToken(context.Background()))
}

func TestDoSurfacesServerMessageOrStatus(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		code    pkgerrors.Code
	}{
		{name: "message", status: http.StatusBadRequest, body: `{"message":"customerId is required"}`, message: "customerId is required", code: pkgerrors.CodeValidation},
		{name: "no message", status: http.StatusInternalServerError, body: `{}`, message: "HTTP 500", code: pkgerrors.CodeUpstream},
		{name: "non json", status: http.StatusBadGateway, body: `<html>`, message: "HTTP 502", code: pkgerrors.CodeUpstream},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"order not found"}`, message: "order not found", code: pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, CommerceEnvelope{}, &fakeTokens{access: "t"})

			err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/orders", Body: map[string]any{"a": 1}}, nil)
			require.Error(t, err)
			assert.Equal(t, tc.message, pkgerrors.MessageOf(err))
			assert.True(t, pkgerrors.IsCode(err, tc.code))
			assert.Equal(t, tc.status, pkgerrors.Dump(err).UpstreamStatus)
			assert.Equal(t, strings.HasPrefix(tc.message, "HTTP "), errors.Is(err, ErrNoServerMessage))
		})
	}
}

func TestDoNetworkFailureIsDependencyError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client, err := NewClient("commerce", baseURL, CommerceEnvelope{})
	require.NoError(t, err)
	err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/orders"}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, "Request failed", pkgerrors.MessageOf(err))
}

func TestDoSendsJSONBody(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"ok":true}`)
	}, CommerceEnvelope{}, nil)

	var out map[string]bool
	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodPost, Path: "orders", Body: map[string]string{"reason": "x"}}, &out))
	assert.Equal(t, map[string]any{"reason": "x"}, got)
	assert.True(t, out["ok"])
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("sso", "/v1", IdentityEnvelope{})
	assert.Error(t, err)
	_, err = NewClient("sso", "http://sso.test", nil)
	assert.Error(t, err)
}

func TestDoForwardsRequestID(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
		_, _ = io.WriteString(w, `{"code":200,"data":{}}`)
	}, CommerceEnvelope{}, nil)

	ctx := WithRequestID(context.Background(), "6f1c7d3e-4a55-4f27-9a10-0c2b8f1e2d3a")
	require.NoError(t, client.Do(ctx, Request{Path: "/api/ping"}, nil))
	assert.Equal(t, "6f1c7d3e-4a55-4f27-9a10-0c2b8f1e2d3a", got)
}
