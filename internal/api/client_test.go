package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
)

type fakeSession struct {
	token   string
	cleared int
}

func (s *fakeSession) Token() (string, error) {
	if s.token == "" {
		return "", errors.New("no token")
	}
	return s.token, nil
}

func (s *fakeSession) Clear() error {
	s.cleared++
	s.token = ""
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, s Session) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(model.APIConfig{BaseURL: srv.URL + "/"}, s)
}

func TestClientSendsTokenAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"unread_count": 4}`)
	}, &fakeSession{token: "abc123"})

	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	err := c.Get(context.Background(), "/api/v1/x/", url.Values{"q": {"acme"}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Token abc123", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "q=acme", gotQuery)
	assert.Equal(t, 4, out.UnreadCount)
}

func TestClientOmitsHeaderWithoutToken(t *testing.T) {
	var hasAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, &fakeSession{})

	require.NoError(t, c.Post(context.Background(), "/api/v1/auth/login/", map[string]string{"u": "v"}, nil))
	assert.False(t, hasAuth)
}

func TestClientUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	s := &fakeSession{token: "stale"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail": "Invalid token."}`)
	}, s)

	var fired int32
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	err := c.Get(context.Background(), "/api/v1/customers/companies/", nil, nil)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, 1, s.cleared)
	assert.Equal(t, "", s.token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestClientErrorCarriesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": "IMAP ayarları eksik"}`)
	}, nil)

	err := c.Post(context.Background(), "/fetch/", nil, nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "IMAP ayarları eksik", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("dial tcp"), "fallback"))
}

func TestExtractMessageFieldErrors(t *testing.T) {
	msg := extractMessage([]byte(`{"title": ["This field is required."], "value": ["A valid number is required."]}`))
	assert.Equal(t, "title: This field is required.; value: A valid number is required.", msg)
	assert.Equal(t, "", extractMessage([]byte(`not json`)))
}

func TestClientRetriesOn429(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"ok": true}`)
	}, nil)

	var out map[string]bool
	require.NoError(t, c.Get(context.Background(), "/busy/", nil, &out))
	assert.True(t, out["ok"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientUploadIsMultipart(t *testing.T) {
	var field, filename, body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err == nil {
			data, _ := io.ReadAll(f)
			field, filename, body = "file", hdr.Filename, string(data)
		}
		_, _ = io.WriteString(w, `{"file_name": "quote.pdf", "file_size": 5}`)
	}, nil)

	var out model.Attachment
	err := c.Upload(context.Background(), "/upload/", "file", "quote.pdf", strings.NewReader("hello"), &out)
	require.NoError(t, err)
	assert.Equal(t, "file", field)
	assert.Equal(t, "quote.pdf", filename)
	assert.Equal(t, "hello", body)
	assert.Equal(t, int64(5), out.FileSize)
}

func TestGetListAcceptsBothShapes(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/paged/" {
			_, _ = io.WriteString(w, `{"count": 2, "next": null, "results": [{"id": 1}, {"id": 2}]}`)
			return
		}
		_, _ = io.WriteString(w, `[{"id": 3}]`)
	}, nil)

	paged, err := GetList[item](context.Background(), c, "/paged/", nil)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 1}, {ID: 2}}, paged)

	bare, err := GetList[item](context.Background(), c, "/bare/", nil)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 3}}, bare)
}
