// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestClient points a client at srv using the server's own HTTP client so
// that closing the server also closes idle connections.
func newTestClient(srv *httptest.Server) *Client {
	return New(srv.URL).WithHTTPClient(srv.Client())
}

// =============================================================================
// SUCCESS TESTS
// =============================================================================

func TestAsk_PlainTextReply(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Goroutines are **cheap**."))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv).Ask(context.Background(), "what & why? 100%")
	require.NoError(t, err)
	assert.Equal(t, "Goroutines are **cheap**.", reply)
	assert.Equal(t, "/chat", gotPath)
	assert.Equal(t, "what & why? 100%", gotQuery)
}

func TestAsk_BodyDecoding(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json string literal", `"line one\nline two"`, "line one\nline two"},
		{"json string with unicode escape", `"café"`, "café"},
		{"quoted but not json", `"hi" said "he"`, `"hi" said "he"`},
		{"json object stays verbatim", `{"a":1}`, `{"a":1}`},
		{"empty body", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			reply, err := newTestClient(srv).Ask(context.Background(), "q")
			require.NoError(t, err)
			assert.Equal(t, tc.want, reply)
		})
	}
}

func TestNew_BaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
	assert.Equal(t, "http://example.com", New("http://example.com/").BaseURL())
	assert.Equal(t, "http://example.com/chat?q=a+b", New("http://example.com").Endpoint("a b"))
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestAsk_ErrorStatusUsesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadGateway, reqErr.Status)
	assert.Equal(t, "upstream exploded", ErrorText(err))
}

func TestAsk_ErrorStatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, "Request failed with status code 500", ErrorText(err))
}

func TestAsk_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	transport := &http.Transport{}
	defer transport.CloseIdleConnections()

	c := New(addr).WithHTTPClient(&http.Client{Transport: transport})
	_, err := c.Ask(context.Background(), "secret question")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	text := ErrorText(err)
	assert.NotEmpty(t, text)
	assert.NotContains(t, text, "secret")
	assert.NotContains(t, text, addr)
}

func TestAsk_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestClient(srv).WithTimeout(50*time.Millisecond).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAsk_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", MaxResponseSize+1)))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, ErrorText(err), "maximum size")
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, FallbackErrorText},
		{"empty request error", &RequestError{}, FallbackErrorText},
		{"body wins", &RequestError{Status: 500, Body: "bad", Cause: errors.New("x")}, "bad"},
		{"json string body", &RequestError{Status: 500, Body: `"quoted"`}, "quoted"},
		{"whitespace body falls through", &RequestError{Body: "  ", Cause: errors.New("dial failed")}, "dial failed"},
		{"plain error", errors.New("boom"), "boom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorText(tc.err))
		})
	}
}

// =============================================================================
// LOGGING TESTS
// =============================================================================

func TestAsk_LogsWithoutQueryText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(srv).WithLogger(zap.New(core))

	_, err := c.Ask(context.Background(), "my private question")
	require.NoError(t, err)

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	fields := completed[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "/chat", fields["path"])

	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "private")
			}
		}
	}
}
