// Package testutil drives the assembled router the way an officer's browser
// does: JSON bodies, bearer tokens, and the error envelope httputil writes.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// ErrorBody is the envelope written by httputil.WriteError.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// OfficerRequest builds a request carrying token as a bearer credential.
// A nil body sends no payload; anything else is sent as JSON. An empty token
// leaves the request anonymous.
func OfficerRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// Serve runs req through h.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON requires status and decodes the body into T.
func DecodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder, status int) T {
	t.Helper()
	require.Equal(t, status, rr.Code, "body: %s", rr.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// RequireError requires status and the error code in the envelope.
func RequireError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) ErrorBody {
	t.Helper()
	body := DecodeJSON[ErrorBody](t, rr, status)
	require.Equal(t, code, body.Error)
	return body
}
