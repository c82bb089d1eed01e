package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the status and, on a mismatch, reports the body so
// the API's error message shows up in the failure.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode == expected {
		return
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	assert.Equal(t, expected, resp.StatusCode, "%s %s: %s", resp.Request.Method, resp.Request.URL.Path, bytes.TrimSpace(body))
}

// AssertJSONResponse decodes the body into v.
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v), "decode %s response", resp.Request.URL.Path)
}

// AssertErrorResponse checks the status and that the {"error": ...} message
// contains want.
func AssertErrorResponse(t *testing.T, resp *http.Response, status int, want string) {
	t.Helper()

	AssertStatusCode(t, resp, status)

	var body struct {
		Error string `json:"error"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.NotEmpty(t, body.Error, "error body")
	assert.Contains(t, body.Error, want)
}
