// Package e2e drives the agreements and query HTTP APIs end to end. Each test
// runs against an in-process server unless AGREEMENTS_BASE_URL or
// QUERY_BASE_URL points it at a deployed one.
package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kuitang/agreements-e2e/internal/app"
	"github.com/kuitang/agreements-e2e/internal/query/querytest"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

// baseURL returns the deployment named by envVar, or starts an in-process
// server for this test.
func baseURL(t *testing.T, envVar string) string {
	t.Helper()
	if u := strings.TrimRight(strings.TrimSpace(os.Getenv(envVar)), "/"); u != "" {
		return u
	}
	return app.StartTestServer(t, app.TestOptions{}).BaseURL
}

// agreementsBaseURL returns the server the agreements API tests target.
func agreementsBaseURL(t *testing.T) string {
	return baseURL(t, "AGREEMENTS_BASE_URL")
}

// queryBaseURL returns a query server with the MTNNN lease processed.
func queryBaseURL(t *testing.T) string {
	t.Helper()
	u := baseURL(t, "QUERY_BASE_URL")
	resp, body := doJSON(t, http.MethodPost, u+"/process", json.RawMessage(querytest.MTNNNJSON()))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "seed MTNNN: %s", body)
	return u
}

// doJSON sends payload (nil for no body) and returns the response with its
// body already read.
func doJSON(t testingT, method, url string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		body = jsonBody(t, payload)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return sendRaw(t, req)
}

// jsonBody encodes payload as a request body.
func jsonBody(t testingT, payload any) io.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// sendRaw sends req and returns the response with its body already read.
func sendRaw(t testingT, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// decodeJSON unmarshals body into a fresh T.
func decodeJSON[T any](t testingT, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body: %s", body)
	return v
}
