package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestRequestContextMiddleware_PropagatesCorrelation(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	handler := RequestContextMiddleware(AccessLogMiddleware("test", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		From(r.Context()).Info("inside_handler")
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set("X-Test-Case", "TC-M02")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("expected request id from traceparent, got %q", got)
	}

	entries := decodeLogLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d: %s", len(entries), buf.String())
	}
	for _, e := range entries {
		if e["test_case"] != "TC-M02" {
			t.Errorf("entry %v missing test_case", e)
		}
		if e["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
			t.Errorf("entry %v missing trace_id", e)
		}
	}
	if entries[1]["msg"] != "http_access" || entries[1]["status"] != float64(http.StatusTeapot) {
		t.Errorf("unexpected access entry: %v", entries[1])
	}
}

func TestRequestContextMiddleware_GeneratesRequestID(t *testing.T) {
	handler := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CorrelationFromContext(r.Context()).RequestID == "" {
			t.Error("request id missing from context")
		}
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agreements", nil))

	if id := rec.Header().Get("X-Request-Id"); !strings.HasPrefix(id, "req-") {
		t.Fatalf("expected generated request id, got %q", id)
	}
}

func TestExtractTraceID_RejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"garbage",
		"00-00000000000000000000000000000000-00f067aa0ba902b7-01",
		"00-4BF92F3577B34DA6A3CE929D0E0E473Z-00f067aa0ba902b7-01",
	} {
		if got := extractTraceID(in); got != "" {
			t.Errorf("extractTraceID(%q) = %q, want empty", in, got)
		}
	}
}

func TestRecoverMiddleware_Returns500(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	handler := RecoverMiddleware("test", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("simulated panic")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agreements", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "handler_panic") {
		t.Fatalf("expected panic to be logged, got %q", buf.String())
	}
}
