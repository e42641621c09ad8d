package choices

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type handlerResponse struct {
	Data []Option `json:"data"`
}

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister("colors", Static{
		{Value: "blue", Label: "Blue"},
		{Value: "green", Label: "Green"},
		{Value: "red", Label: "Red"},
	})
	return reg
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handlerResponse {
	t.Helper()
	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestHandler_EmptyQueryReturnsTopOptions(t *testing.T) {
	h := Handler(testRegistry())

	req := httptest.NewRequest(http.MethodGet, "/choices/colors", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := strings.TrimSpace(rec.Header().Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	if payload := decode(t, rec); len(payload.Data) != 3 {
		t.Fatalf("expected 3 options, got %#v", payload.Data)
	}
}

func TestHandler_EmptyQueryWithoutTopReturnsEmptyArray(t *testing.T) {
	h := Handler(testRegistry(), WithEmptyQueryTop(false))

	req := httptest.NewRequest(http.MethodGet, "/choices/colors", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	payload := decode(t, rec)
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_SearchAndLimitClamped(t *testing.T) {
	h := Handler(testRegistry(), WithMaxLimit(1))

	req := httptest.NewRequest(http.MethodGet, "/choices/colors?q=e&limit=10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	payload := decode(t, rec)
	if len(payload.Data) != 1 || payload.Data[0].Value != "blue" {
		t.Fatalf("unexpected payload: %#v", payload.Data)
	}
}

func TestHandler_UnknownSourceIsNotFound(t *testing.T) {
	h := Handler(testRegistry())

	req := httptest.NewRequest(http.MethodGet, "/choices/sizes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_GuardRejects(t *testing.T) {
	h := Handler(testRegistry(), WithGuard(func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))

	req := httptest.NewRequest(http.MethodGet, "/choices/colors?q=r", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := Handler(testRegistry())

	req := httptest.NewRequest(http.MethodPost, "/choices/colors", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestSourceHandler_IgnoresPath(t *testing.T) {
	h := SourceHandler(Static{{Value: "x", Label: "X"}})

	req := httptest.NewRequest(http.MethodGet, "/anything/here?q=x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	payload := decode(t, rec)
	if len(payload.Data) != 1 || payload.Data[0].Value != "x" {
		t.Fatalf("unexpected payload: %#v", payload.Data)
	}
}

func TestHandler_GuardPlainErrorIsForbidden(t *testing.T) {
	h := Handler(testRegistry(), WithGuard(func(*http.Request) error {
		return errors.New("nope")
	}))

	req := httptest.NewRequest(http.MethodGet, "/choices/colors", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestHandler_CustomParams(t *testing.T) {
	h := Handler(testRegistry(), WithSearchParam("term"), WithLimitParam("n"))

	req := httptest.NewRequest(http.MethodGet, "/choices/colors?term=r&n=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	payload := decode(t, rec)
	if len(payload.Data) != 1 || payload.Data[0].Value != "red" {
		t.Fatalf("unexpected payload: %#v", payload.Data)
	}
}
