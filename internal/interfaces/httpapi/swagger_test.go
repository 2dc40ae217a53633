package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAPI_ServesEmbeddedDocument(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	(&Handler{}).OpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/v1/games") {
		t.Fatalf("expected game routes in openapi document")
	}
}

func TestSwaggerUI_PointsAtOpenAPI(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	(&Handler{}).SwaggerUI(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "url: '/openapi.yaml'") {
		t.Fatalf("swagger page does not load the embedded document")
	}
}
