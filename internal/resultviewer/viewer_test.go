package resultviewer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/dashboard/*filepath", Handler("/dashboard"))
	return r
}

func TestHandlerServesIndex(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Benchmark Runs") {
		t.Errorf("expected index.html content, got %q", rec.Body.String())
	}
}

func TestHandlerServesStaticAsset(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/dashboard/style.css", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-family") {
		t.Errorf("expected CSS content, got %q", rec.Body.String())
	}
}
