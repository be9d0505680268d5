package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/catalog"
	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

type staticSource struct{}

func (staticSource) GetServices(context.Context) ([]upstream.Service, error) {
	return []upstream.Service{{ID: "5", Names: map[string]string{"default": "Manicure"}}}, nil
}

func (staticSource) GetUsers(context.Context) ([]upstream.User, error) {
	return []upstream.User{{ID: "7", FullName: "Jane Doe", Role: "master"}}, nil
}

func (staticSource) GetHolidays(context.Context) ([]upstream.Holiday, error) { return nil, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	catalogStore := catalog.NewStore(nil, staticSource{}, 0, logger)
	catalogHandler := catalog.NewHandler(catalogStore, "en", logger)

	cfg := &Config{
		Logger:         logger,
		CatalogHandler: catalogHandler,
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterServicesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterUnwiredHandlersReturn404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 404 or 405 for unwired handler, got %d", rr.Code)
	}
}
