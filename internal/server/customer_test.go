package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
)

func strPtr(s string) *string {
	return &s
}

func TestListCatalogCustomersAppliesLimitDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalogSvc := &fakeCatalogService{
		customers: []catalogdomain.Customer{
			{CustomerID: 1001, BusinessName: strPtr("Acme Wholesale")},
		},
	}
	srv := &Server{catalogSvc: catalogSvc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/customers", srv.ListCatalogCustomers)

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if catalogSvc.lastList.Limit != 100 {
		t.Fatalf("expected default limit 100, got %d", catalogSvc.lastList.Limit)
	}

	var customers []catalogdomain.Customer
	decodeDataResponse(t, resp, &customers)
	if len(customers) != 1 || customers[0].CustomerID != 1001 {
		t.Fatalf("unexpected customers payload: %+v", customers)
	}
}

func TestSearchCatalogCustomersTrimsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalogSvc := &fakeCatalogService{customers: []catalogdomain.Customer{}}
	srv := &Server{catalogSvc: catalogSvc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/customers/search", srv.SearchCatalogCustomers)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/search?q=+ac-10+&limit=25", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if catalogSvc.lastSearch.Query != "ac-10" {
		t.Fatalf("expected trimmed query, got %q", catalogSvc.lastSearch.Query)
	}
	if catalogSvc.lastSearch.Limit != 25 {
		t.Fatalf("expected limit 25, got %d", catalogSvc.lastSearch.Limit)
	}
}

func TestSearchCatalogCustomersEmptyQueryMapsTo400(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{catalogSvc: &fakeCatalogService{err: catalogdomain.ErrInvalidQuery}}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/customers/search", srv.SearchCatalogCustomers)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/search", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if payload := decodeErrorResponse(t, resp); payload.Errors[0].Code != "invalid_query" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}
