package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

func TestGetCustomerMappingReturnsMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	storeSvc := &fakeStoreService{
		mapping: &storedomain.CustomerMapping{
			ID:           snowflake.ID(5),
			StoreID:      snowflake.ID(42),
			CustomerID:   1001,
			BusinessName: "Acme Wholesale",
		},
	}
	srv := &Server{storeSvc: storeSvc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/customer-mappings/:store_id", srv.GetCustomerMapping)

	req := httptest.NewRequest(http.MethodGet, "/api/customer-mappings/42", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var mapping storedomain.CustomerMapping
	decodeDataResponse(t, resp, &mapping)
	if mapping.CustomerID != 1001 {
		t.Fatalf("expected customer 1001, got %d", mapping.CustomerID)
	}
}

func TestGetCustomerMappingAbsentMapsTo404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{storeSvc: &fakeStoreService{}}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/customer-mappings/:store_id", srv.GetCustomerMapping)

	req := httptest.NewRequest(http.MethodGet, "/api/customer-mappings/42", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestSaveCustomerMappingForwardsBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	storeSvc := &fakeStoreService{
		mapping: &storedomain.CustomerMapping{ID: snowflake.ID(5), CustomerID: 1001},
	}
	srv := &Server{storeSvc: storeSvc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/customer-mappings", srv.SaveCustomerMapping)

	body := `{"store_id":"42","customer_id":1001,"business_name":" Acme Wholesale "}`
	req := httptest.NewRequest(http.MethodPost, "/api/customer-mappings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if storeSvc.lastSaveMapping.StoreID != "42" || storeSvc.lastSaveMapping.CustomerID != 1001 {
		t.Fatalf("unexpected save request: %+v", storeSvc.lastSaveMapping)
	}
	if storeSvc.lastSaveMapping.BusinessName != "Acme Wholesale" {
		t.Fatalf("expected trimmed business name, got %q", storeSvc.lastSaveMapping.BusinessName)
	}
}

func TestSaveCustomerMappingInvalidCustomerMapsTo400(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{storeSvc: &fakeStoreService{err: storedomain.ErrInvalidCustomerID}}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/customer-mappings", srv.SaveCustomerMapping)

	req := httptest.NewRequest(http.MethodPost, "/api/customer-mappings", bytes.NewBufferString(`{"store_id":"42"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if payload := decodeErrorResponse(t, resp); payload.Errors[0].Code != "invalid_customer_id" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}
