package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ordersourcedomain "github.com/smallbiznis/quotient/internal/ordersource/domain"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

type createStoreRequest struct {
	Name     string `json:"name"`
	ShopURL  string `json:"shop_url"`
	APIToken string `json:"api_token"`
	IsActive *bool  `json:"is_active"`
}

type updateStoreRequest struct {
	Name     string `json:"name"`
	ShopURL  string `json:"shop_url"`
	APIToken string `json:"api_token"`
	IsActive *bool  `json:"is_active"`
}

// connectionTestResponse is shared by the store and catalog probes. A probe
// that reaches the endpoint and fails still answers 200; Success carries the
// verdict.
type connectionTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) ListStores(c *gin.Context) {
	resp, err := s.storeSvc.ListStores(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.CreateStore(c.Request.Context(), storedomain.CreateStoreRequest{
		Name:     strings.TrimSpace(req.Name),
		ShopURL:  strings.TrimSpace(req.ShopURL),
		APIToken: strings.TrimSpace(req.APIToken),
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateStore(c *gin.Context) {
	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.UpdateStore(c.Request.Context(), storedomain.UpdateStoreRequest{
		StoreID:  strings.TrimSpace(c.Param("id")),
		Name:     strings.TrimSpace(req.Name),
		ShopURL:  strings.TrimSpace(req.ShopURL),
		APIToken: strings.TrimSpace(req.APIToken),
		IsActive: req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteStore(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.storeSvc.DeleteStore(c.Request.Context(), storedomain.DeleteStoreRequest{StoreID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) TestStoreConnection(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	st, err := s.storeSvc.GetStore(c.Request.Context(), storedomain.GetStoreRequest{StoreID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	info, err := s.orderSvc.TestConnection(c.Request.Context(), ordersourcedomain.Credentials{
		ShopURL:  st.ShopURL,
		APIToken: st.APIToken,
	})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"data": connectionTestResponse{Message: err.Error()}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": connectionTestResponse{
		Success: true,
		Message: fmt.Sprintf("Connected to %s (%s)", info.Name, info.Email),
	}})
}

func isStoreValidationError(err error) bool {
	switch err {
	case storedomain.ErrInvalidStoreID,
		storedomain.ErrInvalidName,
		storedomain.ErrInvalidShopURL,
		storedomain.ErrInvalidAPIToken:
		return true
	default:
		return false
	}
}
