package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

type saveCustomerMappingRequest struct {
	StoreID      string `json:"store_id"`
	CustomerID   int64  `json:"customer_id"`
	BusinessName string `json:"business_name"`
}

func (s *Server) GetCustomerMapping(c *gin.Context) {
	storeID := strings.TrimSpace(c.Param("store_id"))

	resp, err := s.storeSvc.GetCustomerMapping(c.Request.Context(), storedomain.GetCustomerMappingRequest{
		StoreID: storeID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveCustomerMapping(c *gin.Context) {
	var req saveCustomerMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.SaveCustomerMapping(c.Request.Context(), storedomain.SaveCustomerMappingRequest{
		StoreID:      strings.TrimSpace(req.StoreID),
		CustomerID:   req.CustomerID,
		BusinessName: strings.TrimSpace(req.BusinessName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isMappingValidationError(err error) bool {
	switch err {
	case storedomain.ErrInvalidCustomerID:
		return true
	default:
		return false
	}
}
