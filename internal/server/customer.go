package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/quotient/internal/catalog/domain"
)

func (s *Server) ListCatalogCustomers(c *gin.Context) {
	var query catalogdomain.ListCustomersRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.ListCustomers(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SearchCatalogCustomers(c *gin.Context) {
	var query catalogdomain.SearchCustomersRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	query.Query = strings.TrimSpace(query.Query)

	resp, err := s.catalogSvc.SearchCustomers(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidRole,
		catalogdomain.ErrInvalidQuery,
		catalogdomain.ErrInvalidCustomerID,
		catalogdomain.ErrInvalidProduct:
		return true
	default:
		return false
	}
}
