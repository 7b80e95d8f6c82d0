package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

type saveQuotationDefaultsRequest struct {
	StoreID        string `json:"store_id"`
	Status         *int   `json:"status"`
	ShipperID      *int64 `json:"shipper_id"`
	SalesRepID     *int64 `json:"sales_rep_id"`
	TermID         *int64 `json:"term_id"`
	TitlePrefix    string `json:"title_prefix"`
	ExpirationDays int    `json:"expiration_days"`
	DBID           string `json:"db_id"`
}

func (s *Server) GetQuotationDefaults(c *gin.Context) {
	storeID := strings.TrimSpace(c.Param("store_id"))

	resp, err := s.storeSvc.GetQuotationDefaults(c.Request.Context(), storedomain.GetQuotationDefaultsRequest{
		StoreID: storeID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveQuotationDefaults(c *gin.Context) {
	var req saveQuotationDefaultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.SaveQuotationDefaults(c.Request.Context(), storedomain.SaveQuotationDefaultsRequest{
		StoreID:        strings.TrimSpace(req.StoreID),
		Status:         req.Status,
		ShipperID:      req.ShipperID,
		SalesRepID:     req.SalesRepID,
		TermID:         req.TermID,
		TitlePrefix:    strings.TrimSpace(req.TitlePrefix),
		ExpirationDays: req.ExpirationDays,
		DBID:           strings.TrimSpace(req.DBID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
