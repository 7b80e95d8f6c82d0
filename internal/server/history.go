package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	transferdomain "github.com/smallbiznis/quotient/internal/transfer/domain"
)

type deleteFailedRequest struct {
	StoreID string `json:"store_id"`
}

func (s *Server) ListHistory(c *gin.Context) {
	var query transferdomain.ListHistoryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transferSvc.ListHistory(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteHistoryRecord(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.transferSvc.DeleteRecord(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteFailedTransfers(c *gin.Context) {
	var req deleteFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deleted, err := s.transferSvc.DeleteFailed(c.Request.Context(), transferdomain.DeleteFailedRequest{
		StoreID: strings.TrimSpace(req.StoreID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": deleted}})
}
