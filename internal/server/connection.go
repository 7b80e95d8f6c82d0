package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storedomain "github.com/smallbiznis/quotient/internal/store/domain"
)

type saveConnectionRequest struct {
	Role         string `json:"role"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	DatabaseName string `json:"database_name"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

func (s *Server) ListSQLConnections(c *gin.Context) {
	resp, err := s.storeSvc.ListConnections(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SaveSQLConnection(c *gin.Context) {
	var req saveConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storeSvc.SaveConnection(c.Request.Context(), storedomain.SaveConnectionRequest{
		Role:         strings.TrimSpace(req.Role),
		Host:         strings.TrimSpace(req.Host),
		Port:         req.Port,
		DatabaseName: strings.TrimSpace(req.DatabaseName),
		Username:     strings.TrimSpace(req.Username),
		Password:     req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TestSQLConnection(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))

	status, err := s.catalogSvc.TestConnection(c.Request.Context(), role)
	if err != nil {
		// Missing or invalid configuration is a request problem; only a
		// reachable-but-failing endpoint reports success=false.
		if errors.Is(err, storedomain.ErrConnectionNotFound) || isValidationError(err) {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": connectionTestResponse{Message: err.Error()}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": connectionTestResponse{
		Success: true,
		Message: fmt.Sprintf("Connected successfully. Server version: %s", status.ServerVersion),
	}})
}

func isConnectionValidationError(err error) bool {
	switch err {
	case storedomain.ErrInvalidRole,
		storedomain.ErrInvalidHost,
		storedomain.ErrInvalidDatabase,
		storedomain.ErrInvalidUsername,
		storedomain.ErrInvalidPassword:
		return true
	default:
		return false
	}
}
