package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/server/auth"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/gin-gonic/gin"
)

const (
	ownerKey   = "owner"
	accountKey = "account"
)

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic", "path", c.FullPath(), "recovered", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, syncapi.ErrorResponse{Error: "internal error"})
	})
}

func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// timeout bounds every storage call a request makes.
func (s *HTTPServer) timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.requestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *HTTPServer) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(c, common.ErrorUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			s.writeError(c, err)
			return
		}

		c.Set(ownerKey, userID)
		c.Next()
	}
}

func (s *HTTPServer) loadAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		acct, err := s.services.Accounts.Ensure(c.Request.Context(), c.GetString(ownerKey))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Set(accountKey, acct)
		c.Next()
	}
}

func (s *HTTPServer) requireSyncEntitlement() gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := account(c)
		if !s.services.Quotas.Entitled(acct, quota.ActionSync) {
			adm, err := s.services.Quotas.Check(c.Request.Context(), acct, quota.ActionSync)
			if err != nil {
				s.writeError(c, err)
				return
			}
			s.writeError(c, &common.EntitlementError{Message: adm.Message})
			return
		}
		c.Next()
	}
}

func account(c *gin.Context) *models.Account {
	v, _ := c.Get(accountKey)
	acct, _ := v.(*models.Account)
	return acct
}

// writeError maps an error kind to a status. Unknown errors are logged and
// reported as a generic internal error.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var (
		verr *common.ValidationError
		eerr *common.EntitlementError
	)

	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, syncapi.ErrorResponse{Error: verr.Error(), Details: verr.Details})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		msg := "unauthorized"
		if errors.Is(err, common.ErrTokenExpired) {
			msg = common.ErrTokenExpired.Error()
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, syncapi.ErrorResponse{Error: msg})
	case errors.As(err, &eerr):
		c.AbortWithStatusJSON(http.StatusForbidden, syncapi.ErrorResponse{Error: eerr.Message})
	case errors.Is(err, common.ErrOwnership):
		c.AbortWithStatusJSON(http.StatusForbidden, syncapi.ErrorResponse{Error: "record belongs to another account"})
	case errors.Is(err, common.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, syncapi.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, quota.ErrUnknownAction), errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, syncapi.ErrorResponse{Error: "not found"})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, common.ErrStorageUnavailable):
		s.logger.Warn(c.Request.Context(), "storage unavailable", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, syncapi.ErrorResponse{Error: "storage unavailable"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, syncapi.ErrorResponse{Error: "internal error"})
	}
}
