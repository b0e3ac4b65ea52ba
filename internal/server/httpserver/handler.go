package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into v. An empty body leaves v zero.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return common.NewValidationError(common.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}

func (s *HTTPServer) handlePull(c *gin.Context) {
	ctx := c.Request.Context()
	acct := account(c)

	var req syncapi.PullRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	adm, err := s.services.Quotas.Check(ctx, acct, quota.ActionSync)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !adm.Allowed {
		s.writeError(c, &common.EntitlementError{Message: adm.Message})
		return
	}

	resp, err := s.services.Sync.Pull(ctx, acct.ID, req.LastSyncAt)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handlePush records one sync use once the batch is committed.
func (s *HTTPServer) handlePush(c *gin.Context) {
	ctx := c.Request.Context()
	acct := account(c)

	var req syncapi.PushRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	adm, err := s.services.Quotas.Check(ctx, acct, quota.ActionSync)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !adm.Allowed {
		s.writeError(c, &common.EntitlementError{Message: adm.Message})
		return
	}

	resp, err := s.services.Sync.Push(ctx, acct.ID, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if _, err := s.services.Quotas.Consume(ctx, acct, quota.ActionSync); err != nil {
		s.logger.Warn(ctx, "sync use not recorded", "owner", acct.ID, "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) handleQuotaUsage(c *gin.Context) {
	action := quota.Action(c.Param("action"))

	u, err := s.services.Quotas.Usage(c.Request.Context(), account(c), action)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncapi.QuotaResponse{
		Action:           string(action),
		Plan:             string(u.Plan),
		Window:           string(u.Window),
		Used:             u.Used,
		Limit:            u.Limit,
		Remaining:        u.Remaining,
		Allowed:          u.Remaining > 0,
		ResetAt:          u.ResetAt,
		ResetDescription: u.ResetDescription,
	})
}

// handleQuotaConsume meters actions performed outside this server, such as
// analysis requests the client sends to a third party.
func (s *HTTPServer) handleQuotaConsume(c *gin.Context) {
	ctx := c.Request.Context()
	acct := account(c)
	action := quota.Action(c.Param("action"))

	adm, err := s.services.Quotas.Consume(ctx, acct, action)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !adm.Allowed {
		s.writeError(c, &common.EntitlementError{Message: adm.Message})
		return
	}

	u, err := s.services.Quotas.Usage(ctx, acct, action)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncapi.QuotaResponse{
		Action:           string(action),
		Plan:             string(u.Plan),
		Window:           string(u.Window),
		Used:             u.Used,
		Limit:            u.Limit,
		Remaining:        adm.Remaining,
		Allowed:          true,
		Message:          adm.Message,
		ResetAt:          u.ResetAt,
		ResetDescription: u.ResetDescription,
	})
}

func (s *HTTPServer) handleExport(c *gin.Context) {
	resp, err := s.services.Exports.Export(c.Request.Context(), account(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
