package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
)

// HTTPClient talks to the sync server. It is safe for concurrent use.
type HTTPClient struct {
	baseURL     string
	accessToken string
	timeout     time.Duration
	http        *http.Client
}

func NewHTTPClient(baseURL, accessToken string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		timeout:     timeout,
		http:        &http.Client{},
	}, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) Pull(ctx context.Context, since *time.Time) (*syncapi.PullResponse, error) {
	var resp syncapi.PullResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sync/pull", syncapi.PullRequest{LastSyncAt: since}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Push(ctx context.Context, req *syncapi.PushRequest) (*syncapi.PushResponse, error) {
	var resp syncapi.PushResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sync/push", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Usage(ctx context.Context, action string) (*syncapi.QuotaResponse, error) {
	var resp syncapi.QuotaResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/quota/"+url.PathEscape(action), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Export(ctx context.Context) (*syncapi.ExportResponse, error) {
	var resp syncapi.ExportResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/exports", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
		return nil
	}

	return statusError(resp)
}

// statusError maps a non-2xx response to an error kind.
func statusError(resp *http.Response) error {
	var e syncapi.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&e)
	if e.Error == "" {
		e.Error = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if len(e.Details) == 0 {
			return common.NewValidationError(common.FieldError{Field: "request", Message: e.Error})
		}
		return common.NewValidationError(e.Details...)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, e.Error)
	case resp.StatusCode == http.StatusForbidden:
		return &common.EntitlementError{Message: e.Error}
	case resp.StatusCode >= 500:
		return errors.Join(ErrUnavailable, &APIError{Status: resp.StatusCode, Message: e.Error})
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error}
}
