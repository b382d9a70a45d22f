// Package api is the REST client for the SmartCafe backend. Responses are
// authoritative; the client never recomputes totals or transitions.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
)

// Client talks to the SmartCafe REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	logg     *logger.Logger
	validate *validator.Validate
}

// NewClient builds a client for the configured base URL.
func NewClient(cfg config.APIConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  base,
		http:     &http.Client{Timeout: timeout},
		logg:     logg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if c.logg != nil {
		logCtx := c.logg.WithRequestID(ctx, requestID)
		c.logg.Debug(c.logg.WithFields(logCtx, map[string]any{
			"method": method,
			"path":   path,
		}), "api request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeBackend, err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeBackend, err, "decoding response")
	}
	return nil
}

// decodeError surfaces the server-provided message when the error payload
// carries one.
func (c *Client) decodeError(resp *http.Response) error {
	code := pkgerrors.FromStatus(resp.StatusCode)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload backendError
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return pkgerrors.New(code, payload.Message)
	}
	return pkgerrors.New(code, fmt.Sprintf("backend returned status %d", resp.StatusCode))
}

func (c *Client) validateRequest(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request")
	}
	return nil
}
