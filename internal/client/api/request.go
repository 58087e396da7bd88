package api

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
)

const maxErrorBody = 512

// call performs one request and decodes the envelope. A nil data field on
// success leaves out untouched.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, query url.Values, body any, out *T) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.mapError(ctx, err)
	}

	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode/100 != 2 {
			return &StatusError{StatusCode: resp.StatusCode, Body: truncate(raw)}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if !env.Success {
		return &BackendError{Code: env.Code, Message: env.Message}
	}
	if env.Data != nil && out != nil {
		*out = *env.Data
	}
	return nil
}

// callCaptcha is call for the anji-captcha envelope.
func callCaptcha[T any](ctx context.Context, c *HTTPClient, path string, body any, out *T) error {
	resp, err := c.send(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.mapError(ctx, err)
	}

	var env captchaEnvelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode/100 != 2 {
			return &StatusError{StatusCode: resp.StatusCode, Body: truncate(raw)}
		}
		return fmt.Errorf("decode captcha %s: %w", path, err)
	}
	if env.RepCode != captchaOK {
		return &CaptchaError{Code: env.RepCode, Message: env.RepMsg}
	}
	if env.RepData != nil && out != nil {
		*out = *env.RepData
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(ctx, err)
	}
	return resp, nil
}

// mapError turns transport failures into ErrUnavailable unless the caller's
// context ended first.
func (c *HTTPClient) mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var tokenErr *TokenSourceError
	if errors.As(err, &tokenErr) {
		return tokenErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return strings.TrimSpace(string(b))
}
