// Package httpclient builds the retrying HTTP client shared by the open data adapters.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"air-demand-service/internal/platform/logging"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// StatusError is returned for responses with a status code of 400 or above.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// New returns a retryablehttp client with exponential backoff that retries
// network errors, 429 and 5xx responses, and never retries a cancelled context.
func New(retryMax int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	client.CheckRetry = retryPolicy
	client.HTTPClient.Timeout = timeout
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logging.Named("http").Debug("retrying request",
				zap.String("url", req.URL.Redacted()),
				zap.Int("attempt", attempt),
			)
		}
	}
	// Leave the final response untouched so callers can inspect its status.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return false, err
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		if resp.StatusCode < 500 {
			return false, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Get issues a GET for url and returns the response when its status is below 400.
// Other statuses are drained into a *StatusError.
func Get(ctx context.Context, client *retryablehttp.Client, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}
