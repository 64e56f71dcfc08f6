package providers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/exchange_rates_service/internal/apperrors"
	"github.com/SscSPs/exchange_rates_service/internal/middleware"
	"github.com/SscSPs/exchange_rates_service/internal/platform/metrics"
	"github.com/cenkalti/backoff/v4"
)

// maxBodySize caps upstream payloads; a full World Bank page is well below it.
const maxBodySize = 16 << 20

// HTTPOptions configures the HTTP client shared by all providers.
type HTTPOptions struct {
	Client         *http.Client
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	Metrics        *metrics.Metrics
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 250 * time.Millisecond
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	return o
}

// httpFetcher performs GET requests against one provider, retrying transport
// failures, 429 and 5xx responses with exponential backoff.
type httpFetcher struct {
	provider string
	headers  map[string]string
	opts     HTTPOptions
}

func newHTTPFetcher(provider string, headers map[string]string, opts HTTPOptions) *httpFetcher {
	return &httpFetcher{provider: provider, headers: headers, opts: opts.withDefaults()}
}

// get returns the body of a 2xx response to url.
func (f *httpFetcher) get(ctx context.Context, url string) ([]byte, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.opts.InitialBackoff
	retrying := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(f.opts.MaxRetries)), ctx)

	start := time.Now()
	body, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		return f.do(ctx, url)
	}, retrying, func(err error, wait time.Duration) {
		logger.Warn("Retrying provider request",
			slog.String("provider", f.provider), slog.String("error", err.Error()), slog.Duration("wait", wait))
	})
	logger.Debug("Provider request finished",
		slog.String("provider", f.provider),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.Bool("ok", err == nil))
	return body, err
}

func (f *httpFetcher) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(apperrors.NewProviderError(f.provider, "failed to build request", err))
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.opts.Client.Do(req)
	if err != nil {
		f.opts.Metrics.RecordUpstreamRequest(f.provider, "error", time.Since(start))
		if ctx.Err() != nil {
			return nil, backoff.Permanent(apperrors.NewProviderError(f.provider, "request cancelled", err))
		}
		return nil, apperrors.NewProviderError(f.provider, "request failed", err)
	}
	defer resp.Body.Close()
	f.opts.Metrics.RecordUpstreamRequest(f.provider, statusClass(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperrors.NewProviderError(f.provider, "failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := apperrors.NewProviderError(f.provider, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, perr
		}
		return nil, backoff.Permanent(perr)
	}
	return body, nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
