package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-datetools/internal/config"
)

// DateFetcher defines the contract for retrieving a server's Date header.
// This interface allows for mocking in tests and decoupling from the network layer.
type DateFetcher interface {
	FetchDate(ctx context.Context, url string) (string, error)
}

// HTTPDateFetcher implements DateFetcher using the standard net/http library.
type HTTPDateFetcher struct {
	Client *http.Client
}

// NewHTTPDateFetcher creates a new instance of HTTPDateFetcher with configured timeouts.
func NewHTTPDateFetcher() *HTTPDateFetcher {
	return &HTTPDateFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// FetchDate issues a HEAD request and returns the raw Date response header.
// It sanitizes the URL for logging purposes to avoid leaking sensitive tokens.
// Any response status is accepted: an error page stamps a Date header just as
// well as a 200 does.
func (f *HTTPDateFetcher) FetchDate(ctx context.Context, targetURL string) (string, error) {
	// Parse the URL to validate it and sanitize it for logs.
	u, err := url.Parse(targetURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	// Security check: ensure strictly HTTP or HTTPS using config constants.
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return "", fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Construct a safe URL for logging (stripping query parameters which might contain tokens).
	safeURL := u.Scheme + "://" + u.Host + u.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL),
	)

	log.Debug("Requesting Date header")

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Use the centralized User-Agent string from config to ensure consistency.
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error during fetch: %w", err)
	}
	// HEAD responses carry no body, but the connection must still be released.
	defer func() { _ = resp.Body.Close() }()

	date := resp.Header.Get(config.HeaderDate)
	if date == "" {
		log.Warn("Server returned no Date header",
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		return "", errors.New(config.ErrDateHeaderGone)
	}

	log.Info(config.MsgDateFetched,
		slog.Int(config.LogKeyStatus, resp.StatusCode),
		slog.String(config.LogKeyValue, date),
	)
	return date, nil
}
