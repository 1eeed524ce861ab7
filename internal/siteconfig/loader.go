package siteconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/retry"
)

const configPath = "/api/accessibility/config"

// ErrStatus matches any *StatusError.
var ErrStatus = errors.New("unexpected status")

// StatusError is returned when the config endpoint answers with a non-2xx code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("site config: %s: %d %s", ErrStatus, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// errMalformed marks a response body that is not a JSON object.
var errMalformed = errors.New("malformed site config")

// DefaultPolicy retries transport errors and 5xx responses.
var DefaultPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   250 * time.Millisecond,
	RateLimitBackoff: 2 * time.Second,
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	BaseURL string
	SiteID  string
	APIKey  string
	Client  *http.Client
	Policy  *retry.Policy
}

// Loader fetches the remote site configuration.
type Loader struct {
	baseURL string
	siteID  string
	apiKey  string
	client  *http.Client
	policy  retry.Policy
}

func NewLoader(cfg LoaderConfig) *Loader {
	l := &Loader{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		siteID:  cfg.SiteID,
		apiKey:  cfg.APIKey,
		client:  cfg.Client,
		policy:  DefaultPolicy,
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.Policy != nil {
		l.policy = *cfg.Policy
	}
	return l
}

// Configured reports whether there is a remote source to load from.
func (l *Loader) Configured() bool {
	return l.baseURL != "" && l.siteID != ""
}

// Fetch retrieves and normalizes the remote configuration.
func (l *Loader) Fetch(ctx context.Context) (Config, error) {
	if !l.Configured() {
		return Defaults(), errors.New("site config: no source configured")
	}

	p := l.policy
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.Warn("site config fetch failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	}

	raw, err := retry.Do(ctx, p, classify, l.fetchOnce)
	if err != nil {
		return Defaults(), err
	}
	return FromRaw(raw), nil
}

// Load fetches the configuration and freezes it into src. On any failure the
// defaults are frozen instead. Load never returns an error.
func (l *Loader) Load(ctx context.Context, src *Source) {
	cfg, err := l.Fetch(ctx)
	if err != nil {
		slog.Warn("site config unavailable, using defaults", "error", err)
	} else {
		slog.Info("site config loaded",
			"profile", cfg.Profile(),
			"cursor_mode_enabled", cfg.CursorModeEnabled(),
			"cursor_speed", cfg.CursorSpeed(),
			"scroll_speed", cfg.ScrollSpeed())
	}
	src.Freeze(cfg)
}

func (l *Loader) fetchOnce(ctx context.Context) (Raw, error) {
	u := l.baseURL + configPath + "?siteId=" + url.QueryEscape(l.siteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if l.apiKey != "" {
		req.Header.Set("x-api-key", l.apiKey)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch site config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var raw Raw
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", errMalformed)
	}
	return raw, nil
}

func classify(err error) retry.Action {
	var se *StatusError
	switch {
	case errors.Is(err, errMalformed):
		return retry.Stop
	case errors.As(err, &se):
		switch {
		case se.Code == http.StatusTooManyRequests:
			return retry.After
		case se.Code >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	default:
		return retry.Retry
	}
}
