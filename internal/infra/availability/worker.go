package availability

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

	domainavailability "pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

// WorkerSource reads blocked dates from the availability worker, which
// answers GET /availability?house=KEY with {"blocked": ["YYYY-MM-DD", ...]}.
type WorkerSource struct {
	Client  *http.Client
	BaseURL string
	Logger  *slog.Logger
}

type workerResponse struct {
	Blocked []string `json:"blocked"`
}

func NewWorkerSource(baseURL string, timeout time.Duration, logger *slog.Logger) *WorkerSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WorkerSource{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: baseURL,
		Logger:  logger,
	}
}

func (s *WorkerSource) Blocked(ctx context.Context, key property.Key) ([]daterange.Date, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("availability: http client not configured")
	}
	endpoint, err := s.endpoint(key)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		s.logDebug("availability worker request failed", key, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("availability worker returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		s.logDebug("availability worker returned error", key, err)
		return nil, err
	}

	var payload workerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logDebug("availability worker decode failed", key, err)
		return nil, fmt.Errorf("%w: %w", domainavailability.ErrMalformedPayload, err)
	}
	return parseDates(payload.Blocked)
}

func (s *WorkerSource) endpoint(key property.Key) (string, error) {
	if strings.TrimSpace(s.BaseURL) == "" {
		return "", errors.New("availability: worker url not configured")
	}
	u, err := url.Parse(strings.TrimRight(s.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("availability: worker url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/availability") {
		u.Path += "/availability"
	}
	q := u.Query()
	q.Set("house", string(key))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *WorkerSource) logDebug(msg string, key property.Key, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug(msg, "property", key, "error", err)
}

func parseDates(raw []string) ([]daterange.Date, error) {
	out := make([]daterange.Date, 0, len(raw))
	for _, v := range raw {
		d, err := daterange.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domainavailability.ErrMalformedPayload, err)
		}
		out = append(out, d)
	}
	return out, nil
}

var _ domainavailability.Source = (*WorkerSource)(nil)
