package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"wisatakota/internal/fetch"
)

const (
	// DefaultBaseURL is the SerpAPI search endpoint.
	DefaultBaseURL = "https://serpapi.com/search.json"
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 15 * time.Second

	queryTemplate = "tempat wisata di %s"
	maxBodyBytes  = 10 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProviderError reports a failed call to the places provider: transport
// failure, timeout, non-2xx status or an undecodable body.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider request failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Options configure a Service.
type Options struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
	Logger   *zap.Logger
}

// Service queries the places provider for attractions in a city.
type Service struct {
	client  *fetch.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
}

// NewService builds a Service. Zero-valued options fall back to defaults.
func NewService(opts Options) *Service {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		client: fetch.NewClient(fetch.ClientOptions{
			Timeout:   opts.Timeout,
			UserAgent: "wisatakota/1.0",
			RetryMax:  opts.RetryMax,
			Logger:    opts.Logger.Named("fetch"),
		}),
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		log:     opts.Logger,
	}
}

// Query returns the provider search phrase for city. The city is used
// verbatim.
func Query(city string) string {
	return fmt.Sprintf(queryTemplate, city)
}

// SearchURL builds the full provider request URL for city.
func (s *Service) SearchURL(city string) string {
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("q", Query(city))
	params.Set("type", "search")
	params.Set("api_key", s.apiKey)
	return s.baseURL + "?" + params.Encode()
}

// SearchCity fetches and normalizes attractions for city. A successful
// call with no results returns an empty slice and a nil error.
func (s *Service) SearchCity(ctx context.Context, city string) ([]Place, error) {
	start := time.Now()
	resp, err := s.client.Get(ctx, s.SearchURL(city), map[string]string{"Accept": "application/json"})
	if err != nil {
		err = stripRequestURL(err)
		s.log.Warn("Provider request failed", zap.String("kota", city), zap.Error(err))
		return nil, &ProviderError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Warn("Provider returned non-success status",
			zap.String("kota", city), zap.Int("status", resp.StatusCode))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", http.StatusText(resp.StatusCode))}
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	results := normalize(payload.LocalResults)
	if len(results) == 0 && payload.Error != "" {
		s.log.Info("Provider reported no results", zap.String("kota", city), zap.String("detail", payload.Error))
	}
	s.log.Info("Provider search completed",
		zap.String("kota", city),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// stripRequestURL drops the *url.Error wrapper, whose message carries the
// request URL and with it the api_key parameter.
func stripRequestURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", uerr.Op, uerr.Err)
	}
	return err
}
