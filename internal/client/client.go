package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weathercheck/internal/models"
	"github.com/kjstillabower/weathercheck/internal/observability"
	"github.com/kjstillabower/weathercheck/internal/validation"
)

// WeatherClient fetches current conditions for one location.
type WeatherClient interface {
	Fetch(ctx context.Context, location string, units models.Units) (models.WeatherResult, error)
}

var (
	ErrMissingAPIKey      = errors.New("API key is required")
	ErrTransport          = errors.New("weather service unreachable")
	ErrServiceUnavailable = errors.New("weather service unavailable")
	ErrFormat             = errors.New("invalid weather data format")
)

// APIError is a failure reported inside a 200 response body (cod != 200).
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather API error %s: %s", e.Code, e.Message)
}

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

type OpenWeatherClient struct {
	apiKey         string
	apiURL         *url.URL
	timeout        time.Duration
	client         *http.Client
	limiter        *rate.Limiter
	defaultCountry string
	logger         *zap.Logger
}

// NewOpenWeatherClient creates a client for the OpenWeatherMap current-weather endpoint.
// A non-positive timeout falls back to DefaultTimeout. Postal codes get a ",US" suffix
// unless SetDefaultCountry says otherwise.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host required", apiURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenWeatherClient{
		apiKey:         apiKey,
		apiURL:         u,
		timeout:        timeout,
		defaultCountry: "US",
		logger:         zap.NewNop(),
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetRateLimit throttles outgoing calls to perMinute requests per minute. Zero or less disables it.
func (c *OpenWeatherClient) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		c.limiter = nil
		return
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// SetDefaultCountry sets the country code appended to postal-code queries.
func (c *OpenWeatherClient) SetDefaultCountry(country string) {
	c.defaultCountry = country
}

func (c *OpenWeatherClient) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// providerCode holds the body's "cod" field, which the provider sends as a number on
// success and as a string on failure.
type providerCode string

func (p *providerCode) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*p = providerCode(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*p = providerCode(s)
	return nil
}

type openWeatherResponse struct {
	Cod     providerCode `json:"cod"`
	Message string       `json:"message"`
	Name    *string      `json:"name"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMax   *float64 `json:"temp_max"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
}

// Fetch issues a single GET for location. It never retries; every failure is one of
// ErrTransport, ErrServiceUnavailable, *APIError or ErrFormat.
func (c *OpenWeatherClient) Fetch(ctx context.Context, location string, units models.Units) (models.WeatherResult, error) {
	corrID := correlationID(ctx)
	logger := c.logger.With(zap.String("correlation_id", corrID))

	result, err := c.callAPI(ctx, corrID, validation.NormalizeLocation(location, c.defaultCountry), units)
	if err != nil {
		category := CategorizeError(err)
		observability.WeatherAPIErrorsTotal.WithLabelValues(string(category)).Inc()
		logger.Debug("weather fetch failed", zap.String("location", location), zap.String("category", string(category)), zap.Error(err))
		return models.WeatherResult{}, err
	}
	logger.Debug("weather fetched", zap.String("location", location), zap.String("city", result.City))
	return result, nil
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, corrID, location string, units models.Units) (models.WeatherResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.WeatherResult{}, fmt.Errorf("%w: rate limit wait: %w", ErrTransport, err)
		}
	}

	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, location, units)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.WeatherResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Correlation-ID", corrID)

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)
		return models.WeatherResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode != http.StatusOK {
		return models.WeatherResult{}, fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.WeatherResult{}, fmt.Errorf("%w: read response body: %w", ErrTransport, err)
	}

	var apiResp openWeatherResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.WeatherResult{}, fmt.Errorf("%w: parse response: %w", ErrFormat, err)
	}

	if apiResp.Cod != "200" {
		msg := apiResp.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return models.WeatherResult{}, &APIError{Code: string(apiResp.Cod), Message: msg}
	}

	return mapResponse(apiResp)
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, location string, units models.Units) (*http.Request, error) {
	u := *c.apiURL

	params := u.Query()
	params.Set("q", location)
	params.Set("units", string(units))
	params.Set("appid", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// mapResponse requires every displayed field except sys.country and wind.deg.
func mapResponse(apiResp openWeatherResponse) (models.WeatherResult, error) {
	var missing []string
	if apiResp.Name == nil {
		missing = append(missing, "name")
	}
	if apiResp.Main == nil {
		missing = append(missing, "main")
	} else {
		if apiResp.Main.Temp == nil {
			missing = append(missing, "main.temp")
		}
		if apiResp.Main.FeelsLike == nil {
			missing = append(missing, "main.feels_like")
		}
		if apiResp.Main.TempMax == nil {
			missing = append(missing, "main.temp_max")
		}
		if apiResp.Main.Humidity == nil {
			missing = append(missing, "main.humidity")
		}
	}
	if apiResp.Wind == nil {
		missing = append(missing, "wind")
	} else if apiResp.Wind.Speed == nil {
		missing = append(missing, "wind.speed")
	}
	if len(missing) > 0 {
		return models.WeatherResult{}, fmt.Errorf("%w: missing %v", ErrFormat, missing)
	}

	return models.WeatherResult{
		City:        *apiResp.Name,
		Country:     apiResp.Sys.Country,
		Temperature: *apiResp.Main.Temp,
		FeelsLike:   *apiResp.Main.FeelsLike,
		TempMax:     *apiResp.Main.TempMax,
		Humidity:    *apiResp.Main.Humidity,
		WindSpeed:   *apiResp.Wind.Speed,
		WindDeg:     apiResp.Wind.Deg,
	}, nil
}

type correlationIDKey struct{}

// WithCorrelationID attaches an ID that Fetch sends as X-Correlation-ID and logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// correlationID returns the ID stored in ctx, or a fresh UUID.
func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
