package travel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultWeatherBaseURL = "https://api.weatherapi.com"
	defaultSerpBaseURL    = "https://serpapi.com"
)

// Providers bundles the third-party data providers the travel tools wrap.
// Keys may be absent: every tool tolerates a missing or misconfigured
// provider by returning a neutral payload instead of failing.
type Providers struct {
	WeatherAPIKey string
	SerpAPIKey    string
	Currency      string

	// overridable for tests
	WeatherBaseURL string
	SerpBaseURL    string
	HTTPClient     *http.Client
}

func (p *Providers) httpClient() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (p *Providers) weatherBaseURL() string {
	if p.WeatherBaseURL != "" {
		return p.WeatherBaseURL
	}
	return defaultWeatherBaseURL
}

func (p *Providers) serpBaseURL() string {
	if p.SerpBaseURL != "" {
		return p.SerpBaseURL
	}
	return defaultSerpBaseURL
}

func (p *Providers) currency() string {
	if p.Currency != "" {
		return p.Currency
	}
	return "USD"
}

// getJSON performs a GET request and decodes the JSON response body.
func (p *Providers) getJSON(ctx context.Context, rawURL string, params url.Values) (map[string]interface{}, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid provider URL")
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "provider request failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("provider returned status %d", resp.StatusCode)
	}

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "failed to decode provider response")
	}
	return out, nil
}

// serpSearch queries the SerpAPI search endpoint with the given engine
// parameters.
func (p *Providers) serpSearch(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	params.Set("api_key", p.SerpAPIKey)
	result, err := p.getJSON(ctx, p.serpBaseURL()+"/search", params)
	if err != nil {
		log.Debug().Err(err).Str("engine", params.Get("engine")).Msg("travel: serpapi search failed")
		return nil, err
	}
	return result, nil
}

// errorPayload is the normalized error shape the agent loop recognizes and
// counts toward its failure ceiling.
func errorPayload(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}

func asList(v interface{}) []interface{} {
	if l, ok := v.([]interface{}); ok {
		return l
	}
	return nil
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return nil
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
