package travel

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
)

// WeatherInput is the argument shape for the weather_check tool.
type WeatherInput struct {
	Location string `json:"location" jsonschema:"required,description=City or place to check the weather for"`
	Date     string `json:"date" jsonschema:"required,description=Date to check in YYYY-MM-DD format"`
}

type forecast struct {
	Condition string
	AvgTempC  float64
	MinTempC  float64
	MaxTempC  float64
}

// WeatherCheck returns the weather for a location and date. It uses the real
// forecast API when a key is configured and degrades to generic text
// otherwise.
func (p *Providers) WeatherCheck(ctx context.Context, in WeatherInput) (string, error) {
	log.Info().
		Str("location", in.Location).
		Str("date", in.Date).
		Msg("travel: weather_check")

	f, err := p.forecastFor(ctx, in.Location, in.Date)
	if err != nil {
		return "", err
	}
	if f == nil {
		return fmt.Sprintf("No real weather data for %s on %s. Typical weather: mild, partly cloudy.",
			in.Location, in.Date), nil
	}
	return fmt.Sprintf("%s on %s: %s, %.1f°C (min %.1f°C, max %.1f°C)",
		in.Location, in.Date, f.Condition, f.AvgTempC, f.MinTempC, f.MaxTempC), nil
}

// forecastFor fetches a normalized one-day forecast. A missing key yields
// (nil, nil); the caller substitutes generic text.
func (p *Providers) forecastFor(ctx context.Context, location, date string) (*forecast, error) {
	if p.WeatherAPIKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("key", p.WeatherAPIKey)
	params.Set("q", location)
	params.Set("dt", date)
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	endpoint := p.weatherBaseURL() + "/v1/forecast.json"
	data, err := p.getJSON(ctx, endpoint, params)
	if err != nil {
		// requesting a far-future date can fail; fetch a one-day window instead
		params.Del("dt")
		params.Set("days", "1")
		data, err = p.getJSON(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
	}

	days := asList(asMap(data["forecast"])["forecastday"])
	if len(days) == 0 {
		return nil, nil
	}
	day := asMap(asMap(days[0])["day"])
	condition := asString(asMap(day["condition"])["text"])
	if condition == "" {
		condition = "N/A"
	}

	return &forecast{
		Condition: condition,
		AvgTempC:  asFloat(day["avgtemp_c"]),
		MinTempC:  asFloat(day["mintemp_c"]),
		MaxTempC:  asFloat(day["maxtemp_c"]),
	}, nil
}

func asFloat(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
