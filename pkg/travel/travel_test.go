package travel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsmith-ai/tripsmith/pkg/tools"
)

func TestWeatherCheckWithoutKeyReturnsGenericText(t *testing.T) {
	p := &Providers{}

	out, err := p.WeatherCheck(context.Background(), WeatherInput{Location: "Paris", Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Contains(t, out, "Paris")
	assert.Contains(t, out, "2025-06-01")
	assert.Contains(t, out, "Typical weather")
}

func TestWeatherCheckParsesForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast.json", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("dt"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"forecast": {
				"forecastday": [{
					"day": {
						"condition": {"text": "Sunny"},
						"avgtemp_c": 21.5,
						"mintemp_c": 15.0,
						"maxtemp_c": 26.0
					}
				}]
			}
		}`))
	}))
	defer srv.Close()

	p := &Providers{WeatherAPIKey: "k", WeatherBaseURL: srv.URL}

	out, err := p.WeatherCheck(context.Background(), WeatherInput{Location: "Paris", Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Contains(t, out, "Sunny")
	assert.Contains(t, out, "21.5°C")
	assert.Contains(t, out, "min 15.0°C")
}

func TestWeatherCheckFallsBackToOneDayWindow(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("dt") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "1", r.URL.Query().Get("days"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"forecast": {
				"forecastday": [{
					"day": {"condition": {"text": "Cloudy"}, "avgtemp_c": 10.0, "mintemp_c": 5.0, "maxtemp_c": 14.0}
				}]
			}
		}`))
	}))
	defer srv.Close()

	p := &Providers{WeatherAPIKey: "k", WeatherBaseURL: srv.URL}

	out, err := p.WeatherCheck(context.Background(), WeatherInput{Location: "Oslo", Date: "2027-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, out, "Cloudy")
}

func TestFlightsFinderWithoutKeyReturnsNeutralResult(t *testing.T) {
	p := &Providers{}

	out, err := p.FlightsFinder(context.Background(), FlightsInput{Origin: "SYD", Destination: "MEL", Date: "2025-07-03"})
	require.NoError(t, err)
	assert.Empty(t, out["items"])
	assert.Contains(t, out["note"], "Google Flights")

	_, isErr := tools.NormalizedError(out)
	assert.False(t, isErr, "a missing key is not a tool failure")
}

func TestFlightsFinderParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "google_flights", r.URL.Query().Get("engine"))
		assert.Equal(t, "SYD", r.URL.Query().Get("departure_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"search_metadata": {"google_flights_url": "https://flights.example/q"},
			"best_flights": [
				{"airline": "Qantas", "price": 420},
				{"airline": "Jetstar", "price": 310}
			]
		}`))
	}))
	defer srv.Close()

	p := &Providers{SerpAPIKey: "k", SerpBaseURL: srv.URL, Currency: "AUD"}

	out, err := p.FlightsFinder(context.Background(), FlightsInput{Origin: "SYD", Destination: "MEL", Date: "2025-07-03"})
	require.NoError(t, err)
	assert.Equal(t, "AUD", out["currency"])

	items, ok := out["items"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "Qantas", items[0]["title"])
	assert.Equal(t, "https://flights.example/q", items[0]["link"])
}

func TestFlightsFinderProviderErrorBecomesErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := &Providers{SerpAPIKey: "k", SerpBaseURL: srv.URL}

	out, err := p.FlightsFinder(context.Background(), FlightsInput{Origin: "SYD", Destination: "MEL", Date: "2025-07-03"})
	require.NoError(t, err)

	msg, isErr := tools.NormalizedError(out)
	require.True(t, isErr)
	assert.Contains(t, msg, "500")
}

func TestHotelsFinderParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_hotels", r.URL.Query().Get("engine"))
		assert.Equal(t, "hotels in Melbourne", r.URL.Query().Get("q"))
		assert.Equal(t, "2025-07-03", r.URL.Query().Get("check_in_date"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"properties": [{
				"name": "The Langham",
				"rate_per_night": {"lowest": "$181"},
				"address": "1 Southgate Ave",
				"link": "https://hotels.example/langham"
			}]
		}`))
	}))
	defer srv.Close()

	p := &Providers{SerpAPIKey: "k", SerpBaseURL: srv.URL}

	out, err := p.HotelsFinder(context.Background(), HotelsInput{
		Location: "Melbourne",
		CheckIn:  "2025-07-03",
		CheckOut: "2025-07-05",
	})
	require.NoError(t, err)

	items, ok := out["items"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "The Langham", items[0]["title"])
	assert.Equal(t, "$181", items[0]["price"])
}

func TestHotelsFinderEmptyResultsAreNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"properties": []}`))
	}))
	defer srv.Close()

	p := &Providers{SerpAPIKey: "k", SerpBaseURL: srv.URL}

	out, err := p.HotelsFinder(context.Background(), HotelsInput{Location: "Nowhere", CheckIn: "2025-01-01", CheckOut: "2025-01-02"})
	require.NoError(t, err)
	assert.Contains(t, out["note"], "Booking.com")
}

func TestPlacesFinderParsesLocalResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_maps", r.URL.Query().Get("engine"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"local_results": [
				{"title": "Royal Botanic Gardens", "rating": 4.8, "address": "Birdwood Ave", "link": "https://maps.example/rbg"},
				{"title": "NGV", "rating": 4.7, "address": "180 St Kilda Rd", "link": "https://maps.example/ngv"}
			]
		}`))
	}))
	defer srv.Close()

	p := &Providers{SerpAPIKey: "k", SerpBaseURL: srv.URL}

	out, err := p.PlacesFinder(context.Background(), PlacesInput{Query: "best attractions in Melbourne", Limit: 1})
	require.NoError(t, err)

	items, ok := out["items"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Royal Botanic Gardens", items[0]["title"])
}

func TestRegisterAllRegistersFourTools(t *testing.T) {
	registry := tools.NewRegistry()
	require.NoError(t, RegisterAll(registry, &Providers{}))

	for _, name := range []string{"weather_check", "places_finder", "flights_finder", "hotels_finder"} {
		desc, err := registry.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, desc.Name)
		assert.NotNil(t, desc.Parameters)
	}

	// registering twice fails with the duplicate error
	err := RegisterAll(registry, &Providers{})
	require.Error(t, err)
}
