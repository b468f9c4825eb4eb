package travel

import (
	"context"
	"net/url"

	"github.com/rs/zerolog/log"
)

// FlightsInput is the argument shape for the flights_finder tool.
type FlightsInput struct {
	Origin      string `json:"origin" jsonschema:"required,description=Departure airport or city"`
	Destination string `json:"destination" jsonschema:"required,description=Arrival airport or city"`
	Date        string `json:"date" jsonschema:"required,description=Outbound date in YYYY-MM-DD format"`
	Currency    string `json:"currency,omitempty" jsonschema:"description=Price currency (defaults to the configured one)"`
}

// FlightsFinder returns a few flight options via the flights search engine.
func (p *Providers) FlightsFinder(ctx context.Context, in FlightsInput) (map[string]interface{}, error) {
	currency := in.Currency
	if currency == "" {
		currency = p.currency()
	}

	log.Info().
		Str("origin", in.Origin).
		Str("destination", in.Destination).
		Str("date", in.Date).
		Str("currency", currency).
		Msg("travel: flights_finder")

	if p.SerpAPIKey == "" {
		return neutralResult("No flight data available. Try airline sites or Google Flights."), nil
	}

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", in.Origin)
	params.Set("arrival_id", in.Destination)
	params.Set("outbound_date", in.Date)
	params.Set("currency", currency)

	results, err := p.serpSearch(ctx, params)
	if err != nil {
		return errorPayload(err), nil
	}

	flights := asList(results["best_flights"])
	if len(flights) == 0 {
		flights = asList(results["other_flights"])
	}
	link := asString(asMap(results["search_metadata"])["google_flights_url"])

	items := make([]map[string]interface{}, 0, 5)
	for _, raw := range flights {
		if len(items) >= 5 {
			break
		}
		f := asMap(raw)
		title := asString(f["summary"])
		if title == "" {
			title = asString(f["airline"])
		}
		if title == "" {
			title = "Flight option"
		}
		items = append(items, map[string]interface{}{
			"title": title,
			"price": f["price"],
			"link":  link,
		})
	}

	if len(items) == 0 {
		return neutralResult("No structured flight results. Try airline sites or Google Flights."), nil
	}
	return map[string]interface{}{"currency": currency, "items": items}, nil
}
