package travel

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
)

// HotelsInput is the argument shape for the hotels_finder tool.
type HotelsInput struct {
	Location string `json:"location" jsonschema:"required,description=City to search hotels in"`
	CheckIn  string `json:"check_in" jsonschema:"required,description=Check-in date in YYYY-MM-DD format"`
	CheckOut string `json:"check_out" jsonschema:"required,description=Check-out date in YYYY-MM-DD format"`
	Currency string `json:"currency,omitempty" jsonschema:"description=Price currency (defaults to the configured one)"`
	Adults   int    `json:"adults,omitempty" jsonschema:"description=Number of adults (default 1)"`
}

// HotelsFinder returns a few hotel options via the hotels search engine.
func (p *Providers) HotelsFinder(ctx context.Context, in HotelsInput) (map[string]interface{}, error) {
	currency := in.Currency
	if currency == "" {
		currency = p.currency()
	}
	adults := in.Adults
	if adults <= 0 {
		adults = 1
	}

	log.Info().
		Str("location", in.Location).
		Str("check_in", in.CheckIn).
		Str("check_out", in.CheckOut).
		Int("adults", adults).
		Msg("travel: hotels_finder")

	if p.SerpAPIKey == "" {
		return neutralResult("No hotel data available. Try Booking.com or Google Hotels."), nil
	}

	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", "hotels in "+in.Location)
	params.Set("check_in_date", in.CheckIn)
	params.Set("check_out_date", in.CheckOut)
	params.Set("currency", currency)
	params.Set("adults", strconv.Itoa(adults))

	results, err := p.serpSearch(ctx, params)
	if err != nil {
		return errorPayload(err), nil
	}

	hotels := asList(results["properties"])
	items := make([]map[string]interface{}, 0, 5)
	for _, raw := range hotels {
		if len(items) >= 5 {
			break
		}
		h := asMap(raw)
		items = append(items, map[string]interface{}{
			"title":   h["name"],
			"price":   asMap(h["rate_per_night"])["lowest"],
			"details": h["address"],
			"link":    h["link"],
		})
	}

	if len(items) == 0 {
		return neutralResult("No structured hotel results. Try Booking.com or Google Hotels."), nil
	}
	return map[string]interface{}{"currency": currency, "items": items}, nil
}
