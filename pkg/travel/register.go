package travel

import (
	"github.com/pkg/errors"

	"github.com/tripsmith-ai/tripsmith/pkg/tools"
)

// RegisterAll registers the four travel tools on the registry. It is called
// once at startup.
func RegisterAll(registry *tools.Registry, p *Providers) error {
	for _, spec := range []struct {
		name        string
		description string
		fn          interface{}
	}{
		{
			name:        "weather_check",
			description: "Get the weather for a location and date (YYYY-MM-DD). Uses a real forecast API when possible, generic info otherwise.",
			fn:          p.WeatherCheck,
		},
		{
			name:        "places_finder",
			description: "Search points of interest: attractions, restaurants, museums and other places in a city.",
			fn:          p.PlacesFinder,
		},
		{
			name:        "flights_finder",
			description: "Find a few flight options between two cities for a date, with prices when available.",
			fn:          p.FlightsFinder,
		},
		{
			name:        "hotels_finder",
			description: "Find a few hotel options in a city for a date range, with nightly rates when available.",
			fn:          p.HotelsFinder,
		},
	} {
		desc, err := tools.NewToolFromFunc(spec.name, spec.description, spec.fn)
		if err != nil {
			return errors.Wrapf(err, "failed to build tool %s", spec.name)
		}
		if err := registry.Register(desc); err != nil {
			return err
		}
	}
	return nil
}
