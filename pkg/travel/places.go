package travel

import (
	"context"
	"net/url"

	"github.com/rs/zerolog/log"
)

// PlacesInput is the argument shape for the places_finder tool. Query covers
// attractions, restaurants, and other points of interest.
type PlacesInput struct {
	Query string `json:"query" jsonschema:"required,description=What to search for e.g. 'best attractions in Melbourne' or 'ramen restaurants in Tokyo'"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of results to return (default 5)"`
}

// PlacesFinder searches points of interest via the maps engine. A missing
// key returns a neutral payload so the model falls back to general
// knowledge.
func (p *Providers) PlacesFinder(ctx context.Context, in PlacesInput) (map[string]interface{}, error) {
	log.Info().Str("query", in.Query).Msg("travel: places_finder")

	if p.SerpAPIKey == "" {
		return neutralResult("No points-of-interest data available. Suggest well-known local highlights instead."), nil
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("type", "search")
	params.Set("q", in.Query)

	results, err := p.serpSearch(ctx, params)
	if err != nil {
		return errorPayload(err), nil
	}

	places := asList(results["local_results"])
	if len(places) == 0 {
		places = asList(results["place_results"])
	}

	items := make([]map[string]interface{}, 0, limit)
	for _, raw := range places {
		if len(items) >= limit {
			break
		}
		r := asMap(raw)
		title := asString(r["title"])
		if title == "" {
			title = asString(r["name"])
		}
		link := asString(r["link"])
		if link == "" {
			link = asString(r["place_id"])
		}
		items = append(items, map[string]interface{}{
			"title":   title,
			"rating":  r["rating"],
			"address": r["address"],
			"link":    link,
		})
	}

	if len(items) == 0 {
		return neutralResult("No structured place results. Suggest well-known local highlights instead."), nil
	}
	return map[string]interface{}{"items": items}, nil
}

func neutralResult(note string) map[string]interface{} {
	return map[string]interface{}{
		"items": []interface{}{},
		"note":  note,
	}
}
