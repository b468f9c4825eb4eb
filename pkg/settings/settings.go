package settings

import (
	"time"

	"github.com/spf13/viper"
)

// Settings resolves the environment-sourced configuration the core treats as
// opaque input: provider credentials, model selection, trip defaults, and the
// loop's knobs.
type Settings struct {
	OpenAIAPIKey string
	Model        string
	Temperature  float64

	WeatherAPIKey string
	SerpAPIKey    string

	Currency      string
	DepartureCity string

	MaxRetries    int
	MaxIterations int
	TokenBudget   int
	ToolTimeout   time.Duration
}

// Load reads settings from the environment, applying defaults that mirror
// the knobs the loop was designed around.
func Load() (*Settings, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("TEMPERATURE", 0.1)
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("DEFAULT_DEPARTURE_CITY", "")
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("MAX_ITERATIONS", 10)
	v.SetDefault("TOKEN_BUDGET", 6000)
	v.SetDefault("TOOL_TIMEOUT", "30s")

	s := &Settings{
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		Model:         v.GetString("OPENAI_MODEL"),
		Temperature:   v.GetFloat64("TEMPERATURE"),
		WeatherAPIKey: v.GetString("WEATHER_API_KEY"),
		SerpAPIKey:    v.GetString("SERPAPI_API_KEY"),
		Currency:      v.GetString("CURRENCY"),
		DepartureCity: v.GetString("DEFAULT_DEPARTURE_CITY"),
		MaxRetries:    v.GetInt("MAX_RETRIES"),
		MaxIterations: v.GetInt("MAX_ITERATIONS"),
		TokenBudget:   v.GetInt("TOKEN_BUDGET"),
		ToolTimeout:   v.GetDuration("TOOL_TIMEOUT"),
	}

	return s, nil
}
