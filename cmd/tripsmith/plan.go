package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tripsmith-ai/tripsmith/pkg/agent"
	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/engine"
	"github.com/tripsmith-ai/tripsmith/pkg/settings"
	"github.com/tripsmith-ai/tripsmith/pkg/tokens"
	"github.com/tripsmith-ai/tripsmith/pkg/tools"
	"github.com/tripsmith-ai/tripsmith/pkg/travel"
	"github.com/tripsmith-ai/tripsmith/pkg/window"
)

type planFlags struct {
	destination string
	start       string
	end         string
	interests   []string
	energy      string
	budget      string
	notes       string
	origin      string
	flights     bool
	threadID    string
}

func newPlanCommand() *cobra.Command {
	flags := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip: daily itinerary, packing tips, checklist, and optional lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.destination == "" || flags.start == "" || flags.end == "" {
				return errors.New("destination, start and end are required")
			}
			cfg, err := settings.Load()
			if err != nil {
				return err
			}
			if flags.origin == "" {
				flags.origin = cfg.DepartureCity
			}
			return runAgent(cmd, cfg, buildPlanPrompt(flags), flags.threadID)
		},
	}

	cmd.Flags().StringVar(&flags.destination, "destination", "", "Destination city")
	cmd.Flags().StringVar(&flags.start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&flags.interests, "interests", nil, "Traveler interests, e.g. coffee,gardens,art")
	cmd.Flags().StringVar(&flags.energy, "energy", "balanced", "Energy level: chill, balanced, full-throttle")
	cmd.Flags().StringVar(&flags.budget, "budget", "mid", "Budget: shoestring, value, mid, premium, luxury")
	cmd.Flags().StringVar(&flags.notes, "notes", "", "Extra notes, e.g. traveling with kids")
	cmd.Flags().StringVar(&flags.origin, "origin", "", "Departure city for flight lookups")
	cmd.Flags().BoolVar(&flags.flights, "flights", false, "Include flight and hotel lookups")
	cmd.Flags().StringVar(&flags.threadID, "thread", "", "Thread id to resume a conversation")

	return cmd
}

func newChatCommand() *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "chat [request]",
		Short: "Send a free-form trip-planning request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return err
			}
			return runAgent(cmd, cfg, args[0], threadID)
		},
	}
	cmd.Flags().StringVar(&threadID, "thread", "", "Thread id to resume a conversation")
	return cmd
}

// buildPlanPrompt mirrors the trip parameters into a single request the
// model can plan from.
func buildPlanPrompt(flags *planFlags) string {
	interests := "general city highlights"
	if len(flags.interests) > 0 {
		interests = strings.Join(flags.interests, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are planning a trip to %s from %s to %s. ", flags.destination, flags.start, flags.end)
	fmt.Fprintf(&b, "Traveler preferences: %s; energy: %s; budget: %s. ", interests, flags.energy, flags.budget)
	if flags.notes != "" {
		fmt.Fprintf(&b, "Additional notes: %s. ", flags.notes)
	}
	b.WriteString("For each day, use the weather_check tool with the correct date. ")
	b.WriteString("Use places_finder to suggest 3-5 must-see places and 2-4 places to eat. ")
	b.WriteString("Also include a short checklist and packing tips tailored to the weather and activities. ")
	if flags.flights {
		origin := flags.origin
		if origin == "" {
			origin = "the traveler's home city"
		}
		fmt.Fprintf(&b, "At the end, call flights_finder with origin '%s' and hotels_finder for the trip dates. ", origin)
	}
	return b.String()
}

func runAgent(cmd *cobra.Command, cfg *settings.Settings, prompt, threadID string) error {
	registry := tools.NewRegistry(tools.WithInvokeTimeout(cfg.ToolTimeout))
	providers := &travel.Providers{
		WeatherAPIKey: cfg.WeatherAPIKey,
		SerpAPIKey:    cfg.SerpAPIKey,
		Currency:      cfg.Currency,
	}
	if err := travel.RegisterAll(registry, providers); err != nil {
		return err
	}

	eng := engine.NewOpenAIEngine(cfg.OpenAIAPIKey, cfg.Model,
		engine.WithTemperature(float32(cfg.Temperature)))

	trimmer := window.NewTrimmer(tokens.CounterForModel(cfg.Model), cfg.TokenBudget)

	a, err := agent.New(
		agent.WithEngine(eng),
		agent.WithRegistry(registry),
		agent.WithSessions(conversation.NewManager()),
		agent.WithTrimmer(trimmer),
		agent.WithMaxRetries(cfg.MaxRetries),
		agent.WithMaxIterations(cfg.MaxIterations),
	)
	if err != nil {
		return err
	}

	answer, err := a.Run(cmd.Context(), prompt, threadID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderAnswer(answer))
	return nil
}
