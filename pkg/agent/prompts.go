package agent

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSystemPrompt returns the fixed system instruction sent on every
// model call.
func DefaultSystemPrompt() string {
	return fmt.Sprintf(`You are a smart travel agency. Use the tools to look up information.
You are allowed to make multiple calls (either together or in sequence).
Only look up information when you are sure of what you want.
The current year is %d.

If you need to look up some information before asking a follow up question, you are allowed to do that.
In your output include links to hotels websites and flights websites (if possible).
In your output always include the price of the flight and the price of the hotel and the currency as well (if possible).
For example for hotels:
Rate: $181 per night
Total: $3,488`, time.Now().Year())
}

// formatToolError renders a tool failure as readable in-band text the model
// consumes on the next round.
func formatToolError(toolName, message string) string {
	return fmt.Sprintf("[%s ERROR] %s. The assistant will continue with available information.",
		strings.ToUpper(toolName), message)
}

// fallbackDirective builds the one-shot prompt the fallback planner sends
// when repeated tool failures make further tool-assisted rounds unproductive.
func fallbackDirective(originalRequest string, failedTools []string) string {
	return fmt.Sprintf(`Generate a fallback plan when tools fail.
The following tools failed: %s.
Original request: %s

Please generate a travel plan using only the information we have available.
Focus on providing:
1. A general daily itinerary
2. Local attractions and restaurant recommendations
3. General packing tips
4. A basic travel checklist

Clearly indicate which information is missing and provide alternative suggestions where possible.`,
		strings.Join(failedTools, ", "), originalRequest)
}
