package main

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// renderAnswer styles the model's markdown answer for terminal display.
// Piped output stays plain so the answer can be post-processed.
func renderAnswer(answer string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return answer
	}
	return renderMarkdown(answer)
}

func renderMarkdown(answer string) string {
	styled, err := glamour.Render(answer, "dark")
	if err != nil {
		return answer
	}
	return styled
}
