package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown for a terminal using a glamour standard style
// such as "dark", "light" or "notty".
func Terminal(markdown string, style string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
