package application

import "map-assistant/internal/intent"

// IntentParser is satisfied by *intent.Parser.
type IntentParser interface {
	Explain(text string) intent.Match
}
