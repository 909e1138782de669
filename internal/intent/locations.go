package intent

import (
	"regexp"
	"strings"

	"map-assistant/internal/domain"
)

var listSeparator = regexp.MustCompile(`,|\band\b`)

// ExtractLocations splits a captured span into the ordered locations of a command.
func ExtractLocations(kind domain.CommandKind, span string) []string {
	span = strings.TrimSpace(span)

	switch kind {
	case domain.CommandRoute:
		return splitRoute(span)
	case domain.CommandMarker:
		return splitList(span)
	default:
		return compact(span)
	}
}

func splitRoute(span string) []string {
	for _, sep := range []string{" to ", " and ", " between "} {
		if strings.Contains(span, sep) {
			return compact(strings.Split(span, sep)...)
		}
	}

	if parts := strings.Split(span, " from "); len(parts) > 1 && strings.Contains(parts[1], " to ") {
		origins := splitList(parts[0])
		return append(origins, compact(strings.Split(parts[1], " to ")...)...)
	}

	return splitList(span)
}

func splitList(span string) []string {
	return compact(listSeparator.Split(span, -1)...)
}

// compact trims every part and drops the empty ones. The result is never nil.
func compact(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
