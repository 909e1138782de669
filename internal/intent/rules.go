package intent

import (
	"regexp"

	"map-assistant/internal/domain"
)

type Tier int

const (
	TierPrimary Tier = iota
	TierLegacy
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Strategy says how a rule turns its submatches into locations.
type Strategy int

const (
	// StrategyNone produces no locations.
	StrategyNone Strategy = iota
	// StrategyToggle reads an optional on/off token from group 1.
	StrategyToggle
	// StrategyPair takes groups 1 and 2 as origin and destination.
	StrategyPair
	// StrategySpan hands group 1 to ExtractLocations.
	StrategySpan
)

type Rule struct {
	Name     string
	Kind     domain.CommandKind
	Tier     Tier
	Strategy Strategy
	Pattern  *regexp.Regexp

	// DefaultState is used by toggle rules when no token was captured.
	// Empty means fall back to the keyword scan in ResolveToggle.
	DefaultState string
}

// apply evaluates the rule against normalized text.
func (r *Rule) apply(text string) (domain.Command, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return domain.Command{}, false
	}

	switch r.Strategy {
	case StrategyNone:
		return domain.NewCommand(r.Kind), true

	case StrategyToggle:
		token := group(m, 1)
		if token == "" && r.DefaultState != "" {
			token = r.DefaultState
		}
		return domain.NewCommand(r.Kind, ResolveToggle(r.Kind, token, text)), true

	case StrategyPair:
		locations := compact(group(m, 1), group(m, 2))
		if len(locations) < 2 {
			return domain.Command{}, false
		}
		return domain.NewCommand(r.Kind, locations...), true

	case StrategySpan:
		locations := ExtractLocations(r.Kind, group(m, 1))
		if len(locations) < minLocations(r.Kind) {
			return domain.Command{}, false
		}
		return domain.NewCommand(r.Kind, locations...), true
	}

	return domain.Command{}, false
}

// minLocations is the fewest locations a command of kind can carry. A route
// needs an origin and a destination.
func minLocations(kind domain.CommandKind) int {
	if kind == domain.CommandRoute {
		return 2
	}
	return 1
}

func group(m []string, i int) string {
	if i < len(m) {
		return m[i]
	}
	return ""
}

// RuleSet is the read-only rule table shared by every Parser. The primary
// tier is always evaluated before the legacy tier.
type RuleSet struct {
	Primary []Rule
	Legacy  []Rule
}

// Characters a location phrase may contain in the primary tier.
const word = `\p{L}\p{M}\p{N}_`

// Unicode-aware word boundaries. RE2's \b only knows ASCII word characters,
// so "éreset" would otherwise match the reset keyword.
const (
	wordStart = `(?:^|[^` + word + `])`
	wordEnd   = `(?:$|[^` + word + `])`
)

var defaultRules = newDefaultRules()

// DefaultRules returns the built-in rule table. It is compiled once per process.
func DefaultRules() *RuleSet {
	return defaultRules
}

func newDefaultRules() *RuleSet {
	return &RuleSet{
		Primary: []Rule{
			{
				Name:     "reset",
				Kind:     domain.CommandReset,
				Strategy: StrategyNone,
				Pattern:  regexp.MustCompile(wordStart + `(?:clear|reset|reload|refresh)` + wordEnd),
			},
			{
				Name:         "satellite",
				Kind:         domain.CommandSatellite,
				Strategy:     StrategyToggle,
				Pattern:      regexp.MustCompile(wordStart + `satellite(?:\s+(on|off)|$|[^` + word + `])`),
				DefaultState: domain.StateOn,
			},
			{
				Name:         "highways",
				Kind:         domain.CommandHighways,
				Strategy:     StrategyToggle,
				Pattern:      regexp.MustCompile(wordStart + `highways(?:\s+(on|off)|$|[^` + word + `])`),
				DefaultState: domain.StateOn,
			},
			{
				Name:     "route",
				Kind:     domain.CommandRoute,
				Strategy: StrategyPair,
				Pattern: regexp.MustCompile(
					wordStart + `(?:distance|shortest path|route|navigate|navigation|spath)` +
						`(?:[^` + word + `].*?)??[^` + word + `](?:from|between)` +
						`\s+([` + word + `\s]+?)\s+(?:to|and)\s+([` + word + `\s]+)`),
			},
			{
				Name:     "zoom",
				Kind:     domain.CommandZoom,
				Strategy: StrategySpan,
				Pattern: regexp.MustCompile(
					wordStart + `(?:show|go to|open|search|explore|zoom)(?:\s+me)?(?:\s+(?:in|at|the|into))?\s+([` + word + `\s]+)`),
			},
			{
				Name:     "marker",
				Kind:     domain.CommandMarker,
				Strategy: StrategySpan,
				Pattern: regexp.MustCompile(
					wordStart + `(?:add\s+marker|marker|mark|pin|ping)(?:\s+(?:in|on|to))?\s+([` + word + `\s,]+)`),
			},
		},

		// Wide net of phrasings and transcription typos. Unanchored substring
		// matches; order matters and overlaps are expected.
		Legacy: []Rule{
			{
				Name:     "zoom",
				Kind:     domain.CommandZoom,
				Tier:     TierLegacy,
				Strategy: StrategySpan,
				Pattern: regexp.MustCompile(`(?:show|go to|open|search|explore|zoom(?: in| out)?(?: to| on| at)?|display|find|` +
					`search for|take me to|navigate to|zom(?: in| out)?(?: to| on| at)?|show me(?: the)?|zomm(?: in)?(?: to)?|` +
					`zoooom|showw|zooom|shw|gt|serch|show meee|zooooom|zo0m|shoooow|zo0m|zom|showw location|zooo00om)` +
					`(?:\s+the)?\s+(.+)`),
			},
			{
				Name:     "marker",
				Kind:     domain.CommandMarker,
				Tier:     TierLegacy,
				Strategy: StrategySpan,
				Pattern: regexp.MustCompile(`(?:add marker(?: in| on)?|mark(?: on)?|pin|ping|add a mark at|drop pin on|` +
					`set markr to|place marker in|create marker|mark\s+)(.+)`),
			},
			{
				Name:     "route",
				Kind:     domain.CommandRoute,
				Tier:     TierLegacy,
				Strategy: StrategySpan,
				Pattern: regexp.MustCompile(`(?:get me route|show me route|route|navigate(?: me)?|distance between|` +
					`what is the shortest path between|show me path between|plan route|directions|find route|` +
					`gt route betwen|navigae|how to get|best route|shw rout|show rout|plan a trip|route planning|` +
					`travel route|best way|how to reach|gt directions|find a route|how to go|i want go|navigate to|rout|` +
					`find shortest route|give me the route|find best route|show rout|get route)` +
					`(?:\s+(?:from|between))?\s+(.+)`),
			},
			{
				Name:     "reset",
				Kind:     domain.CommandReset,
				Tier:     TierLegacy,
				Strategy: StrategyNone,
				Pattern: regexp.MustCompile(`(?:clear|reset|reload|refresh|clrscrn|clear all markers|start over|` +
					`clear the map|reset view|clear markers and routes|back to default|clear all please|reset all|` +
					`clear everything|clear the map data|clear map view|clearr screen|clear all data on map)`),
			},
			{
				Name:     "satellite",
				Kind:     domain.CommandSatellite,
				Tier:     TierLegacy,
				Strategy: StrategyToggle,
				Pattern: regexp.MustCompile(`(?:satellite|switch on satellite mode|show me satellite view|` +
					`turn on satelite|satelite view please|disable satellite|satellite mode off|activate satellite mode|` +
					`deactivate satellite mode|sat view on|sat view off|turn on satellite image|on satellite|sat on|` +
					`sat off|satellite view on|turn on the satelite view|turn of the satelite)`),
			},
			{
				Name:     "highways",
				Kind:     domain.CommandHighways,
				Tier:     TierLegacy,
				Strategy: StrategyToggle,
				Pattern: regexp.MustCompile(`(?:highways|highways on|highways off|show highways|turn off highways|` +
					`hide highways|highway display on|enable highways|disable highway view|highway layer on|` +
					`highway layer off|remove highways|highwayss on|highwas off|highwaysss on please|on highways|` +
					`highways of now)`),
			},
		},
	}
}
