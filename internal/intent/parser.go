// Package intent maps a transcribed map command onto a structured command
// with a fixed, ordered rule cascade.
package intent

import "map-assistant/internal/domain"

// Parser is safe for concurrent use. It never mutates its RuleSet.
type Parser struct {
	rules *RuleSet
}

func NewParser(rules *RuleSet) *Parser {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Parser{rules: rules}
}

// Match describes which rule produced a command.
type Match struct {
	Command    domain.Command
	Normalized string
	Rule       string
	Tier       Tier
	Matched    bool
}

// Label identifies the matching rule, e.g. "primary/route". Empty when nothing matched.
func (m Match) Label() string {
	if !m.Matched {
		return ""
	}
	return m.Tier.String() + "/" + m.Rule
}

func (p *Parser) Parse(text string) domain.Command {
	return p.Explain(text).Command
}

// Explain runs the cascade and reports the rule that won.
func (p *Parser) Explain(text string) Match {
	normalized := Normalize(text)
	if normalized == "" {
		return Match{Command: domain.Unknown()}
	}

	for _, tier := range [][]Rule{p.rules.Primary, p.rules.Legacy} {
		for i := range tier {
			rule := &tier[i]
			if cmd, ok := rule.apply(normalized); ok {
				return Match{
					Command:    cmd,
					Normalized: normalized,
					Rule:       rule.Name,
					Tier:       rule.Tier,
					Matched:    true,
				}
			}
		}
	}

	return Match{Command: domain.Unknown(), Normalized: normalized}
}
