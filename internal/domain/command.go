package domain

import (
	"encoding/json"
	"strings"
)

type CommandKind string

const (
	CommandReset     CommandKind = "reset"
	CommandSatellite CommandKind = "satellite"
	CommandHighways  CommandKind = "highways"
	CommandRoute     CommandKind = "route"
	CommandZoom      CommandKind = "zoom"
	CommandMarker    CommandKind = "marker"
	CommandUnknown   CommandKind = "unknown"
)

// Toggle states carried as the single location of satellite and highways commands.
const (
	StateOn  = "on"
	StateOff = "off"
)

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

// Command is the structured result of parsing one utterance. Locations is never nil.
type Command struct {
	Kind      CommandKind `json:"command"`
	Locations []string    `json:"locations"`
}

func NewCommand(kind CommandKind, locations ...string) Command {
	if locations == nil {
		locations = []string{}
	}
	return Command{Kind: kind, Locations: locations}
}

func Unknown() Command {
	return NewCommand(CommandUnknown)
}

func (k CommandKind) IsToggle() bool {
	return k == CommandSatellite || k == CommandHighways
}

func (c Command) String() string {
	if len(c.Locations) == 0 {
		return string(c.Kind)
	}
	return string(c.Kind) + ": " + strings.Join(c.Locations, ", ")
}

func (c Command) MarshalJSON() ([]byte, error) {
	type alias Command
	out := alias(c)
	if out.Kind == "" {
		out.Kind = CommandUnknown
	}
	if out.Locations == nil {
		out.Locations = []string{}
	}
	return json.Marshal(out)
}

// Prediction is one label/score pair produced by an audio classifier.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TranscribeResult is what the HTTP API returns for a processed utterance.
type TranscribeResult struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Command   Command `json:"command"`
	Rule      string  `json:"rule,omitempty"`
	ElapsedMS int64   `json:"elapsed_ms"`
}
