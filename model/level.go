package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is the outline level assigned to a block
type Level int

const (
	LevelBody Level = iota
	LevelTitle
	LevelH1
	LevelH2
	LevelH3
)

// String returns a string representation of the level
func (l Level) String() string {
	switch l {
	case LevelTitle:
		return "title"
	case LevelH1:
		return "H1"
	case LevelH2:
		return "H2"
	case LevelH3:
		return "H3"
	default:
		return "body"
	}
}

// IsHeading returns true for H1, H2 and H3
func (l Level) IsHeading() bool {
	return l >= LevelH1 && l <= LevelH3
}

// Depth returns the nesting depth of a heading level (H1 = 1). Body and Title
// have depth 0.
func (l Level) Depth() int {
	if !l.IsHeading() {
		return 0
	}
	return int(l-LevelH1) + 1
}

// HeadingAtDepth returns the heading level for a nesting depth, clamped to H1..H3
func HeadingAtDepth(depth int) Level {
	if depth < 1 {
		depth = 1
	}
	if depth > 3 {
		depth = 3
	}
	return LevelH1 + Level(depth-1)
}

// ParseLevel converts a string produced by String back into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "body", "":
		return LevelBody, nil
	case "title":
		return LevelTitle, nil
	case "h1":
		return LevelH1, nil
	case "h2":
		return LevelH2, nil
	case "h3":
		return LevelH3, nil
	}
	return LevelBody, fmt.Errorf("unknown level %q", s)
}

// MarshalJSON encodes the level as its string form
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its string form
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
