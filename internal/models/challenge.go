package models

import (
	"encoding/json"
	"strings"
)

// Difficulty levels the challenge servers use. Servers are inconsistent about
// case, so compare with EqualDifficulty.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Difficulties lists the filter options in display order.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type Challenge struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"`
	Points      int       `json:"points"`
	Examples    []Example `json:"examples,omitempty"`
}

// UnmarshalJSON accepts both "title" and the older "name" field.
func (c *Challenge) UnmarshalJSON(data []byte) error {
	type plain Challenge
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Challenge(raw.plain)
	if c.Title == "" {
		c.Title = raw.Name
	}
	return nil
}

// DifficultyClass is the lower-cased difficulty used for CSS classes and filters.
func (c Challenge) DifficultyClass() string {
	return strings.ToLower(strings.TrimSpace(c.Difficulty))
}

// EqualDifficulty compares two difficulty labels ignoring case and surrounding space.
func EqualDifficulty(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ChallengeList is the GET /api/challenges payload.
type ChallengeList struct {
	Challenges []Challenge `json:"challenges"`
	Total      int         `json:"total"`
}
