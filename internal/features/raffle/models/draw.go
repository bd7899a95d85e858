package models

import (
	"fmt"
	"strings"
)

// DrawLevel selects the draw strategy
type DrawLevel string

const (
	DrawLevelSoft DrawLevel = "soft"
	DrawLevelHalf DrawLevel = "half"
	DrawLevelHard DrawLevel = "hard"
)

// NoParticipantsLegend is returned when the pool is too small to draw from.
const NoParticipantsLegend = "No more participants left"

// ParseDrawLevel maps a query value onto a DrawLevel. Empty means soft.
func ParseDrawLevel(raw string) (DrawLevel, bool) {
	switch DrawLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DrawLevelSoft:
		return DrawLevelSoft, true
	case DrawLevelHalf:
		return DrawLevelHalf, true
	case DrawLevelHard:
		return DrawLevelHard, true
	}
	return "", false
}

// DrawOptions are the caller controlled knobs of a single draw
type DrawOptions struct {
	Level    DrawLevel `json:"level"`
	Invested bool      `json:"invested"`
	TwoThree bool      `json:"two_three"`
}

// Legend describes the applied options the same way for every response.
func (o DrawOptions) Legend() string {
	return fmt.Sprintf("Applied draw level: %s, elimination type: %t, two out of three mode: %t",
		o.Level, o.Invested, o.TwoThree)
}

// DrawResult is the outcome of one strategy run.
// Winner is nil when the lanes did not reach consensus.
type DrawResult struct {
	Participating []Participant `json:"participating"`
	Lane1         int64         `json:"lane1"`
	Lane2         int64         `json:"lane2"`
	Lane3         int64         `json:"lane3"`
	Winner        *int64        `json:"winner"`
	WinnerName    string        `json:"winner_name,omitempty"`
	// Mutated is true when the invested mode penalty was persisted.
	Mutated bool `json:"mutated"`
}

// HasWinner reports whether the lanes resolved a winner.
func (r *DrawResult) HasWinner() bool {
	return r != nil && r.Winner != nil
}

// DrawResponse is the envelope returned to draw callers
type DrawResponse struct {
	Legend string      `json:"legend"`
	List   []int64     `json:"list"`
	Result *DrawResult `json:"result"`
}
