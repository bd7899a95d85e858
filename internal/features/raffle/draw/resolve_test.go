package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		lanes    Lanes
		twoThree bool
		winner   int64
		ok       bool
	}{
		{name: "two of three first pair", lanes: Lanes{5, 5, 7}, twoThree: true, winner: 5, ok: true},
		{name: "two of three first and last", lanes: Lanes{5, 7, 5}, twoThree: true, winner: 5, ok: true},
		{name: "two of three last pair", lanes: Lanes{7, 5, 5}, twoThree: true, winner: 5, ok: true},
		{name: "two of three all equal", lanes: Lanes{3, 3, 3}, twoThree: true, winner: 3, ok: true},
		{name: "two of three no pair", lanes: Lanes{1, 2, 3}, twoThree: true},
		{name: "strict all equal", lanes: Lanes{5, 5, 5}, winner: 5, ok: true},
		{name: "strict pair only", lanes: Lanes{5, 5, 7}},
		{name: "strict last pair", lanes: Lanes{7, 5, 5}},
		{name: "strict all different", lanes: Lanes{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, ok := Resolve(tt.lanes, tt.twoThree)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.winner, winner)
			}
		})
	}
}
