package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Spring raffle"))
	assert.NoError(t, ValidateTitle(strings.Repeat("я", MaxTitleLength)))
	assert.Error(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("a", MaxTitleLength+1)))
}

func TestValidateCreator(t *testing.T) {
	assert.NoError(t, ValidateCreator(""))
	assert.NoError(t, ValidateCreator("admin"))
	assert.Error(t, ValidateCreator(strings.Repeat("a", MaxCreatorLength+1)))
}

func TestValidateParticipantName(t *testing.T) {
	assert.NoError(t, ValidateParticipantName("Ana"))
	assert.Error(t, ValidateParticipantName(" "))
	assert.Error(t, ValidateParticipantName(strings.Repeat("b", MaxParticipantNameLength+1)))
}

func TestNumbers(t *testing.T) {
	assert.NoError(t, ValidatePositiveInt(1, "raffle ID"))
	assert.EqualError(t, ValidatePositiveInt(0, "raffle ID"), "raffle ID must be positive")
}

func TestValidateTickets(t *testing.T) {
	assert.NoError(t, ValidateTickets(0))
	assert.NoError(t, ValidateTickets(MaxTickets))
	assert.EqualError(t, ValidateTickets(-1), "tickets cannot be negative")
	assert.Error(t, ValidateTickets(MaxTickets+1))
	assert.Error(t, ValidateTickets(2000000000))
}
