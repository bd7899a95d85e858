package models

import (
	"errors"
	"time"
)

var (
	ErrInvalidTicketCount = errors.New("ticket count must not be negative")
	ErrEmptyName          = errors.New("name must not be empty")
)

// ParticipantStatus represents whether a participant still takes part in draws
type ParticipantStatus string

const (
	StatusParticipating ParticipantStatus = "Participating"
	StatusDisqualified  ParticipantStatus = "Disqualified"
)

// Raffle represents a raffle event
type Raffle struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"creation_date"`
}

// Participant represents one entrant of a raffle with its ticket counters
type Participant struct {
	ID             int64             `json:"id"`
	RaffleID       int64             `json:"raffle_id"`
	Name           string            `json:"name"`
	ValidTickets   int               `json:"valid_tickets"`
	InvalidTickets int               `json:"invalid_tickets"`
	Status         ParticipantStatus `json:"status"`
}

// IsParticipating reports whether the participant is eligible for draws.
func (p *Participant) IsParticipating() bool {
	return p.Status == StatusParticipating
}

// ApplyLoss spends one valid ticket and disqualifies the participant once
// no valid tickets remain. It reports false when there was nothing to spend.
func (p *Participant) ApplyLoss() bool {
	if p.ValidTickets <= 0 {
		return false
	}
	p.ValidTickets--
	p.InvalidTickets++
	if p.ValidTickets == 0 {
		p.Status = StatusDisqualified
	}
	return true
}

// RaffleDetails is a raffle together with all of its participants
type RaffleDetails struct {
	Raffle       Raffle        `json:"raffle"`
	Participants []Participant `json:"participants"`
}
