package models

// DrawQuery binds the query string of the draw endpoint.
// Booleans stay strings: only a case-insensitive "true" enables a flag.
type DrawQuery struct {
	Level    string `form:"level"`
	Invested string `form:"invested"`
	TwoThree string `form:"two_three"`
}

// ParticipantInput describes one participant of a new raffle
type ParticipantInput struct {
	Name    string `json:"name" binding:"required"`
	Tickets int    `json:"tickets"`
}

// RaffleCreate is the payload for creating a raffle
type RaffleCreate struct {
	Title        string             `json:"title" binding:"required,max=100"`
	Creator      string             `json:"creator" binding:"required,max=150"`
	Participants []ParticipantInput `json:"participants" binding:"dive"`
}
