package draw

import "raffle-tool-backend/internal/features/raffle/models"

// TicketPool is the flattened ticket list of one draw. IDs and Names are
// parallel: position i holds the owner of ticket i.
type TicketPool struct {
	IDs   []int64
	Names []string
}

// Frequency is the number of tickets one participant holds in a pool.
type Frequency struct {
	ID    int64
	Count int
}

// NewTicketPool repeats every participant valid_tickets times, keeping the
// order of the snapshot. Participants without valid tickets add nothing.
func NewTicketPool(participants []models.Participant) *TicketPool {
	total := 0
	for _, p := range participants {
		if p.ValidTickets > 0 {
			total += p.ValidTickets
		}
	}

	pool := &TicketPool{
		IDs:   make([]int64, 0, total),
		Names: make([]string, 0, total),
	}
	for _, p := range participants {
		for i := 0; i < p.ValidTickets; i++ {
			pool.IDs = append(pool.IDs, p.ID)
			pool.Names = append(pool.Names, p.Name)
		}
	}
	return pool
}

// Len returns the total number of tickets.
func (p *TicketPool) Len() int {
	return len(p.IDs)
}

// Frequencies counts tickets per distinct id, in order of first appearance.
func (p *TicketPool) Frequencies() []Frequency {
	index := make(map[int64]int)
	var freqs []Frequency
	for _, id := range p.IDs {
		if i, ok := index[id]; ok {
			freqs[i].Count++
			continue
		}
		index[id] = len(freqs)
		freqs = append(freqs, Frequency{ID: id, Count: 1})
	}
	return freqs
}

// NameOf returns the display name attached to the first ticket of id.
func (p *TicketPool) NameOf(id int64) (string, bool) {
	for i, candidate := range p.IDs {
		if candidate == id {
			return p.Names[i], true
		}
	}
	return "", false
}
