package draw

import "fmt"

// pick draws one id with the weighted generator, or the inverted one in
// invested mode.
func (e *Engine) pick(invested bool) (int64, error) {
	if invested {
		return e.gen.InvertedWeighted(e.pool)
	}
	return e.gen.Weighted(e.pool)
}

// softLanes draws all three lanes from the weighted generators.
func (e *Engine) softLanes(invested bool) (Lanes, error) {
	var lanes Lanes
	for i := range lanes {
		id, err := e.pick(invested)
		if err != nil {
			return Lanes{}, fmt.Errorf("soft lane %d: %w", i+1, err)
		}
		lanes[i] = id
	}
	return lanes, nil
}

// halfLanes draws lanes 1 and 2 from the weighted generators and lane 3
// from the uniform generator over the ticket indices.
func (e *Engine) halfLanes(invested bool) (Lanes, error) {
	var lanes Lanes
	for i := 0; i < 2; i++ {
		id, err := e.pick(invested)
		if err != nil {
			return Lanes{}, fmt.Errorf("half lane %d: %w", i+1, err)
		}
		lanes[i] = id
	}

	idx, err := e.gen.UniformInt(0, e.pool.Len()-1)
	if err != nil {
		return Lanes{}, fmt.Errorf("half lane 3: %w", err)
	}
	lanes[2] = e.pool.IDs[idx]
	return lanes, nil
}

// hardLanes draws three ticket indices from three different sources.
// Lane 2 covers [0, len-2]: the last ticket can never be picked there.
func (e *Engine) hardLanes() (Lanes, error) {
	n := e.pool.Len()

	idx1, err := e.gen.PseudoIndex(n)
	if err != nil {
		return Lanes{}, fmt.Errorf("hard lane 1: %w", err)
	}
	idx2, err := e.gen.SecureIndex(n - 1)
	if err != nil {
		return Lanes{}, fmt.Errorf("hard lane 2: %w", err)
	}
	idx3, err := e.gen.UniformInt(0, n-1)
	if err != nil {
		return Lanes{}, fmt.Errorf("hard lane 3: %w", err)
	}

	return Lanes{e.pool.IDs[idx1], e.pool.IDs[idx2], e.pool.IDs[idx3]}, nil
}
