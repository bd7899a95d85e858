package draw

// Lanes are the three candidate ids compared during resolution.
type Lanes [3]int64

// Resolve returns the winning id of three lanes.
//
// In two-of-three mode lane 1 wins when it matches lane 2 or lane 3,
// otherwise lane 2 wins when it matches lane 3. In strict mode all three
// lanes must agree.
func Resolve(lanes Lanes, twoThree bool) (int64, bool) {
	r1, r2, r3 := lanes[0], lanes[1], lanes[2]
	if twoThree {
		switch {
		case r1 == r2 || r1 == r3:
			return r1, true
		case r2 == r3:
			return r2, true
		}
		return 0, false
	}

	if r1 == r2 && r2 == r3 {
		return r1, true
	}
	return 0, false
}
