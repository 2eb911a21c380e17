package counter

// Observation is a snapshot of monotonic counters taken at one point
// in time. Rate computation needs two of them from consecutive runs.
type Observation struct {
	Timestamp int64 // unix timestamp in seconds
	Counters  map[string]uint64
}

// NewObservation creates an empty Observation for the given timestamp
func NewObservation(timestamp int64) *Observation {
	return &Observation{
		Timestamp: timestamp,
		Counters:  make(map[string]uint64),
	}
}

// Rates calculates per second rates between two observations.
// Without a previous observation, with no elapsed time or when a
// counter went backwards (source reset) the rate for that counter is 0,
// it never goes negative and never divides by zero.
func Rates(prev, curr *Observation) map[string]float64 {
	rates := make(map[string]float64, len(curr.Counters))
	for name := range curr.Counters {
		rates[name] = 0
	}

	if prev == nil {
		return rates
	}

	elapsed := curr.Timestamp - prev.Timestamp
	if elapsed <= 0 {
		return rates
	}

	for name, cur := range curr.Counters {
		last, ok := prev.Counters[name]
		if !ok || cur < last {
			continue
		}
		rates[name] = float64(cur-last) / float64(elapsed)
	}

	return rates
}
