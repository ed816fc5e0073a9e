package metrics

// RunStats captures the volume of work done by one digest run.
type RunStats struct {
	Locations  int `json:"locations"`
	Nights     int `json:"nights"`
	GoodNights int `json:"goodNights"`
	Failures   int `json:"failures,omitempty"`
}

// IsZero reports whether any analysis work was recorded.
func (s RunStats) IsZero() bool {
	return s.Locations == 0 && s.Nights == 0 && s.GoodNights == 0 && s.Failures == 0
}
