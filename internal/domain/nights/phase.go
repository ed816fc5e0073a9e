package nights

// Eight equal-width bins across the lunar cycle, each centered on the
// canonical phase point (new at 0, full at 0.5). Values near 1 wrap
// back into the New Moon bin.
var phaseNames = []string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// PhaseName maps a continuous 0-1 phase value to its qualitative name.
func PhaseName(phase float64) string {
	phase = phase - float64(int(phase))
	if phase < 0 {
		phase++
	}

	// Shift by half a bin so each name owns the interval centered on
	// its canonical point; index 8 is the wraparound back to new.
	bin := int((phase + 1.0/16.0) * 8)
	if bin >= len(phaseNames) {
		bin = 0
	}
	return phaseNames[bin]
}
