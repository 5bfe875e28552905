package srs

// Params defines the tunable constants of the SM-2 update law.
type Params struct {
	// MinEaseFactor is the floor applied to the ease factor after every
	// review. It prevents runaway interval shrinkage from repeated
	// poor-quality-but-passing responses.
	MinEaseFactor float64

	// PassQuality is the lowest quality that counts as a pass. Anything
	// below it resets repetitions and the interval.
	PassQuality int

	// FirstInterval is the interval in days after the first consecutive
	// pass.
	FirstInterval int

	// SecondInterval is the interval in days after the second consecutive
	// pass. From the third pass on, the interval grows multiplicatively.
	SecondInterval int
}

// NewDefaultParams returns the standard SM-2 constants.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  1.3,
		PassQuality:    3,
		FirstInterval:  1,
		SecondInterval: 6,
	}
}
