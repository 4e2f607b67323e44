package protocol

// Constants holds the per-device numeric limits that schemas reference by
// name. Values are in the base prefix of the field that references them.
type Constants map[ConstName]float64

// DefaultConstants returns the firmware defaults. Device families override
// individual entries in their protocol layers.
func DefaultConstants() Constants {
	return Constants{
		ConstMaxFrequency:       10_000_000,
		ConstMinFrequency:       100_000,
		ConstMaxGain:            150,
		ConstMinGain:            0,
		ConstMaxSwf:             15,
		ConstMinSwf:             0,
		ConstMaxTransducerIndex: 4,
		ConstMinTransducerIndex: 1,
		ConstMaxFrequencyStep:   5_000_000,
		ConstMinFrequencyStep:   100,
	}
}

func (c Constants) Clone() Constants {
	out := make(Constants, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge applies overrides on top of c, returning c.
func (c Constants) Merge(over Constants) Constants {
	for k, v := range over {
		c[k] = v
	}
	return c
}
