package pinfield

// Slider answers travel as percentages. A slider whose max is at most 1 is a
// fraction slider and is scaled by 100; any other range is rescaled linearly
// onto [0, 100]. Both directions clamp to the configured bounds.

// RoundTwo rounds v to two decimals, halves toward positive infinity.
func RoundTwo(v float64) float64 {
	return roundHalfUp(v*100) / 100
}

// ToPercent converts a raw slider value into the percent that is stored and
// sent. It reports false for NaN or infinite input.
func ToPercent(raw float64, cfg SliderConfig) (float64, bool) {
	if !finite(raw) {
		return 0, false
	}
	lo, hi := cfg.bounds()
	v := clamp(raw, lo, hi)
	if hi <= 1 {
		return RoundTwo(v * 100), true
	}
	if hi == lo {
		return 0, true
	}
	return RoundTwo((v - lo) / (hi - lo) * 100), true
}

// FromPercent converts a stored percent back into a slider position. It
// reports false for NaN or infinite input. The result is rounded to two
// decimals like ToPercent and always lies within the slider's bounds.
func FromPercent(pct float64, cfg SliderConfig) (float64, bool) {
	if !finite(pct) {
		return 0, false
	}
	lo, hi := cfg.bounds()
	if hi <= 1 {
		return clamp(RoundTwo(clamp(pct/100, lo, hi)), lo, hi), true
	}
	return clamp(RoundTwo(lo+(hi-lo)*clamp(pct, 0, 100)/100), lo, hi), true
}

// SliderDefault returns the initial slider position: the configured default
// clamped to the bounds, or else the midpoint snapped to the step grid.
func SliderDefault(cfg SliderConfig) float64 {
	lo, hi := cfg.bounds()
	if cfg.HasDefault && finite(cfg.Default) {
		return clamp(cfg.Default, lo, hi)
	}
	step := cfg.step()
	mid := lo + (hi-lo)/2
	snapped := lo + roundHalfUp((mid-lo)/step)*step
	return clamp(snapped, lo, hi)
}

// SnapToStep rounds v onto the slider's step grid and clamps it to the bounds.
func SnapToStep(v float64, cfg SliderConfig) float64 {
	lo, hi := cfg.bounds()
	step := cfg.step()
	return clamp(lo+roundHalfUp((v-lo)/step)*step, lo, hi)
}
