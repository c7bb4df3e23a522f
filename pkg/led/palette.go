package led

import "math/rand"

// Palette is the pool burst colors are drawn from.
var Palette = [...]RGB{
	{255, 0, 0},     // red
	{255, 165, 0},   // orange
	{255, 255, 0},   // yellow
	{0, 255, 0},     // green
	{0, 0, 255},     // blue
	{255, 0, 255},   // purple
	{255, 255, 255}, // white
}

// Pick returns n distinct palette colors in random order. The palette
// indices are shuffled with Fisher-Yates and the first n are taken.
func Pick(rng *rand.Rand, n int) []RGB {
	if n > len(Palette) {
		n = len(Palette)
	}
	if n <= 0 {
		return nil
	}

	var idx [len(Palette)]int
	for i := range idx {
		idx[i] = i
	}
	for i := len(idx) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}

	colors := make([]RGB, n)
	for i := range colors {
		colors[i] = Palette[idx[i]]
	}
	return colors
}
