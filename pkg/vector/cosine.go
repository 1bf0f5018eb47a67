package vector

import "math"

// Cosine returns the cosine similarity of a and b: their dot product divided
// by the product of their Euclidean norms, in [-1, 1]. When either vector
// has a zero norm the similarity is defined as 0, never NaN. Vectors of
// unequal length come from different embedding models and are never
// similar; they compare as 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
