package progress

// EstimateOneRepMax estimates the maximal single-repetition load from a
// logged weight and rep count using the Epley formula. A single rep is the
// max itself; nonsense inputs estimate zero.
func EstimateOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}
