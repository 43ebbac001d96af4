package utils

// PriorityScore is the product of the three severity levels of a disruption.
func PriorityScore(importance, influence, urgency int) int {
	return importance * influence * urgency
}

// ExceedsThreshold reports whether score is strictly greater than threshold.
func ExceedsThreshold(score, threshold int) bool {
	return score > threshold
}
