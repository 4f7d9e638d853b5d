package diagnosis

// Fallback is the degraded-mode answer used while the correlation store is
// unreachable. The entries and their confidences are fixed.
func Fallback(symptoms []string) []Result {
	has := make(map[string]bool, len(symptoms))
	for _, s := range symptoms {
		has[s] = true
	}
	if !has["fever"] || !(has["cough"] || has["sore throat"]) {
		return []Result{}
	}
	return []Result{
		{
			Disease:     "Common Cold",
			Description: "A viral infection of the upper respiratory tract",
			Treatment:   "Rest, fluids, over-the-counter medications for symptoms",
			Confidence:  75.5,
		},
		{
			Disease:     "Influenza",
			Description: "A viral infection that attacks respiratory system",
			Treatment:   "Rest, fluids, antiviral medications in severe cases",
			Confidence:  68.2,
		},
	}
}
