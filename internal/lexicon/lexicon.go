// Package lexicon holds the fixed symptom vocabulary used for keyword matching.
package lexicon

// Entry maps a canonical symptom name to the phrases that indicate it.
type Entry struct {
	Name    string
	Aliases []string
}

// Lexicon is ordered; detection order follows entry order.
type Lexicon []Entry

// Default is the built-in alias table.
var Default = Lexicon{
	{Name: "fever", Aliases: []string{"fever", "high temperature", "hot"}},
	{Name: "cough", Aliases: []string{"cough", "coughing"}},
	{Name: "headache", Aliases: []string{"headache", "head pain", "head ache"}},
	{Name: "fatigue", Aliases: []string{"fatigue", "tired", "exhausted", "tiredness"}},
	{Name: "sore throat", Aliases: []string{"sore throat", "throat pain", "throat ache"}},
	{Name: "chest pain", Aliases: []string{"chest pain", "pain in chest"}},
	{Name: "shortness of breath", Aliases: []string{"shortness of breath", "hard to breathe", "difficulty breathing"}},
	{Name: "nausea", Aliases: []string{"nausea", "feel sick", "feeling sick"}},
	{Name: "cold", Aliases: []string{"cold", "runny nose", "stuffy nose"}},
	{Name: "flu", Aliases: []string{"flu", "influenza", "flue"}},
}

// FallbackSymptoms stands in for the store's symptom catalogue when it cannot be read.
var FallbackSymptoms = []string{
	"fever",
	"cough",
	"headache",
	"fatigue",
	"sore throat",
	"chest pain",
	"shortness of breath",
	"nausea",
}
