package composer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/diagnosis"
	"github.com/Skufu/symptomcheck/internal/llm"
)

const systemPrompt = `You are a medical chatbot assistant designed to provide general health information.
Important disclaimers:
1. You are not a licensed medical professional.
2. Your responses are for informational purposes only and do not constitute medical advice.
3. Always advise users to consult with a healthcare professional for proper diagnosis and treatment.

Based on the user's message and the symptoms and potential diagnoses detected,
provide a helpful, informative response that:
1. Acknowledges the symptoms they've described
2. Provides general information about possible conditions
3. Offers general self-care tips if appropriate
4. Always emphasizes the importance of consulting a healthcare professional
5. Never make definitive diagnoses or prescribe treatments`

type promptContext struct {
	DetectedSymptoms  []string           `json:"detected_symptoms"`
	PossibleDiagnoses []diagnosis.Result `json:"possible_diagnoses"`
}

// LLM asks a text-generation provider to phrase the reply and falls back to
// Template on any failure or empty output.
type LLM struct {
	client   llm.Client
	log      *logrus.Logger
	fallback Template
}

func (c *LLM) Compose(ctx context.Context, message string, symptoms []string, diagnoses []diagnosis.Result) string {
	prompt, err := BuildPrompt(message, symptoms, diagnoses)
	if err != nil {
		c.log.WithError(err).Error("Failed to build LLM prompt")
		return c.fallback.Compose(ctx, message, symptoms, diagnoses)
	}

	reply, err := c.client.Generate(ctx, prompt)
	if err != nil {
		c.log.WithError(err).Warn("LLM generation failed, using template reply")
		return c.fallback.Compose(ctx, message, symptoms, diagnoses)
	}
	if strings.TrimSpace(reply) == "" {
		c.log.Warn("LLM returned an empty reply, using template reply")
		return c.fallback.Compose(ctx, message, symptoms, diagnoses)
	}
	return reply
}

// BuildPrompt joins the safety instructions, the user's message and a JSON
// context of the detected symptoms and diagnoses.
func BuildPrompt(message string, symptoms []string, diagnoses []diagnosis.Result) (string, error) {
	if symptoms == nil {
		symptoms = []string{}
	}
	if diagnoses == nil {
		diagnoses = []diagnosis.Result{}
	}
	ctxJSON, err := json.Marshal(promptContext{DetectedSymptoms: symptoms, PossibleDiagnoses: diagnoses})
	if err != nil {
		return "", err
	}
	return systemPrompt + "\n\nUser message: " + message + "\n\nAdditional context: " + string(ctxJSON), nil
}
