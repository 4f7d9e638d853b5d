package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomcheck/internal/diagnosis"
)

type stubClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (s *stubClient) Generate(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.reply, s.err
}

var sampleDiagnoses = []diagnosis.Result{
	{Disease: "Common Cold", Description: "A viral infection of the upper respiratory tract", Treatment: "Rest, fluids", Confidence: 95},
	{Disease: "Influenza", Description: "A viral infection that attacks respiratory system", Treatment: "Rest, antivirals", Confidence: 68.2},
	{Disease: "COVID-19", Description: "Coronavirus disease", Treatment: "Isolation", Confidence: 41.25},
	{Disease: "Bronchitis", Description: "Inflammation of the bronchial tubes", Treatment: "Rest", Confidence: 30},
}

func TestTemplateWithDiagnoses(t *testing.T) {
	got := Template{}.Compose(context.Background(), "", []string{"fever", "cough"}, sampleDiagnoses)

	want := "I've analyzed your symptoms including fever, cough.\n\n" +
		"Based on this information, here are some possible conditions to consider:\n" +
		"\n1. Common Cold (confidence: 95.0%)\n" +
		"   A viral infection of the upper respiratory tract\n" +
		"   General treatment approach: Rest, fluids\n" +
		"\n2. Influenza (confidence: 68.2%)\n" +
		"   A viral infection that attacks respiratory system\n" +
		"   General treatment approach: Rest, antivirals\n" +
		"\n3. COVID-19 (confidence: 41.25%)\n" +
		"   Coronavirus disease\n" +
		"   General treatment approach: Isolation\n" +
		"\n\nIMPORTANT: This is not a medical diagnosis. Please consult with a healthcare professional for proper evaluation and treatment."
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "Bronchitis")
}

func TestTemplateWithoutAnything(t *testing.T) {
	got := Template{}.Compose(context.Background(), "hello", nil, nil)
	assert.Equal(t, "I've analyzed your symptoms, but I couldn't determine any specific conditions based on the information provided."+disclaimer, got)
}

func TestTemplateSymptomsWithoutDiagnoses(t *testing.T) {
	got := Template{}.Compose(context.Background(), "", []string{"nausea"}, []diagnosis.Result{})
	assert.True(t, strings.HasPrefix(got, "I've analyzed your symptoms including nausea, but I couldn't"))
	assert.True(t, strings.HasSuffix(got, disclaimer))
}

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "95.0", formatConfidence(95))
	assert.Equal(t, "75.5", formatConfidence(75.5))
	assert.Equal(t, "27.39", formatConfidence(27.39))
	assert.Equal(t, "0.0", formatConfidence(0))
}

func TestNewSelectsByClient(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.IsType(t, Template{}, New(nil, logger))
	assert.IsType(t, &LLM{}, New(&stubClient{}, logger))
}

func TestLLMUsesGeneratedReply(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := &stubClient{reply: "You may have a cold. Please see a doctor."}
	c := New(client, logger)

	got := c.Compose(context.Background(), "I have a fever", []string{"fever"}, sampleDiagnoses[:1])
	assert.Equal(t, "You may have a cold. Please see a doctor.", got)
	assert.Contains(t, client.lastPrompt, "You are not a licensed medical professional.")
	assert.Contains(t, client.lastPrompt, "User message: I have a fever")
	assert.Contains(t, client.lastPrompt, `"detected_symptoms":["fever"]`)
	assert.Contains(t, client.lastPrompt, `"disease":"Common Cold"`)
}

func TestLLMFallsBackOnError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	c := New(&stubClient{err: errors.New("quota")}, logger)

	got := c.Compose(context.Background(), "fever", []string{"fever"}, nil)
	assert.Equal(t, Template{}.Compose(context.Background(), "fever", []string{"fever"}, nil), got)
	require.NotNil(t, hook.LastEntry())
}

func TestLLMFallsBackOnEmptyReply(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := New(&stubClient{reply: "  \n"}, logger)

	got := c.Compose(context.Background(), "", nil, nil)
	assert.True(t, strings.HasSuffix(got, disclaimer))
}

func TestBuildPromptUsesEmptyArrays(t *testing.T) {
	prompt, err := BuildPrompt("hi", nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(prompt, `Additional context: {"detected_symptoms":[],"possible_diagnoses":[]}`))
}
