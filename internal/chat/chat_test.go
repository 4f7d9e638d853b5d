package chat

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomcheck/internal/composer"
	"github.com/Skufu/symptomcheck/internal/diagnosis"
	"github.com/Skufu/symptomcheck/internal/extractor"
	"github.com/Skufu/symptomcheck/internal/lexicon"
	"github.com/Skufu/symptomcheck/internal/store"
)

type recordingLog struct {
	records []store.Interaction
	err     error
}

func (r *recordingLog) Append(_ context.Context, rec store.Interaction) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

type panickingScorer struct{}

func (panickingScorer) Score(context.Context, []string) []diagnosis.Result {
	panic("index out of range")
}

func degradedService(t *testing.T, history store.InteractionLog) (*Service, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	st := store.Unavailable{}
	svc := NewService(
		extractor.New(st, lexicon.Default, logger),
		diagnosis.NewScorer(st, logger),
		composer.Template{},
		history,
		logger,
	)
	return svc, hook
}

func TestProcessMessageDegradedMode(t *testing.T) {
	history := &recordingLog{}
	svc, _ := degradedService(t, history)

	resp := svc.ProcessMessage(context.Background(), "u1", "I have a fever and a bad cough")
	assert.Equal(t, []string{"fever", "cough"}, resp.DetectedSymptoms)
	require.Len(t, resp.PossibleDiagnoses, 2)
	assert.Equal(t, "Common Cold", resp.PossibleDiagnoses[0].Disease)
	assert.Equal(t, 75.5, resp.PossibleDiagnoses[0].Confidence)
	assert.Contains(t, resp.Response, "1. Common Cold (confidence: 75.5%)")

	require.Len(t, history.records, 1)
	assert.Equal(t, "u1", history.records[0].UserID)
	assert.Equal(t, resp.Response, history.records[0].Response)
}

func TestProcessMessageNoSymptoms(t *testing.T) {
	svc, _ := degradedService(t, nil)

	resp := svc.ProcessMessage(context.Background(), "u1", "hello there")
	assert.NotNil(t, resp.DetectedSymptoms)
	assert.Empty(t, resp.DetectedSymptoms)
	assert.NotNil(t, resp.PossibleDiagnoses)
	assert.Empty(t, resp.PossibleDiagnoses)
	assert.Contains(t, resp.Response, "couldn't determine any specific conditions")
}

func TestProcessMessageLogFailureIsNotFatal(t *testing.T) {
	svc, hook := degradedService(t, store.Unavailable{})

	resp := svc.ProcessMessage(context.Background(), "u1", "fever and sore throat")
	assert.Len(t, resp.PossibleDiagnoses, 2)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Failed to save interaction" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestProcessMessageRecoversFromPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	svc := NewService(
		extractor.New(store.Unavailable{}, lexicon.Default, logger),
		panickingScorer{},
		composer.Template{},
		nil,
		logger,
	)

	resp := svc.ProcessMessage(context.Background(), "u1", "fever")
	assert.Equal(t, ApologyMessage, resp.Response)
	assert.Equal(t, []string{}, resp.DetectedSymptoms)
	assert.Equal(t, []diagnosis.Result{}, resp.PossibleDiagnoses)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
