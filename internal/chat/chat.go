// Package chat runs a user message through extraction, scoring and reply
// composition and records the exchange.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/composer"
	"github.com/Skufu/symptomcheck/internal/diagnosis"
	"github.com/Skufu/symptomcheck/internal/store"
)

// ApologyMessage is returned when processing fails unexpectedly.
const ApologyMessage = "I'm sorry, I encountered an error while processing your message. Please try again."

type Extractor interface {
	Extract(ctx context.Context, text string) []string
}

type Scorer interface {
	Score(ctx context.Context, symptoms []string) []diagnosis.Result
}

type Response struct {
	Response          string             `json:"response"`
	DetectedSymptoms  []string           `json:"detected_symptoms"`
	PossibleDiagnoses []diagnosis.Result `json:"possible_diagnoses"`
}

// Service is immutable after construction and safe for concurrent use.
type Service struct {
	extractor Extractor
	scorer    Scorer
	composer  composer.Composer
	history   store.InteractionLog
	log       *logrus.Logger
}

// NewService wires the pipeline. history may be nil, in which case
// interactions are not recorded.
func NewService(ex Extractor, sc Scorer, comp composer.Composer, history store.InteractionLog, logger *logrus.Logger) *Service {
	return &Service{extractor: ex, scorer: sc, composer: comp, history: history, log: logger}
}

// ProcessMessage never fails. Internal faults produce the apology reply with
// empty symptom and diagnosis lists.
func (s *Service) ProcessMessage(ctx context.Context, userID, message string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"user_id": userID,
				"panic":   fmt.Sprint(r),
			}).Error("Message processing failed")
			resp = Response{
				Response:          ApologyMessage,
				DetectedSymptoms:  []string{},
				PossibleDiagnoses: []diagnosis.Result{},
			}
		}
	}()

	symptoms := s.extractor.Extract(ctx, message)
	if symptoms == nil {
		symptoms = []string{}
	}
	diagnoses := s.scorer.Score(ctx, symptoms)
	if diagnoses == nil {
		diagnoses = []diagnosis.Result{}
	}
	reply := s.composer.Compose(ctx, message, symptoms, diagnoses)

	s.record(ctx, userID, message, reply)

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"symptoms":  len(symptoms),
		"diagnoses": len(diagnoses),
	}).Info("Message processed")

	return Response{Response: reply, DetectedSymptoms: symptoms, PossibleDiagnoses: diagnoses}
}

func (s *Service) record(ctx context.Context, userID, message, reply string) {
	if s.history == nil {
		return
	}
	err := s.history.Append(ctx, store.Interaction{
		UserID:    userID,
		Message:   message,
		Response:  reply,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("Failed to save interaction")
	}
}
