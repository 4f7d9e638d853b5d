// Package extractor finds symptom mentions in free text by alias and
// substring matching.
package extractor

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/lexicon"
)

// SymptomSource lists the symptom names known to the correlation store.
type SymptomSource interface {
	SymptomNames(ctx context.Context) ([]string, error)
}

type Extractor struct {
	source  SymptomSource
	lexicon lexicon.Lexicon
	log     *logrus.Logger
}

func New(source SymptomSource, lex lexicon.Lexicon, logger *logrus.Logger) *Extractor {
	return &Extractor{source: source, lexicon: lex, log: logger}
}

// Extract returns detected canonical symptom names in discovery order.
// When the store cannot be read the built-in symptom list is used instead.
func (e *Extractor) Extract(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	known, err := e.source.SymptomNames(ctx)
	if err != nil {
		e.log.WithError(err).Warn("Symptom catalogue unavailable, matching against built-in list")
		known = lexicon.FallbackSymptoms
	}

	detected := Match(text, e.lexicon, known)
	e.log.WithField("symptoms", detected).Debug("Detected symptoms")
	return detected
}

// Match lowercases text, then records every lexicon entry with an alias
// occurring in it, followed by every known name occurring in it that was not
// already recorded.
func Match(text string, lex lexicon.Lexicon, known []string) []string {
	lower := strings.ToLower(text)
	detected := []string{}
	seen := map[string]bool{}

	for _, entry := range lex {
		for _, alias := range entry.Aliases {
			if strings.Contains(lower, alias) {
				if !seen[entry.Name] {
					detected = append(detected, entry.Name)
					seen[entry.Name] = true
				}
				break
			}
		}
	}

	for _, name := range known {
		if name == "" || seen[name] {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			detected = append(detected, name)
			seen[name] = true
		}
	}
	return detected
}
