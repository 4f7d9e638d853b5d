// Package composer turns detected symptoms and ranked diagnoses into the
// chat reply text.
package composer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Skufu/symptomcheck/internal/diagnosis"
	"github.com/Skufu/symptomcheck/internal/llm"
)

const (
	maxListed  = 3
	disclaimer = "\n\nIMPORTANT: This is not a medical diagnosis. Please consult with a healthcare professional for proper evaluation and treatment."
)

type Composer interface {
	Compose(ctx context.Context, message string, symptoms []string, diagnoses []diagnosis.Result) string
}

// New picks the LLM composer when a client is configured and the template
// composer otherwise.
func New(client llm.Client, logger *logrus.Logger) Composer {
	if client == nil {
		return Template{}
	}
	return &LLM{client: client, log: logger}
}

// Template renders a fixed, deterministic reply listing at most three diagnoses.
type Template struct{}

func (Template) Compose(_ context.Context, _ string, symptoms []string, diagnoses []diagnosis.Result) string {
	var b strings.Builder
	b.WriteString("I've analyzed your symptoms")
	if len(symptoms) > 0 {
		b.WriteString(" including ")
		b.WriteString(strings.Join(symptoms, ", "))
	}

	if len(diagnoses) > 0 {
		b.WriteString(".\n\nBased on this information, here are some possible conditions to consider:\n")
		for i, d := range diagnoses {
			if i == maxListed {
				break
			}
			fmt.Fprintf(&b, "\n%d. %s (confidence: %s%%)\n", i+1, d.Disease, formatConfidence(d.Confidence))
			fmt.Fprintf(&b, "   %s\n", d.Description)
			fmt.Fprintf(&b, "   General treatment approach: %s\n", d.Treatment)
		}
	} else {
		b.WriteString(", but I couldn't determine any specific conditions based on the information provided.")
	}

	b.WriteString(disclaimer)
	return b.String()
}

// formatConfidence prints the shortest exact form, keeping one decimal for
// whole numbers (95 -> "95.0").
func formatConfidence(c float64) string {
	s := strconv.FormatFloat(c, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
