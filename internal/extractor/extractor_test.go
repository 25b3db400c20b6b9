package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericFieldsMissingEvidence_FlagsUnsupportedNumbers(t *testing.T) {
	card := StudyCard{
		Fields: map[string]interface{}{
			"sample_size":    440,
			"alpha":          0.025,
			"arm_label":      "treatment",
			"dropout_t":      0.30,
		},
		EvidenceSpans: map[string][]EvidenceSpan{
			"sample_size": {{Scheme: "page_paragraph", Page: 4, Paragraph: 2}},
			"alpha":       {{Scheme: "page_paragraph", Page: 4, Paragraph: 3}},
		},
	}

	missing := NumericFieldsMissingEvidence(card)
	assert.ElementsMatch(t, []string{"dropout_t"}, missing)
}

func TestNumericFieldsMissingEvidence_NoNumericFieldsMeansNoneMissing(t *testing.T) {
	card := StudyCard{Fields: map[string]interface{}{"arm_label": "treatment"}}
	assert.Empty(t, NumericFieldsMissingEvidence(card))
}
