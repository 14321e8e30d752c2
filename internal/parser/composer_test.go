package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

func evidenceWithSources() *domain.EvidenceResult {
	return &domain.EvidenceResult{
		Sources:     []string{"https://docs.oracle.com/flexcube/a", "https://stackoverflow.com/q/1"},
		SourceTypes: []string{"Official Documentation", "Developer Community Resources"},
		Strength:    domain.StrengthModerate,
	}
}

func composed(t *testing.T, response, explanation string, evidence *domain.EvidenceResult) map[string]string {
	t.Helper()
	parsed := &Parsed{
		Columns: map[string]string{
			"TENDERER'S RESPONSE": response,
			"TENDERER'S REMARK":   "raw remark from the model",
		},
		Explanation: explanation,
	}
	Compose(parsed, defaultCols, evidence)
	return parsed.Columns
}

func TestComposeYesIncludesCitations(t *testing.T) {
	cols := composed(t, "Yes", "Supported through the core accrual engine.", evidenceWithSources())

	remark := cols["TENDERER'S REMARK"]
	assert.Contains(t, remark, "Supported through the core accrual engine.")
	assert.Contains(t, remark, "Reference Sources Consulted:")
	assert.Contains(t, remark, "1. https://docs.oracle.com/flexcube/a (Official Documentation)")
	assert.Contains(t, remark, "2. https://stackoverflow.com/q/1 (Developer Community Resources)")
}

func TestComposePartiallyIncludesCitations(t *testing.T) {
	cols := composed(t, "Partially", "", evidenceWithSources())

	remark := cols["TENDERER'S REMARK"]
	assert.Contains(t, remark, "partial support")
	assert.Contains(t, remark, "Reference Sources Consulted:")
}

func TestComposeNoOmitsCitations(t *testing.T) {
	cols := composed(t, "No", "Not part of the product architecture.", evidenceWithSources())

	remark := cols["TENDERER'S REMARK"]
	assert.Equal(t, "Not part of the product architecture.", remark)
	assert.NotContains(t, remark, "Reference Sources Consulted")
}

func TestComposeNotFoundOmitsCitations(t *testing.T) {
	cols := composed(t, "Not found", "", evidenceWithSources())

	remark := cols["TENDERER'S REMARK"]
	assert.Contains(t, remark, "could not identify specific information")
	assert.NotContains(t, remark, "Reference Sources Consulted")
}

func TestComposeGenericDefaults(t *testing.T) {
	tests := []struct {
		response string
		expect   string
	}{
		{"Yes", "core banking capabilities"},
		{"Partially", "partial support"},
		{"No", "not supported by the current platform architecture"},
		{"Not found", "Further clarification with Oracle technical teams"},
	}

	for _, tt := range tests {
		cols := composed(t, tt.response, "", nil)
		assert.Contains(t, cols["TENDERER'S REMARK"], tt.expect, "response=%q", tt.response)
	}
}

func TestComposeYesWithoutSources(t *testing.T) {
	cols := composed(t, "Yes", "explained", &domain.EvidenceResult{Strength: domain.StrengthNone})

	assert.Equal(t, "explained", cols["TENDERER'S REMARK"])
}

func TestComposeUnrecognizedResponseKeepsExplanation(t *testing.T) {
	cols := composed(t, "Processing error: boom", "side note", evidenceWithSources())

	assert.Equal(t, "side note", cols["TENDERER'S REMARK"])
	assert.NotContains(t, cols["TENDERER'S REMARK"], "Reference Sources Consulted")
}

func TestComposeNoRemarkColumn(t *testing.T) {
	parsed := &Parsed{
		Columns:     map[string]string{"ANSWER": "Yes"},
		Explanation: "explanation text",
	}
	Compose(parsed, []string{"ANSWER"}, evidenceWithSources())

	assert.Equal(t, "Yes", parsed.Columns["ANSWER"])
}
