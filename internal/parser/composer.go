package parser

import (
	"fmt"
	"strings"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

// Generic remark statements used when the model supplied no explanation.
const (
	remarkYes       = "Oracle FLEXCUBE provides the required functionality as part of its core banking capabilities."
	remarkPartially = "Oracle FLEXCUBE provides partial support for this requirement with some limitations or additional configuration needed."
	remarkNo        = "Based on available Oracle FLEXCUBE documentation and capabilities analysis, this specific requirement is not supported by the current platform architecture."
	remarkNotFound  = "Comprehensive analysis of available Oracle documentation and industry resources could not identify specific information regarding this requirement. Further clarification with Oracle technical teams may be required."
)

// Compose finalizes the remark column based on the response verdict.
// Positive and conditional verdicts get the explanation (or a generic
// statement) plus a source citation block; negative and not-found verdicts
// get an explanation-only remark with no citations, since there is nothing
// the sources would confirm.
func Compose(parsed *Parsed, outputCols []string, evidence *domain.EvidenceResult) {
	var responseCol, remarkCol string
	for _, col := range outputCols {
		switch Classify(col) {
		case RoleResponse:
			responseCol = col
		case RoleRemark:
			remarkCol = col
		}
	}

	if responseCol == "" || remarkCol == "" || strings.TrimSpace(parsed.Columns[responseCol]) == "" {
		if remarkCol != "" && parsed.Explanation != "" {
			parsed.Columns[remarkCol] = parsed.Explanation
		}
		return
	}

	explanation := strings.TrimSpace(parsed.Explanation)

	switch strings.ToLower(strings.TrimSpace(parsed.Columns[responseCol])) {
	case "yes":
		parsed.Columns[remarkCol] = withCitations(orDefault(explanation, remarkYes), evidence)
	case "partially":
		parsed.Columns[remarkCol] = withCitations(orDefault(explanation, remarkPartially), evidence)
	case "no":
		parsed.Columns[remarkCol] = orDefault(explanation, remarkNo)
	case "not found":
		parsed.Columns[remarkCol] = orDefault(explanation, remarkNotFound)
	default:
		if explanation != "" {
			parsed.Columns[remarkCol] = explanation
		}
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// withCitations appends a "Reference Sources Consulted" block listing the
// evidence URLs with their source type labels.
func withCitations(remark string, evidence *domain.EvidenceResult) string {
	if evidence == nil || len(evidence.Sources) == 0 {
		return remark
	}

	var b strings.Builder
	b.WriteString(remark)
	b.WriteString("\n\nReference Sources Consulted:")
	for i, src := range evidence.Sources {
		label := ""
		if i < len(evidence.SourceTypes) {
			label = fmt.Sprintf(" (%s)", evidence.SourceTypes[i])
		}
		b.WriteString(fmt.Sprintf("\n%d. %s%s", i+1, src, label))
	}
	return b.String()
}
